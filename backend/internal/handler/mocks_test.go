package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/api"
	"github.com/xhunter74/collectionmanager/shared/domain"
)

type MockUserService struct {
	MockRegister     func(ctx context.Context, email, password string) (domain.User, error)
	MockToken        func(ctx context.Context, req api.TokenRequest) (api.TokenResponse, error)
	MockGetProfile   func(ctx context.Context, userId domain.UserId) (domain.User, error)
	MockUploadAvatar func(ctx context.Context, userId domain.UserId, data []byte) (uuid.UUID, error)
	MockGetAvatar    func(ctx context.Context, userId domain.UserId) ([]byte, error)
	MockResetLink    func(ctx context.Context, userName string) error
	MockReset        func(ctx context.Context, userId domain.UserId, token, password string) error
}

func (m *MockUserService) Register(ctx context.Context, email, password string) (domain.User, error) {
	if m.MockRegister != nil {
		return m.MockRegister(ctx, email, password)
	}
	return domain.User{}, nil
}

func (m *MockUserService) Token(ctx context.Context, req api.TokenRequest) (api.TokenResponse, error) {
	if m.MockToken != nil {
		return m.MockToken(ctx, req)
	}
	return api.TokenResponse{}, nil
}

func (m *MockUserService) GetProfile(ctx context.Context, userId domain.UserId) (domain.User, error) {
	if m.MockGetProfile != nil {
		return m.MockGetProfile(ctx, userId)
	}
	return domain.User{Id: userId}, nil
}

func (m *MockUserService) GetUserById(ctx context.Context, userId, id domain.UserId) (domain.User, error) {
	return domain.User{Id: id}, nil
}

func (m *MockUserService) UploadAvatar(ctx context.Context, userId domain.UserId, data []byte) (uuid.UUID, error) {
	if m.MockUploadAvatar != nil {
		return m.MockUploadAvatar(ctx, userId, data)
	}
	return uuid.Nil, nil
}

func (m *MockUserService) GetAvatar(ctx context.Context, userId domain.UserId) ([]byte, error) {
	if m.MockGetAvatar != nil {
		return m.MockGetAvatar(ctx, userId)
	}
	return nil, nil
}

func (m *MockUserService) GenerateResetPasswordLink(ctx context.Context, userName string) error {
	if m.MockResetLink != nil {
		return m.MockResetLink(ctx, userName)
	}
	return nil
}

func (m *MockUserService) ResetPassword(ctx context.Context, userId domain.UserId, token, password string) error {
	if m.MockReset != nil {
		return m.MockReset(ctx, userId, token, password)
	}
	return nil
}

type MockCollectionService struct {
	MockGetAll  func(ctx context.Context, userId domain.UserId) ([]domain.Collection, error)
	MockGetById func(ctx context.Context, userId domain.UserId, id domain.CollectionId) (domain.Collection, error)
	MockCreate  func(ctx context.Context, userId domain.UserId, name, description string) (domain.Collection, error)
	MockUpdate  func(ctx context.Context, userId domain.UserId, data domain.CollectionUpdateData) (domain.Collection, error)
	MockDelete  func(ctx context.Context, userId domain.UserId, id domain.CollectionId) error
}

func (m *MockCollectionService) GetAll(ctx context.Context, userId domain.UserId) ([]domain.Collection, error) {
	if m.MockGetAll != nil {
		return m.MockGetAll(ctx, userId)
	}
	return nil, nil
}

func (m *MockCollectionService) GetById(ctx context.Context, userId domain.UserId, id domain.CollectionId) (domain.Collection, error) {
	if m.MockGetById != nil {
		return m.MockGetById(ctx, userId, id)
	}
	return domain.Collection{Id: id}, nil
}

func (m *MockCollectionService) Create(ctx context.Context, userId domain.UserId, name, description string) (domain.Collection, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, userId, name, description)
	}
	return domain.Collection{}, nil
}

func (m *MockCollectionService) Update(ctx context.Context, userId domain.UserId, data domain.CollectionUpdateData) (domain.Collection, error) {
	if m.MockUpdate != nil {
		return m.MockUpdate(ctx, userId, data)
	}
	return domain.Collection{}, nil
}

func (m *MockCollectionService) Delete(ctx context.Context, userId domain.UserId, id domain.CollectionId) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, userId, id)
	}
	return nil
}

type MockItemService struct {
	MockCreate  func(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, input []api.ItemFieldInput) (domain.FlatRecord, error)
	MockGetAll  func(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, fields []string) ([]domain.FlatRecord, error)
	MockGetById func(ctx context.Context, userId domain.UserId, id domain.ItemId) (domain.ItemDto, error)
	MockUpdate  func(ctx context.Context, userId domain.UserId, id domain.ItemId, input []api.ItemFieldInput) (domain.ItemDto, error)
	MockDelete  func(ctx context.Context, userId domain.UserId, id domain.ItemId) error
}

func (m *MockItemService) Create(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, input []api.ItemFieldInput) (domain.FlatRecord, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, userId, collectionId, input)
	}
	return domain.FlatRecord{}, nil
}

func (m *MockItemService) GetAll(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, fields []string) ([]domain.FlatRecord, error) {
	if m.MockGetAll != nil {
		return m.MockGetAll(ctx, userId, collectionId, fields)
	}
	return nil, nil
}

func (m *MockItemService) GetById(ctx context.Context, userId domain.UserId, id domain.ItemId) (domain.ItemDto, error) {
	if m.MockGetById != nil {
		return m.MockGetById(ctx, userId, id)
	}
	return domain.ItemDto{Id: id}, nil
}

func (m *MockItemService) Update(ctx context.Context, userId domain.UserId, id domain.ItemId, input []api.ItemFieldInput) (domain.ItemDto, error) {
	if m.MockUpdate != nil {
		return m.MockUpdate(ctx, userId, id, input)
	}
	return domain.ItemDto{Id: id}, nil
}

func (m *MockItemService) Delete(ctx context.Context, userId domain.UserId, id domain.ItemId) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, userId, id)
	}
	return nil
}

type MockFileService struct {
	MockUploadFile    func(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, name string, data []byte) (uuid.UUID, error)
	MockDownloadFile  func(ctx context.Context, userId domain.UserId, fileId uuid.UUID) (string, []byte, error)
	MockDeleteFile    func(ctx context.Context, userId domain.UserId, fileId uuid.UUID) error
	MockUploadImage   func(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, name string, data []byte) (uuid.UUID, error)
	MockDownloadImage func(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, imageId uuid.UUID) (string, []byte, error)
}

func (m *MockFileService) UploadFile(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, name string, data []byte) (uuid.UUID, error) {
	if m.MockUploadFile != nil {
		return m.MockUploadFile(ctx, userId, collectionId, name, data)
	}
	return uuid.New(), nil
}

func (m *MockFileService) DownloadFile(ctx context.Context, userId domain.UserId, fileId uuid.UUID) (string, []byte, error) {
	if m.MockDownloadFile != nil {
		return m.MockDownloadFile(ctx, userId, fileId)
	}
	return "", nil, nil
}

func (m *MockFileService) DeleteFile(ctx context.Context, userId domain.UserId, fileId uuid.UUID) error {
	if m.MockDeleteFile != nil {
		return m.MockDeleteFile(ctx, userId, fileId)
	}
	return nil
}

func (m *MockFileService) UploadCollectionImage(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, name string, data []byte) (uuid.UUID, error) {
	if m.MockUploadImage != nil {
		return m.MockUploadImage(ctx, userId, collectionId, name, data)
	}
	return uuid.New(), nil
}

func (m *MockFileService) DownloadCollectionImage(ctx context.Context, userId domain.UserId, collectionId domain.CollectionId, imageId uuid.UUID) (string, []byte, error) {
	if m.MockDownloadImage != nil {
		return m.MockDownloadImage(ctx, userId, collectionId, imageId)
	}
	return "", nil, nil
}
