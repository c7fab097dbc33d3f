package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
)

// MockStorage mocks the relational storage interfaces. Unset functions return
// zero values.
type MockStorage struct {
	collectionForOwnerFunc    func(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) (domain.Collection, error)
	collectionsFunc           func(ctx context.Context, ownerId domain.UserId) ([]domain.Collection, error)
	createCollectionFunc      func(ctx context.Context, data domain.CollectionCreationData) (domain.Collection, error)
	updateCollectionFunc      func(ctx context.Context, ownerId domain.UserId, data domain.CollectionUpdateData) (domain.Collection, error)
	deleteCollectionFunc      func(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) error
	collectionFilesFunc       func(ctx context.Context, collectionId domain.CollectionId) ([]domain.File, error)
	collectionFieldsFunc      func(ctx context.Context, collectionId domain.CollectionId) ([]domain.CollectionField, error)
	fieldForOwnerFunc         func(ctx context.Context, id domain.FieldId, ownerId domain.UserId) (domain.CollectionField, error)
	createFieldFunc           func(ctx context.Context, data domain.FieldCreationData) (domain.CollectionField, error)
	updateFieldFunc           func(ctx context.Context, data domain.FieldUpdateData) (domain.CollectionField, error)
	changeFieldOrderFunc      func(ctx context.Context, id domain.FieldId, order int) (domain.CollectionField, error)
	deleteFieldFunc           func(ctx context.Context, id domain.FieldId) error
	possibleValuesFunc        func(ctx context.Context, fieldId domain.FieldId) ([]domain.PossibleValue, error)
	possibleValueForOwnerFunc func(ctx context.Context, id uuid.UUID, ownerId domain.UserId) (domain.PossibleValue, error)
	createPossibleValueFunc   func(ctx context.Context, fieldId domain.FieldId, value string) (domain.PossibleValue, error)
	updatePossibleValueFunc   func(ctx context.Context, id uuid.UUID, value string) (domain.PossibleValue, error)
	deletePossibleValueFunc   func(ctx context.Context, id uuid.UUID) error
	saveFileFunc              func(ctx context.Context, f domain.File) error
	fileForOwnerFunc          func(ctx context.Context, id uuid.UUID, ownerId domain.UserId, collectionId *domain.CollectionId) (domain.File, error)
	deleteFileRecordFunc      func(ctx context.Context, id uuid.UUID) error
}

func (m *MockStorage) CollectionForOwner(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) (domain.Collection, error) {
	if m.collectionForOwnerFunc != nil {
		return m.collectionForOwnerFunc(ctx, id, ownerId)
	}
	return domain.Collection{Id: id, OwnerId: ownerId}, nil
}

func (m *MockStorage) Collections(ctx context.Context, ownerId domain.UserId) ([]domain.Collection, error) {
	if m.collectionsFunc != nil {
		return m.collectionsFunc(ctx, ownerId)
	}
	return nil, nil
}

func (m *MockStorage) CreateCollection(ctx context.Context, data domain.CollectionCreationData) (domain.Collection, error) {
	if m.createCollectionFunc != nil {
		return m.createCollectionFunc(ctx, data)
	}
	return domain.Collection{}, nil
}

func (m *MockStorage) UpdateCollection(ctx context.Context, ownerId domain.UserId, data domain.CollectionUpdateData) (domain.Collection, error) {
	if m.updateCollectionFunc != nil {
		return m.updateCollectionFunc(ctx, ownerId, data)
	}
	return domain.Collection{}, nil
}

func (m *MockStorage) DeleteCollection(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) error {
	if m.deleteCollectionFunc != nil {
		return m.deleteCollectionFunc(ctx, id, ownerId)
	}
	return nil
}

func (m *MockStorage) CollectionFiles(ctx context.Context, collectionId domain.CollectionId) ([]domain.File, error) {
	if m.collectionFilesFunc != nil {
		return m.collectionFilesFunc(ctx, collectionId)
	}
	return nil, nil
}

func (m *MockStorage) CollectionFields(ctx context.Context, collectionId domain.CollectionId) ([]domain.CollectionField, error) {
	if m.collectionFieldsFunc != nil {
		return m.collectionFieldsFunc(ctx, collectionId)
	}
	return nil, nil
}

func (m *MockStorage) FieldForOwner(ctx context.Context, id domain.FieldId, ownerId domain.UserId) (domain.CollectionField, error) {
	if m.fieldForOwnerFunc != nil {
		return m.fieldForOwnerFunc(ctx, id, ownerId)
	}
	return domain.CollectionField{Id: id}, nil
}

func (m *MockStorage) CreateField(ctx context.Context, data domain.FieldCreationData) (domain.CollectionField, error) {
	if m.createFieldFunc != nil {
		return m.createFieldFunc(ctx, data)
	}
	return domain.CollectionField{}, nil
}

func (m *MockStorage) UpdateField(ctx context.Context, data domain.FieldUpdateData) (domain.CollectionField, error) {
	if m.updateFieldFunc != nil {
		return m.updateFieldFunc(ctx, data)
	}
	return domain.CollectionField{}, nil
}

func (m *MockStorage) ChangeFieldOrder(ctx context.Context, id domain.FieldId, order int) (domain.CollectionField, error) {
	if m.changeFieldOrderFunc != nil {
		return m.changeFieldOrderFunc(ctx, id, order)
	}
	return domain.CollectionField{}, nil
}

func (m *MockStorage) DeleteField(ctx context.Context, id domain.FieldId) error {
	if m.deleteFieldFunc != nil {
		return m.deleteFieldFunc(ctx, id)
	}
	return nil
}

func (m *MockStorage) PossibleValues(ctx context.Context, fieldId domain.FieldId) ([]domain.PossibleValue, error) {
	if m.possibleValuesFunc != nil {
		return m.possibleValuesFunc(ctx, fieldId)
	}
	return nil, nil
}

func (m *MockStorage) PossibleValueForOwner(ctx context.Context, id uuid.UUID, ownerId domain.UserId) (domain.PossibleValue, error) {
	if m.possibleValueForOwnerFunc != nil {
		return m.possibleValueForOwnerFunc(ctx, id, ownerId)
	}
	return domain.PossibleValue{Id: id}, nil
}

func (m *MockStorage) CreatePossibleValue(ctx context.Context, fieldId domain.FieldId, value string) (domain.PossibleValue, error) {
	if m.createPossibleValueFunc != nil {
		return m.createPossibleValueFunc(ctx, fieldId, value)
	}
	return domain.PossibleValue{}, nil
}

func (m *MockStorage) UpdatePossibleValue(ctx context.Context, id uuid.UUID, value string) (domain.PossibleValue, error) {
	if m.updatePossibleValueFunc != nil {
		return m.updatePossibleValueFunc(ctx, id, value)
	}
	return domain.PossibleValue{}, nil
}

func (m *MockStorage) DeletePossibleValue(ctx context.Context, id uuid.UUID) error {
	if m.deletePossibleValueFunc != nil {
		return m.deletePossibleValueFunc(ctx, id)
	}
	return nil
}

func (m *MockStorage) SaveFile(ctx context.Context, f domain.File) error {
	if m.saveFileFunc != nil {
		return m.saveFileFunc(ctx, f)
	}
	return nil
}

func (m *MockStorage) FileForOwner(ctx context.Context, id uuid.UUID, ownerId domain.UserId, collectionId *domain.CollectionId) (domain.File, error) {
	if m.fileForOwnerFunc != nil {
		return m.fileForOwnerFunc(ctx, id, ownerId, collectionId)
	}
	return domain.File{Id: id}, nil
}

func (m *MockStorage) DeleteFileRecord(ctx context.Context, id uuid.UUID) error {
	if m.deleteFileRecordFunc != nil {
		return m.deleteFileRecordFunc(ctx, id)
	}
	return nil
}

// notOwned makes every collection lookup fail the way pg does for foreign
// collections.
func notOwned(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) (domain.Collection, error) {
	return domain.Collection{}, errors.NotFound("Collection '" + id.String() + "' not found")
}

// MockItemStore is an in-memory item store.
type MockItemStore struct {
	docs      map[domain.ItemId]domain.ItemDocument
	addErr    error
	removedBy []domain.CollectionId
}

func NewMockItemStore() *MockItemStore {
	return &MockItemStore{docs: map[domain.ItemId]domain.ItemDocument{}}
}

func (m *MockItemStore) Add(ctx context.Context, doc domain.ItemDocument) (domain.ItemDocument, error) {
	if m.addErr != nil {
		return domain.ItemDocument{}, m.addErr
	}
	if doc.Id == uuid.Nil {
		doc.Id = uuid.New()
	}
	m.docs[doc.Id] = doc
	return doc, nil
}

func (m *MockItemStore) GetById(ctx context.Context, id domain.ItemId) (*domain.ItemDocument, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *MockItemStore) GetAll(ctx context.Context, collectionId domain.CollectionId, projection domain.Projection) ([]domain.ItemDocument, error) {
	docs := []domain.ItemDocument{}
	for _, doc := range m.docs {
		if doc.CollectionId != collectionId {
			continue
		}
		if projection != nil {
			fields := domain.FieldDictionary{}
			for _, key := range projection {
				if v, ok := doc.Fields[key]; ok {
					fields[key] = v
				}
			}
			doc.Fields = fields
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *MockItemStore) Update(ctx context.Context, doc domain.ItemDocument) (domain.ItemDocument, error) {
	if _, ok := m.docs[doc.Id]; !ok {
		return domain.ItemDocument{}, errors.NotFound("Item not found")
	}
	m.docs[doc.Id] = doc
	return doc, nil
}

func (m *MockItemStore) Remove(ctx context.Context, id domain.ItemId) error {
	if _, ok := m.docs[id]; !ok {
		return errors.NotFound("Item not found")
	}
	delete(m.docs, id)
	return nil
}

func (m *MockItemStore) RemoveByCollection(ctx context.Context, collectionId domain.CollectionId) (int64, error) {
	m.removedBy = append(m.removedBy, collectionId)
	var n int64
	for id, doc := range m.docs {
		if doc.CollectionId == collectionId {
			delete(m.docs, id)
			n++
		}
	}
	return n, nil
}

type blobKey struct{ owner, file uuid.UUID }

// MockFileStorage keeps blobs in a map.
type MockFileStorage struct {
	blobs         map[blobKey][]byte
	uploadErr     error
	deletedFiles  []blobKey
	deletedOwners []uuid.UUID
}

func NewMockFileStorage() *MockFileStorage {
	return &MockFileStorage{blobs: map[blobKey][]byte{}}
}

func (m *MockFileStorage) UploadFile(ctx context.Context, ownerKey, fileId uuid.UUID, data []byte) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.blobs[blobKey{ownerKey, fileId}] = data
	return nil
}

func (m *MockFileStorage) GetFile(ctx context.Context, ownerKey, fileId uuid.UUID) ([]byte, error) {
	data, ok := m.blobs[blobKey{ownerKey, fileId}]
	if !ok {
		return nil, ErrFileNotFound
	}
	return data, nil
}

func (m *MockFileStorage) DeleteFile(ctx context.Context, ownerKey, fileId uuid.UUID) error {
	m.deletedFiles = append(m.deletedFiles, blobKey{ownerKey, fileId})
	delete(m.blobs, blobKey{ownerKey, fileId})
	return nil
}

func (m *MockFileStorage) DeleteOwner(ctx context.Context, ownerKey uuid.UUID) error {
	m.deletedOwners = append(m.deletedOwners, ownerKey)
	for k := range m.blobs {
		if k.owner == ownerKey {
			delete(m.blobs, k)
		}
	}
	return nil
}

type MockImageConverter struct {
	convertFunc func(ctx context.Context, data []byte) ([]byte, error)
}

func (m *MockImageConverter) ConvertToPng(ctx context.Context, data []byte) ([]byte, error) {
	if m.convertFunc != nil {
		return m.convertFunc(ctx, data)
	}
	return append([]byte("png:"), data...), nil
}

type sentEmail struct {
	to, subject, body string
}

type MockEmail struct {
	sent    []sentEmail
	sendErr error
}

func (m *MockEmail) Send(recipientEmail, subject, htmlBody string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentEmail{recipientEmail, subject, htmlBody})
	return nil
}
