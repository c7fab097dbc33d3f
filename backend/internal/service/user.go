package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/backend/internal/utils/email"
	"github.com/xhunter74/collectionmanager/shared/api"
	"github.com/xhunter74/collectionmanager/shared/domain"
	internal_errors "github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/jwt"
	"github.com/xhunter74/collectionmanager/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, emailAddr, password string) (domain.User, error)
	Token(ctx context.Context, req api.TokenRequest) (api.TokenResponse, error)
	GetProfile(ctx context.Context, userId domain.UserId) (domain.User, error)
	GetUserById(ctx context.Context, userId, id domain.UserId) (domain.User, error)
	UploadAvatar(ctx context.Context, userId domain.UserId, data []byte) (uuid.UUID, error)
	GetAvatar(ctx context.Context, userId domain.UserId) ([]byte, error)
	GenerateResetPasswordLink(ctx context.Context, userName string) error
	ResetPassword(ctx context.Context, userId domain.UserId, token, password string) error
}

type UserStorage interface {
	SaveUser(ctx context.Context, user domain.User) error
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
	UpdatePassword(ctx context.Context, id domain.UserId, passwordHash string) error
	SetAvatar(ctx context.Context, id domain.UserId, avatar uuid.UUID) error
}

type User struct {
	storage UserStorage
	jwt     jwt.JwtService
	email   EmailSender
	blobs   FileStorage
	images  ImageConverter
	siteURL string
}

func NewUser(storage UserStorage, jwt jwt.JwtService, email EmailSender, blobs FileStorage, images ImageConverter, siteURL string) *User {
	if !strings.HasSuffix(siteURL, "/") {
		siteURL += "/"
	}
	return &User{storage: storage, jwt: jwt, email: email, blobs: blobs, images: images, siteURL: siteURL}
}

// Register creates a user named after its email.
func (s *User) Register(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}
	user := domain.User{
		Id:           uuid.New(),
		UserName:     emailAddr,
		Email:        emailAddr,
		PasswordHash: string(hash),
	}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	logger.Log.Info("user registered", "user_id", user.Id)
	return user, nil
}

// Token implements the password and refresh_token grants.
func (s *User) Token(ctx context.Context, req api.TokenRequest) (api.TokenResponse, error) {
	var (
		user domain.User
		err  error
	)
	switch req.GrantType {
	case "password":
		user, err = s.checkCredentials(ctx, req.UserName, req.Password)
	case "refresh_token":
		user, err = s.checkRefreshToken(ctx, req.RefreshToken)
	default:
		return api.TokenResponse{}, internal_errors.BadRequest("Unsupported grant type")
	}
	if err != nil {
		return api.TokenResponse{}, err
	}

	access, err := s.jwt.NewToken(user, jwt.AccessToken)
	if err != nil {
		return api.TokenResponse{}, err
	}
	refresh, err := s.jwt.NewToken(user, jwt.RefreshToken)
	if err != nil {
		return api.TokenResponse{}, err
	}
	return api.TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwt.TTL(jwt.AccessToken).Seconds()),
		RefreshToken: refresh,
	}, nil
}

func (s *User) checkCredentials(ctx context.Context, userName, password string) (domain.User, error) {
	user, err := s.storage.UserByEmail(ctx, strings.TrimSpace(userName))
	if err != nil {
		// to not leak existing users
		if internal_errors.IsNotFound(err) {
			return domain.User{}, internal_errors.Unauthorized("")
		}
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Debug("password mismatch", "user_id", user.Id)
		return domain.User{}, internal_errors.Unauthorized("")
	}
	return user, nil
}

func (s *User) checkRefreshToken(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.jwt.DecodeToken(token, jwt.RefreshToken)
	if err != nil {
		return domain.User{}, err
	}
	userId, err := claims.UserId()
	if err != nil {
		return domain.User{}, internal_errors.Unauthorized("Invalid token")
	}
	user, err := s.storage.UserById(ctx, userId)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return domain.User{}, internal_errors.Unauthorized("Invalid token")
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *User) GetProfile(ctx context.Context, userId domain.UserId) (domain.User, error) {
	return s.storage.UserById(ctx, userId)
}

// GetUserById only resolves the caller itself.
func (s *User) GetUserById(ctx context.Context, userId, id domain.UserId) (domain.User, error) {
	if userId != id {
		return domain.User{}, internal_errors.NotFound("User not found")
	}
	return s.storage.UserById(ctx, id)
}

// UploadAvatar converts the picture to png and overwrites the current avatar
// when there is one.
func (s *User) UploadAvatar(ctx context.Context, userId domain.UserId, data []byte) (uuid.UUID, error) {
	user, err := s.storage.UserById(ctx, userId)
	if err != nil {
		return uuid.Nil, err
	}
	png, err := s.images.ConvertToPng(ctx, data)
	if err != nil {
		return uuid.Nil, err
	}

	avatarId := uuid.New()
	if user.Avatar != nil {
		avatarId = *user.Avatar
	}
	if err := s.blobs.UploadFile(ctx, userId, avatarId, png); err != nil {
		logger.Log.Error("failed to store avatar", "user_id", userId, "error", err)
		return uuid.Nil, internal_errors.AppError("Failed to upload avatar.")
	}
	if user.Avatar == nil {
		if err := s.storage.SetAvatar(ctx, userId, avatarId); err != nil {
			logger.Log.Error("failed to save avatar id", "user_id", userId, "error", err)
			return uuid.Nil, internal_errors.AppError("Failed to upload avatar.")
		}
	}
	return avatarId, nil
}

func (s *User) GetAvatar(ctx context.Context, userId domain.UserId) ([]byte, error) {
	user, err := s.storage.UserById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user.Avatar == nil {
		return nil, internal_errors.NotFound("Avatar not found")
	}
	data, err := s.blobs.GetFile(ctx, userId, *user.Avatar)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, internal_errors.NotFound("Avatar not found")
		}
		logger.Log.Error("failed to read avatar", "user_id", userId, "error", err)
		return nil, internal_errors.AppError("Failed to download avatar.")
	}
	return data, nil
}

const resetPasswordEmail = `Hello,

A password reset was requested for your account.

[Reset password](%s)

The link stays valid until the password is changed. If you did not request this, please ignore this email.`

// GenerateResetPasswordLink mails a single use reset link. Unknown users get
// no email and no error.
func (s *User) GenerateResetPasswordLink(ctx context.Context, userName string) error {
	user, err := s.storage.UserByEmail(ctx, strings.TrimSpace(userName))
	if err != nil {
		if internal_errors.IsNotFound(err) {
			logger.Log.Info("reset password requested for unknown user")
			return nil
		}
		return err
	}

	token, err := s.jwt.NewResetToken(user)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%sreset-password?userId=%s&token=%s", s.siteURL, user.Id, url.QueryEscape(token))
	body, err := email.RenderMarkdown(fmt.Sprintf(resetPasswordEmail, link))
	if err != nil {
		return err
	}
	if err := s.email.Send(user.Email, "Reset password", body); err != nil {
		logger.Log.Error("failed to send reset password email", "user_id", user.Id, "error", err)
		return internal_errors.AppError("Failed to send email.")
	}
	return nil
}

func (s *User) ResetPassword(ctx context.Context, userId domain.UserId, token, password string) error {
	user, err := s.storage.UserById(ctx, userId)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return internal_errors.BadRequest("Password reset failed: invalid token")
		}
		return err
	}
	if err := s.jwt.DecodeResetToken(token, user); err != nil {
		return internal_errors.BadRequest("Password reset failed: invalid or expired token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return err
	}
	return s.storage.UpdatePassword(ctx, userId, string(hash))
}
