package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	internal_errors "github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
	ResetToken   TokenType = "reset"
)

type Claims struct {
	Email string    `json:"email,omitempty"`
	Type  TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// UserId returns the subject of the token.
func (c *Claims) UserId() (domain.UserId, error) {
	return uuid.Parse(c.Subject)
}

type JwtService interface {
	NewToken(user domain.User, tokenType TokenType) (string, error)
	DecodeToken(jwtStr string, tokenType TokenType) (*Claims, error)
	// Reset tokens are signed with a key derived from the password hash, so
	// they stop working once the password changes.
	NewResetToken(user domain.User) (string, error)
	DecodeResetToken(jwtStr string, user domain.User) error
	TTL(tokenType TokenType) time.Duration
}

type Jwt struct {
	secretKey string
	ttls      map[TokenType]time.Duration
}

func New(secretKey string, accessTTL, refreshTTL, resetTTL time.Duration) *Jwt {
	return &Jwt{
		secretKey: secretKey,
		ttls: map[TokenType]time.Duration{
			AccessToken:  accessTTL,
			RefreshToken: refreshTTL,
			ResetToken:   resetTTL,
		},
	}
}

func (j *Jwt) TTL(tokenType TokenType) time.Duration {
	return j.ttls[tokenType]
}

func (j *Jwt) NewToken(user domain.User, tokenType TokenType) (string, error) {
	return j.sign(user, tokenType, j.secretKey)
}

func (j *Jwt) NewResetToken(user domain.User) (string, error) {
	return j.sign(user, ResetToken, j.secretKey+user.PasswordHash)
}

func (j *Jwt) sign(user domain.User, tokenType TokenType, key string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Id.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttls[tokenType])),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(key))
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		return "", fmt.Errorf("can't create token: %w", err)
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string, tokenType TokenType) (*Claims, error) {
	return j.decode(jwtStr, tokenType, j.secretKey)
}

func (j *Jwt) DecodeResetToken(jwtStr string, user domain.User) error {
	claims, err := j.decode(jwtStr, ResetToken, j.secretKey+user.PasswordHash)
	if err != nil {
		return err
	}
	if claims.Subject != user.Id.String() {
		return internal_errors.Unauthorized("Invalid token")
	}
	return nil
}

func (j *Jwt) decode(jwtStr string, tokenType TokenType, key string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(jwtStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(key), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		logger.Log.Debug("token rejected", "error", err)
		return nil, internal_errors.Unauthorized("Invalid token signature")
	}
	if !token.Valid {
		return nil, internal_errors.Unauthorized("Invalid token")
	}
	if claims.Type != tokenType {
		return nil, internal_errors.Unauthorized("Invalid token type")
	}
	return claims, nil
}
