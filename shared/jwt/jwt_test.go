package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secretKey = "testJwtKey-testJwtKey"

var user = domain.User{
	Id:           uuid.MustParse("9b2d6f1e-7c1a-4c53-9a8e-0d3f2b6c1a11"),
	Email:        "test@mail.com",
	PasswordHash: "$2a$10$hash",
}

func newService(ttl time.Duration) *Jwt {
	return New(secretKey, ttl, ttl, ttl)
}

func TestDecodeTokenCorrect(t *testing.T) {
	j := newService(time.Minute)
	token, err := j.NewToken(user, AccessToken)
	require.NoError(t, err)

	claims, err := j.DecodeToken(token, AccessToken)
	require.NoError(t, err)
	uid, err := claims.UserId()
	require.NoError(t, err)
	assert.Equal(t, user.Id, uid)
	assert.Equal(t, user.Email, claims.Email)
}

func TestDecodeTokenExpired(t *testing.T) {
	j := newService(-time.Second)
	token, err := j.NewToken(user, AccessToken)
	require.NoError(t, err)

	_, err = j.DecodeToken(token, AccessToken)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestDecodeTokenInvalidSecretKey(t *testing.T) {
	token, err := newService(time.Minute).NewToken(user, AccessToken)
	require.NoError(t, err)

	_, err = New("invalidSecret-invalidSecret", time.Minute, time.Minute, time.Minute).DecodeToken(token, AccessToken)
	assert.Error(t, err)
}

func TestDecodeTokenWrongType(t *testing.T) {
	j := newService(time.Minute)
	refresh, err := j.NewToken(user, RefreshToken)
	require.NoError(t, err)

	_, err = j.DecodeToken(refresh, AccessToken)
	assert.True(t, errors.IsUnauthorized(err))

	_, err = j.DecodeToken(refresh, RefreshToken)
	assert.NoError(t, err)
}

func TestResetToken(t *testing.T) {
	j := newService(time.Minute)
	token, err := j.NewResetToken(user)
	require.NoError(t, err)

	t.Run("valid for same password hash", func(t *testing.T) {
		assert.NoError(t, j.DecodeResetToken(token, user))
	})

	t.Run("invalid after password change", func(t *testing.T) {
		changed := user
		changed.PasswordHash = "$2a$10$other"
		assert.Error(t, j.DecodeResetToken(token, changed))
	})

	t.Run("not usable as access token", func(t *testing.T) {
		_, err := j.DecodeToken(token, AccessToken)
		assert.Error(t, err)
	})

	t.Run("bound to subject", func(t *testing.T) {
		other := user
		other.Id = uuid.New()
		assert.Error(t, j.DecodeResetToken(token, other))
	})
}
