package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
	jwt_internal "github.com/xhunter74/collectionmanager/shared/jwt"
	"github.com/xhunter74/collectionmanager/shared/logger"
	"github.com/xhunter74/collectionmanager/shared/utils"
)

type key int

const userIdKey key = 0

type TokenDecoder interface {
	DecodeToken(jwtStr string, tokenType jwt_internal.TokenType) (*jwt_internal.Claims, error)
}

type Auth struct {
	jwt TokenDecoder
}

func NewAuth(jwt TokenDecoder) *Auth {
	return &Auth{jwt: jwt}
}

// NeedAuth rejects requests without a valid access token and stores the
// caller id in the request context
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userId, err := a.extractUserId(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserId(r.Context(), userId)))
		})
	}
}

func (a *Auth) extractUserId(r *http.Request) (domain.UserId, error) {
	// bearer header for api clients, cookie for browsers
	var tokenString string
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = strings.TrimSpace(token)
	} else if cookie, err := r.Cookie("accessToken"); err == nil {
		tokenString = cookie.Value
	}
	if tokenString == "" {
		return domain.UserId{}, errors.Unauthorized("Please sign-in")
	}

	claims, err := a.jwt.DecodeToken(tokenString, jwt_internal.AccessToken)
	if err != nil {
		return domain.UserId{}, err
	}
	userId, err := claims.UserId()
	if err != nil {
		logger.Log.Error("invalid jwt subject", "subject", claims.Subject)
		return domain.UserId{}, errors.Unauthorized("Invalid token")
	}
	return userId, nil
}

func WithUserId(ctx context.Context, userId domain.UserId) context.Context {
	return context.WithValue(ctx, userIdKey, userId)
}

// GetUserIdFromContext returns the caller id put by NeedAuth
func GetUserIdFromContext(r *http.Request) (domain.UserId, bool) {
	userId, ok := r.Context().Value(userIdKey).(domain.UserId)
	return userId, ok
}
