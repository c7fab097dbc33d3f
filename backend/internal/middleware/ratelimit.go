package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xhunter74/collectionmanager/backend/internal/middleware/ratelimiter"
	"github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/logger"
	"github.com/xhunter74/collectionmanager/shared/utils"
)

// RateLimit rejects the request with 429 once the bucket of its identity is
// empty.
func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Warn("rate limit exceeded", "path", r.URL.Path, "identity", identity)
				utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{
					Message:    "Rate limit exceeded, try again later",
					StatusCode: http.StatusTooManyRequests,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ByIP(r *http.Request) (string, error) {
	ip, err := utils.GetIP(r)
	if err != nil {
		return "", errors.BadRequest("Can't determine client address")
	}
	return "ip:" + ip, nil
}

// FormField keys the bucket by a form value, e.g. the username of a token
// request. A missing value falls back to the client address.
func FormField(field string) func(r *http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		if err := r.ParseForm(); err != nil {
			return "", errors.BadRequest("Body is invalid form")
		}
		value := strings.ToLower(strings.TrimSpace(r.PostFormValue(field)))
		if value == "" {
			return ByIP(r)
		}
		return fmt.Sprintf("%s:%s", field, value), nil
	}
}

// JSONField keys the bucket by a top level string of a json body. The body is
// restored for the handler.
func JSONField(field string) func(r *http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", errors.BadRequest("Failed to read request body")
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var data map[string]any
		if err := json.Unmarshal(body, &data); err != nil {
			return "", errors.BadRequest("Body is invalid json")
		}
		value, _ := data[field].(string)
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return ByIP(r)
		}
		return fmt.Sprintf("%s:%s", field, value), nil
	}
}
