package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhunter74/collectionmanager/backend/internal/middleware/ratelimiter"
)

func echoBody(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write(body)
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("blocks after capacity per ip", func(t *testing.T) {
		handler := RateLimit(ratelimiter.New(0.001, 2, time.Hour), ByIP)(echoBody(t))

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			codes = append(codes, rr.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.2:5000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("identity error", func(t *testing.T) {
		handler := RateLimit(ratelimiter.New(1, 1, time.Hour), ByIP)(echoBody(t))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "not an address"
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFormField(t *testing.T) {
	form := url.Values{"grant_type": {"password"}, "username": {" Reader@Example.com "}}
	req := httptest.NewRequest(http.MethodPost, "/connect/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	identity, err := FormField("username")(req)

	require.NoError(t, err)
	assert.Equal(t, "username:reader@example.com", identity)
	assert.Equal(t, "password", req.PostFormValue("grant_type"))
}

func TestJSONField(t *testing.T) {
	t.Run("restores the body", func(t *testing.T) {
		body := `{"userName": "Reader@example.com"}`
		handler := RateLimit(ratelimiter.New(1, 5, time.Hour), JSONField("userName"))(echoBody(t))
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, body, rr.Body.String())
	})

	t.Run("falls back to ip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other": 1}`))
		req.RemoteAddr = "10.0.0.3:1234"

		identity, err := JSONField("userName")(req)

		require.NoError(t, err)
		assert.Equal(t, "ip:10.0.0.3", identity)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := JSONField("userName")(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)))
		assert.Error(t, err)
	})
}
