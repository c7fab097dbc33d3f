package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xhunter74/collectionmanager/backend/internal/handler"
	limit "github.com/xhunter74/collectionmanager/backend/internal/middleware"
	rl "github.com/xhunter74/collectionmanager/backend/internal/middleware/ratelimiter"
	"github.com/xhunter74/collectionmanager/shared/config"
	"github.com/xhunter74/collectionmanager/shared/errors"
	mw "github.com/xhunter74/collectionmanager/shared/middleware"
	"github.com/xhunter74/collectionmanager/shared/middleware/metrics"
)

// byUser keys rate limits of signed-in routes. Must run after NeedAuth.
func byUser(r *http.Request) (string, error) {
	id, ok := mw.GetUserIdFromContext(r)
	if !ok {
		return "", errors.Unauthorized("Please sign-in")
	}
	return "user:" + id.String(), nil
}

// New builds the chi router with every route of the api.
// Limiters attached with Use are shared by all routes of that group.
func New(cfg *config.Config, h *handler.Handler, auth *mw.Auth) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Public.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Location", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))
	r.Use(mw.SecurityHeaders(cfg.Public.HTTP.SecureCookies))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// Token endpoint: 5 attempts per minute by user name, 1 per second by IP
	r.With(
		limit.RateLimit(rl.New(1, 10, time.Hour), limit.ByIP),
		limit.RateLimit(rl.New(5.0/60.0, 5, time.Hour), limit.FormField("username")),
	).Post("/connect/token", h.Token)

	r.Route("/api", func(api chi.Router) {
		// Anonymous user endpoints
		api.Group(func(anon chi.Router) {
			anon.Use(limit.RateLimit(rl.New(1.0/10.0, 3, time.Hour), limit.ByIP))
			anon.Post("/Users", h.Register)
			anon.With(limit.RateLimit(rl.New(1.0/60.0, 1, time.Hour), limit.JSONField("userName"))).
				Post("/Users/reset-password-link", h.ResetPasswordLink)
			anon.Post("/Users/reset-password", h.ResetPassword)
		})

		api.Group(func(user chi.Router) {
			user.Use(auth.NeedAuth())
			user.Use(limit.RateLimit(rl.New(100, 200, time.Hour), byUser))

			user.Get("/Users", h.GetProfile)
			user.Post("/Users/avatar", h.UploadAvatar)
			user.Get("/Users/avatar", h.GetAvatar)
			user.Get("/Users/{id}", h.GetUserById)

			user.Get("/Collections", h.GetCollections)
			user.Post("/Collections", h.CreateCollection)
			user.Get("/Collections/{id}", h.GetCollection)
			user.Put("/Collections/{id}", h.UpdateCollection)
			user.Delete("/Collections/{id}", h.DeleteCollection)

			user.Get("/Collections/{collectionId}/CollectionFields", h.GetCollectionFields)
			user.Post("/Collections/{collectionId}/CollectionFields", h.CreateField)
			user.Get("/CollectionFields/{id}", h.GetField)
			user.Put("/CollectionFields/{id}", h.UpdateField)
			user.Delete("/CollectionFields/{id}", h.DeleteField)
			user.Put("/CollectionFields/{id}/order", h.ChangeFieldOrder)

			user.Get("/CollectionFields/{id}/PossibleValues", h.GetPossibleValues)
			user.Post("/CollectionFields/{id}/PossibleValues", h.CreatePossibleValue)
			user.Get("/PossibleValues/{id}", h.GetPossibleValue)
			user.Put("/PossibleValues/{id}", h.UpdatePossibleValue)
			user.Delete("/PossibleValues/{id}", h.DeletePossibleValue)

			user.Get("/Collections/{id}/Items", h.GetItems)
			user.Post("/Collections/{id}/Items", h.CreateItem)
			user.Get("/Items/{id}", h.GetItem)
			user.Put("/Items/{id}", h.UpdateItem)
			user.Delete("/Items/{id}", h.DeleteItem)

			user.Post("/Collections/{collectionId}/Files", h.UploadFile)
			user.Get("/Files/{id}", h.DownloadFile)
			user.Delete("/Files/{id}", h.DeleteFile)
			user.Post("/Collections/{collectionId}/Images", h.UploadImage)
			user.Get("/Collections/{collectionId}/Images/{id}", h.DownloadImage)
		})
	})

	return r
}
