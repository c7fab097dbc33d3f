package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/backend/internal/service"
	"github.com/xhunter74/collectionmanager/shared/config"
	"github.com/xhunter74/collectionmanager/shared/domain"
	internal_errors "github.com/xhunter74/collectionmanager/shared/errors"
	mw "github.com/xhunter74/collectionmanager/shared/middleware"
	"github.com/xhunter74/collectionmanager/shared/validation"
)

type Handler struct {
	user       service.UserService
	collection service.CollectionService
	field      service.FieldService
	item       service.ItemService
	file       service.FileService
	cfg        *config.Config
	health     Checks
}

func New(user service.UserService, collection service.CollectionService, field service.FieldService, item service.ItemService, file service.FileService, cfg *config.Config, health Checks) *Handler {
	return &Handler{
		user:       user,
		collection: collection,
		field:      field,
		item:       item,
		file:       file,
		cfg:        cfg,
		health:     health,
	}
}

// callerId returns the caller put into the context by the auth middleware.
func callerId(r *http.Request) (domain.UserId, error) {
	id, ok := mw.GetUserIdFromContext(r)
	if !ok {
		return uuid.Nil, internal_errors.Unauthorized("Please sign-in")
	}
	return id, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, internal_errors.BadRequest(fmt.Sprintf("Invalid %s: must be a uuid", name))
	}
	return id, nil
}

// readUpload reads the single file part named field, bounded by the
// configured upload size.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, field string) (*validation.UploadedFile, error) {
	upload, err := validation.ReadSingleFile(w, r, field, h.cfg.Public.MaxUploadSize)
	if err == nil {
		return upload, nil
	}
	switch {
	case errors.Is(err, validation.ErrPayloadTooLarge):
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("File exceeds the limit of %.0f MB", validation.FormatSizeMB(h.cfg.Public.MaxUploadSize)),
			StatusCode: http.StatusRequestEntityTooLarge,
		}
	case errors.Is(err, validation.ErrMissingFile):
		return nil, internal_errors.BadRequest("No file uploaded.")
	default:
		return nil, internal_errors.BadRequest(err.Error())
	}
}

func writeFile(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", validation.ContentType(name, data))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
