package handler

import (
	"net/http"

	"github.com/xhunter74/collectionmanager/shared/api"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/utils"
)

func (h *Handler) GetCollections(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	collections, err := h.collection.GetAll(r.Context(), userId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if collections == nil {
		collections = []domain.Collection{}
	}
	utils.WriteJSON(w, http.StatusOK, collections)
}

func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	collection, err := h.collection.GetById(r.Context(), userId, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, collection)
}

func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.CreateCollectionRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	collection, err := h.collection.Create(r.Context(), userId, body.Name, body.Description)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.Header().Set("Location", "/api/Collections/"+collection.Id.String())
	utils.WriteJSON(w, http.StatusCreated, collection)
}

func (h *Handler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.UpdateCollectionRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	collection, err := h.collection.Update(r.Context(), userId, domain.CollectionUpdateData{
		Id:          id,
		Name:        body.Name,
		Description: body.Description,
		Image:       body.Image,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, collection)
}

func (h *Handler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.collection.Delete(r.Context(), userId, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
