package handler

import (
	"net/http"
	"strings"

	"github.com/xhunter74/collectionmanager/shared/api"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/utils"
)

// decodeItemInput reads the [{name, value}] body of create and update.
func decodeItemInput(r *http.Request) ([]api.ItemFieldInput, error) {
	var input []api.ItemFieldInput
	if err := utils.Decode(r.Body, &input); err != nil {
		return nil, err
	}
	for i := range input {
		if err := utils.Validate(&input[i]); err != nil {
			return nil, err
		}
	}
	return input, nil
}

// GetItems lists flattened items. ?fields=Title,Author limits the fields.
func (h *Handler) GetItems(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	collectionId, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var fields []string
	if q := r.URL.Query().Get("fields"); q != "" {
		fields = strings.Split(q, ",")
	}

	records, err := h.item.GetAll(r.Context(), userId, collectionId, fields)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if records == nil {
		records = []domain.FlatRecord{}
	}
	utils.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
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
	item, err := h.item.GetById(r.Context(), userId, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	collectionId, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	input, err := decodeItemInput(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	record, err := h.item.Create(r.Context(), userId, collectionId, input)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if id, ok := record.Get("Id"); ok {
		w.Header().Set("Location", "/api/Items/"+id.String())
	}
	utils.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
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
	input, err := decodeItemInput(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	item, err := h.item.Update(r.Context(), userId, id, input)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
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
	if err := h.item.Delete(r.Context(), userId, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
