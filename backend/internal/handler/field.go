package handler

import (
	"net/http"

	"github.com/xhunter74/collectionmanager/shared/api"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/utils"
)

func fieldResponses(fields []domain.CollectionField) []api.FieldResponse {
	resp := make([]api.FieldResponse, 0, len(fields))
	for _, f := range fields {
		resp = append(resp, api.NewFieldResponse(f))
	}
	return resp
}

func (h *Handler) GetCollectionFields(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	collectionId, err := uuidParam(r, "collectionId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	fields, err := h.field.GetCollectionFields(r.Context(), userId, collectionId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, fieldResponses(fields))
}

func (h *Handler) GetField(w http.ResponseWriter, r *http.Request) {
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
	field, err := h.field.GetFieldById(r.Context(), userId, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewFieldResponse(field))
}

func (h *Handler) CreateField(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	collectionId, err := uuidParam(r, "collectionId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.CreateFieldRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	field, err := h.field.Create(r.Context(), userId, domain.FieldCreationData{
		CollectionId: collectionId,
		Name:         body.Name,
		Type:         *body.Type,
		IsRequired:   body.IsRequired,
		Order:        body.Order,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.Header().Set("Location", "/api/CollectionFields/"+field.Id.String())
	utils.WriteJSON(w, http.StatusCreated, api.NewFieldResponse(field))
}

func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
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
	var body api.UpdateFieldRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	field, err := h.field.Update(r.Context(), userId, domain.FieldUpdateData{
		Id:         id,
		Name:       body.Name,
		Type:       *body.Type,
		IsRequired: body.IsRequired,
		Order:      *body.Order,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewFieldResponse(field))
}

func (h *Handler) ChangeFieldOrder(w http.ResponseWriter, r *http.Request) {
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
	var body api.ChangeOrderRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	field, err := h.field.ChangeOrder(r.Context(), userId, id, *body.Order)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewFieldResponse(field))
}

func (h *Handler) DeleteField(w http.ResponseWriter, r *http.Request) {
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
	if err := h.field.Delete(r.Context(), userId, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Possible values

func (h *Handler) GetPossibleValues(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	fieldId, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	values, err := h.field.GetPossibleValues(r.Context(), userId, fieldId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if values == nil {
		values = []domain.PossibleValue{}
	}
	utils.WriteJSON(w, http.StatusOK, values)
}

func (h *Handler) GetPossibleValue(w http.ResponseWriter, r *http.Request) {
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
	value, err := h.field.GetPossibleValueById(r.Context(), userId, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, value)
}

func (h *Handler) CreatePossibleValue(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	fieldId, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.PossibleValueRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	value, err := h.field.CreatePossibleValue(r.Context(), userId, fieldId, body.Value)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, value)
}

func (h *Handler) UpdatePossibleValue(w http.ResponseWriter, r *http.Request) {
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
	var body api.PossibleValueRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	value, err := h.field.UpdatePossibleValue(r.Context(), userId, id, body.Value)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, value)
}

func (h *Handler) DeletePossibleValue(w http.ResponseWriter, r *http.Request) {
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
	if err := h.field.DeletePossibleValue(r.Context(), userId, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
