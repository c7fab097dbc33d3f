package handler

import (
	"net/http"

	"github.com/xhunter74/collectionmanager/shared/api"
	"github.com/xhunter74/collectionmanager/shared/utils"
)

func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
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
	upload, err := h.readUpload(w, r, "file")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	fileId, err := h.file.UploadFile(r.Context(), userId, collectionId, upload.Name, upload.Data)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.Header().Set("Location", "/api/Files/"+fileId.String())
	utils.WriteJSON(w, http.StatusCreated, api.UploadResponse{FileId: fileId})
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
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
	name, data, err := h.file.DownloadFile(r.Context(), userId, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeFile(w, name, data)
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
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
	if err := h.file.DeleteFile(r.Context(), userId, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
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
	upload, err := h.readUpload(w, r, "image")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	imageId, err := h.file.UploadCollectionImage(r.Context(), userId, collectionId, upload.Name, upload.Data)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.Header().Set("Location", "/api/Collections/"+collectionId.String()+"/Images/"+imageId.String())
	utils.WriteJSON(w, http.StatusCreated, api.UploadResponse{FileId: imageId})
}

func (h *Handler) DownloadImage(w http.ResponseWriter, r *http.Request) {
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
	id, err := uuidParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	name, data, err := h.file.DownloadCollectionImage(r.Context(), userId, collectionId, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeFile(w, name, data)
}
