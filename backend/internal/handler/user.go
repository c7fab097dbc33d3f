package handler

import (
	"net/http"

	"github.com/xhunter74/collectionmanager/shared/api"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
	"github.com/xhunter74/collectionmanager/shared/utils"
)

const avatarFileName = "avatar.png"

// Token serves the form-encoded password and refresh_token grants. The access
// token is also set as a cookie for browser clients.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteErrorAndStatusCode(w, errors.BadRequest("Body is invalid form"))
		return
	}
	req := api.TokenRequest{
		GrantType:    r.PostFormValue("grant_type"),
		UserName:     r.PostFormValue("username"),
		Password:     r.PostFormValue("password"),
		RefreshToken: r.PostFormValue("refresh_token"),
	}
	if err := utils.Validate(&req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp, err := h.user.Token(r.Context(), req)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    resp.AccessToken,
		MaxAge:   int(resp.ExpiresIn),
		HttpOnly: true,
		Secure:   h.cfg.Public.HTTP.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.user.Register(r.Context(), body.Email, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Location", "/api/Users/"+user.Id.String())
	utils.WriteJSON(w, http.StatusCreated, api.RegisterResponse{Id: user.Id, Name: user.UserName})
}

func profile(user domain.User) api.UserProfileResponse {
	return api.UserProfileResponse{Id: user.Id, Name: user.UserName, Email: user.Email, Avatar: user.Avatar}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	user, err := h.user.GetProfile(r.Context(), userId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile(user))
}

func (h *Handler) GetUserById(w http.ResponseWriter, r *http.Request) {
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
	user, err := h.user.GetUserById(r.Context(), userId, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile(user))
}

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	upload, err := h.readUpload(w, r, "avatar")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	avatarId, err := h.user.UploadAvatar(r.Context(), userId, upload.Data)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.UploadResponse{FileId: avatarId})
}

func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userId, err := callerId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	data, err := h.user.GetAvatar(r.Context(), userId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeFile(w, avatarFileName, data)
}

func (h *Handler) ResetPasswordLink(w http.ResponseWriter, r *http.Request) {
	var body api.ResetPasswordLinkRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.user.GenerateResetPasswordLink(r.Context(), body.UserName); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	// same answer for unknown users
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "If the account exists, a reset link has been sent."})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body api.ResetPasswordRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.user.ResetPassword(r.Context(), body.UserId, body.Token, body.Password); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Password has been reset."})
}
