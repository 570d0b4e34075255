package handlers

import (
	"net/http"

	"tourbook/internal/services"
	"tourbook/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword godoc
// @Summary Запрос на сброс пароля: токен уходит на почту
// @Tags users
// @Accept json
// @Produce json
// @Param input body forgotPasswordRequest true "Email"
// @Success 200 {object} map[string]string
// @Failure 404 {object} helpers.ErrorResponse
// @Failure 500 {object} helpers.ErrorResponse "Письмо не отправлено"
// @Router /api/v1/users/forgotPassword [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		helpers.WriteError(w, r, err)
		return
	}

	base := baseURL(r)
	resetURL := func(raw string) string { return base + "/api/v1/users/resetPassword/" + raw }

	if err := h.authService.ForgotPassword(r.Context(), req.Email, resetURL); err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Token sent to email!"})
}

// ResetPassword godoc
// @Summary Установка нового пароля по токену из письма
// @Tags users
// @Accept json
// @Produce json
// @Param token path string true "Токен из письма"
// @Param input body services.ResetPasswordInput true "Новый пароль"
// @Success 200 {object} authResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/v1/users/resetPassword/{token} [patch]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in services.ResetPasswordInput
	if err := decodeJSON(r, &in); err != nil {
		helpers.WriteError(w, r, err)
		return
	}

	res, err := h.authService.ResetPassword(r.Context(), mux.Vars(r)["token"], in)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	h.sendToken(w, r, http.StatusOK, res)
}
