package handlers

import (
	"net/http"
	"strconv"

	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/reqctx"
	"tourbook/internal/services"
	"tourbook/internal/utils/helpers"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
	cookies     *SessionCookies
}

func NewAuthHandler(authService *services.AuthService, cookies *SessionCookies) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userData struct {
	User *models.User `json:"user"`
}

type authResponse struct {
	Status string   `json:"status"`
	Token  string   `json:"token"`
	Data   userData `json:"data"`
}

// sendToken ставит cookie и отдаёт токен с пользователем.
func (h *AuthHandler) sendToken(w http.ResponseWriter, r *http.Request, status int, res *services.AuthResult) {
	h.cookies.Set(w, r, res.Token)
	helpers.JSON(w, status, authResponse{Status: "success", Token: res.Token, Data: userData{User: res.User}})
}

// currentUser - пользователь, которого положил Protect.
func currentUser(r *http.Request) *models.User {
	u, ok := reqctx.GetUser(r.Context())
	if !ok {
		panic("handler requires an authenticated user")
	}
	return u
}

// Signup godoc
// @Summary Регистрация нового пользователя
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.SignupInput true "Данные регистрации"
// @Success 201 {object} authResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/v1/users/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		helpers.WriteError(w, r, err)
		return
	}

	res, err := h.authService.Signup(r.Context(), in, baseURL(r)+"/me")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	h.sendToken(w, r, http.StatusCreated, res)
}

// Login godoc
// @Summary Вход по email и паролю
// @Tags users
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} authResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /api/v1/users/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		helpers.WriteError(w, r, err)
		return
	}

	res, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	h.sendToken(w, r, http.StatusOK, res)
}

// Logout godoc
// @Summary Выход: затирает cookie с токеном
// @Tags users
// @Success 200 {object} map[string]string
// @Router /api/v1/users/logout [get]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w, r)
	helpers.JSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// UpdateMyPassword godoc
// @Summary Смена пароля текущего пользователя
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body services.UpdatePasswordInput true "Текущий и новый пароль"
// @Success 200 {object} authResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /api/v1/users/updateMyPassword [patch]
func (h *AuthHandler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var in services.UpdatePasswordInput
	if err := decodeJSON(r, &in); err != nil {
		helpers.WriteError(w, r, err)
		return
	}

	res, err := h.authService.UpdatePassword(r.Context(), user.ID, in)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	h.sendToken(w, r, http.StatusOK, res)
}

// Me godoc
// @Summary Профиль текущего пользователя
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} helpers.SuccessResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /api/v1/users/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	helpers.Success(w, http.StatusOK, userData{User: currentUser(r)})
}

// GetUsers godoc
// @Summary Список пользователей (админ)
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param page query int false "Номер страницы (начиная с 1)"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} helpers.SuccessResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Router /api/v1/users [get]
func (h *AuthHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := h.authService.GetUsersPaginated(r.Context(), page, limit)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	logger.WithCtx(r.Context()).Debug("Список пользователей", zap.Int("total", total), zap.Int("page", page))
	helpers.List(w, len(users), map[string]any{"users": users, "total": total, "page": page})
}

// GetUser godoc
// @Summary Пользователь по ID (админ)
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} helpers.SuccessResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/v1/users/{id} [get]
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	user, err := h.authService.GetUserByID(r.Context(), id)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.Success(w, http.StatusOK, userData{User: user})
}
