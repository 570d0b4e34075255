package handlers

import (
	"net/http"

	"tourbook/internal/apperrors"
	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/reqctx"
	"tourbook/internal/services"
	"tourbook/internal/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ViewHandler struct {
	tours   *services.TourService
	reviews *services.ReviewService
	views   *views.Renderer
}

func NewViewHandler(tours *services.TourService, reviews *services.ReviewService, renderer *views.Renderer) *ViewHandler {
	return &ViewHandler{tours: tours, reviews: reviews, views: renderer}
}

func (h *ViewHandler) page(r *http.Request, title string) views.Page {
	u, _ := reqctx.GetUser(r.Context())
	return views.Page{Title: title, User: u}
}

func (h *ViewHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data views.Page) {
	if err := h.views.Render(w, status, name, data); err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка рендера страницы", zap.String("page", name), zap.Error(err))
		http.Error(w, "Something went very wrong!", http.StatusInternalServerError)
	}
}

// RenderError показывает страницу ошибки: операционные сообщения как есть, остальное скрываем.
func (h *ViewHandler) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	data := h.page(r, "Something went wrong!")
	status := http.StatusInternalServerError
	data.Message = "Please try again later."
	if ae, ok := apperrors.As(err); ok {
		status, data.Message = ae.Status, ae.Message
	} else {
		logger.WithCtx(r.Context()).Error("Ошибка страницы", zap.String("path", r.URL.Path), zap.Error(err))
	}
	h.render(w, r, status, "error", data)
}

func (h *ViewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	tours, err := h.tours.List(r.Context(), models.TourQuery{})
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	data := h.page(r, "All Tours")
	data.Tours = tours
	h.render(w, r, http.StatusOK, "overview", data)
}

func (h *ViewHandler) Tour(w http.ResponseWriter, r *http.Request) {
	tour, err := h.tours.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	reviews, err := h.reviews.ListByTour(r.Context(), tour.ID)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	data := h.page(r, tour.Name+" Tour")
	data.Tour, data.Reviews = tour, reviews
	h.render(w, r, http.StatusOK, "tour", data)
}

func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", h.page(r, "Log into your account"))
}

func (h *ViewHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup", h.page(r, "Create your account"))
}

func (h *ViewHandler) Account(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "account", h.page(r, "Your account"))
}

func (h *ViewHandler) MyTours(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	tours, err := h.tours.BookedBy(r.Context(), user.ID)
	if err != nil {
		h.RenderError(w, r, err)
		return
	}
	data := h.page(r, "My Tours")
	data.Tours = tours
	h.render(w, r, http.StatusOK, "account", data)
}
