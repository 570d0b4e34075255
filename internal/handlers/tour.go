package handlers

import (
	"net/http"
	"strconv"

	"tourbook/internal/models"
	"tourbook/internal/services"
	"tourbook/internal/utils/helpers"
)

type TourHandler struct {
	tours   *services.TourService
	reviews *services.ReviewService
}

func NewTourHandler(tours *services.TourService, reviews *services.ReviewService) *TourHandler {
	return &TourHandler{tours: tours, reviews: reviews}
}

// ListTours godoc
// @Summary Список туров
// @Tags tours
// @Produce json
// @Param sort query string false "price, -price, ratingsAverage, -ratingsAverage, duration, -duration"
// @Param limit query int false "Размер страницы"
// @Param page query int false "Номер страницы"
// @Success 200 {object} helpers.SuccessResponse
// @Router /api/v1/tours [get]
func (h *TourHandler) ListTours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))

	tours, err := h.tours.List(r.Context(), models.TourQuery{Sort: q.Get("sort"), Limit: limit, Page: page})
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.List(w, len(tours), map[string]any{"tours": tours})
}

// GetTour godoc
// @Summary Тур по ID
// @Tags tours
// @Produce json
// @Param id path int true "ID тура"
// @Success 200 {object} helpers.SuccessResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/v1/tours/{id} [get]
func (h *TourHandler) GetTour(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	tour, err := h.tours.Get(r.Context(), id)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.Success(w, http.StatusOK, map[string]any{"tour": tour})
}

// CreateTour godoc
// @Summary Создать тур
// @Tags tours
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.TourInput true "Тур"
// @Success 201 {object} helpers.SuccessResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Router /api/v1/tours [post]
func (h *TourHandler) CreateTour(w http.ResponseWriter, r *http.Request) {
	var in models.TourInput
	if err := decodeJSON(r, &in); err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	tour, err := h.tours.Create(r.Context(), in)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.Success(w, http.StatusCreated, map[string]any{"tour": tour})
}

// UpdateTour godoc
// @Summary Частичное обновление тура
// @Tags tours
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID тура"
// @Param input body models.TourPatch true "Что обновить"
// @Success 200 {object} helpers.SuccessResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/v1/tours/{id} [patch]
func (h *TourHandler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	var p models.TourPatch
	if err := decodeJSON(r, &p); err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	tour, err := h.tours.Update(r.Context(), id, p)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.Success(w, http.StatusOK, map[string]any{"tour": tour})
}

// DeleteTour godoc
// @Summary Удалить тур
// @Tags tours
// @Security ApiKeyAuth
// @Param id path int true "ID тура"
// @Success 204
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/v1/tours/{id} [delete]
func (h *TourHandler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	if err := h.tours.Delete(r.Context(), id); err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReviews godoc
// @Summary Отзывы о туре
// @Tags reviews
// @Produce json
// @Param tourId path int true "ID тура"
// @Success 200 {object} helpers.SuccessResponse
// @Router /api/v1/tours/{tourId}/reviews [get]
func (h *TourHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	tourID, err := pathID(r, "tourId")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	reviews, err := h.reviews.ListByTour(r.Context(), tourID)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.List(w, len(reviews), map[string]any{"reviews": reviews})
}

// CreateReview godoc
// @Summary Оставить отзыв о туре
// @Tags reviews
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param tourId path int true "ID тура"
// @Param input body models.ReviewInput true "Отзыв"
// @Success 201 {object} helpers.SuccessResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/v1/tours/{tourId}/reviews [post]
func (h *TourHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	tourID, err := pathID(r, "tourId")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	var in models.ReviewInput
	if err := decodeJSON(r, &in); err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	review, err := h.reviews.Create(r.Context(), tourID, currentUser(r), in)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.Success(w, http.StatusCreated, map[string]any{"review": review})
}
