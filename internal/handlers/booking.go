package handlers

import (
	"io"
	"net/http"

	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/services"
	"tourbook/internal/utils/helpers"

	"go.uber.org/zap"
)

type BookingHandler struct {
	bookings *services.BookingService
	tours    *services.TourService
	checkout *services.CheckoutService
}

func NewBookingHandler(bookings *services.BookingService, tours *services.TourService, checkout *services.CheckoutService) *BookingHandler {
	return &BookingHandler{bookings: bookings, tours: tours, checkout: checkout}
}

// CheckoutSession godoc
// @Summary Создать платёж за тур
// @Tags bookings
// @Security ApiKeyAuth
// @Produce json
// @Param tourId path int true "ID тура"
// @Success 200 {object} map[string]any "status и session{id,url}"
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/v1/bookings/checkout-session/{tourId} [get]
func (h *BookingHandler) CheckoutSession(w http.ResponseWriter, r *http.Request) {
	tourID, err := pathID(r, "tourId")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	tour, err := h.tours.Get(r.Context(), tourID)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), tour, currentUser(r), baseURL(r)+"/my-tours")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]any{"status": "success", "session": session})
}

// WebhookCheckout godoc
// @Summary Уведомление платёжного провайдера
// @Tags bookings
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/v1/bookings/webhook-checkout [post]
func (h *BookingHandler) WebhookCheckout(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Warn("Не удалось прочитать webhook", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Webhook error: unreadable body")
		return
	}

	event, err := h.checkout.VerifyNotification(r.Context(), body)
	if err != nil {
		log.Warn("Webhook отклонён", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Webhook error: notification could not be verified")
		return
	}

	if event != nil {
		if err := h.bookings.ConfirmPayment(r.Context(), event); err != nil {
			helpers.WriteError(w, r, err)
			return
		}
	}
	helpers.JSON(w, http.StatusOK, map[string]bool{"received": true})
}

// ListBookings godoc
// @Summary Все бронирования
// @Tags bookings
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} helpers.SuccessResponse
// @Router /api/v1/bookings [get]
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.List(r.Context())
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.List(w, len(bookings), map[string]any{"bookings": bookings})
}

// GetBooking godoc
// @Summary Бронирование по ID
// @Tags bookings
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID бронирования"
// @Success 200 {object} helpers.SuccessResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	b, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.Success(w, http.StatusOK, map[string]any{"booking": b})
}

// CreateBooking godoc
// @Summary Создать бронирование вручную
// @Tags bookings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.BookingInput true "Бронирование"
// @Success 201 {object} helpers.SuccessResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/v1/bookings [post]
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in models.BookingInput
	if err := decodeJSON(r, &in); err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	b, err := h.bookings.Create(r.Context(), in)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.Success(w, http.StatusCreated, map[string]any{"booking": b})
}

// UpdateBooking godoc
// @Summary Изменить бронирование
// @Tags bookings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID бронирования"
// @Param input body models.BookingPatch true "Что обновить"
// @Success 200 {object} helpers.SuccessResponse
// @Router /api/v1/bookings/{id} [patch]
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	var p models.BookingPatch
	if err := decodeJSON(r, &p); err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	b, err := h.bookings.Update(r.Context(), id, p)
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	helpers.Success(w, http.StatusOK, map[string]any{"booking": b})
}

// DeleteBooking godoc
// @Summary Удалить бронирование
// @Tags bookings
// @Security ApiKeyAuth
// @Param id path int true "ID бронирования"
// @Success 204
// @Router /api/v1/bookings/{id} [delete]
func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	if err := h.bookings.Delete(r.Context(), id); err != nil {
		helpers.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
