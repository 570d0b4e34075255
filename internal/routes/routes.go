package routes

import (
	"fmt"
	"net/http"

	"tourbook/internal/apperrors"
	"tourbook/internal/handlers"
	"tourbook/internal/middleware"
	"tourbook/internal/models"
	"tourbook/internal/utils/helpers"
	"tourbook/public"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

func InitRoutes(
	router *mux.Router,
	auth *middleware.Auth,
	ips *middleware.IPResolver,
	limiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	tourHandler *handlers.TourHandler,
	bookingHandler *handlers.BookingHandler,
	viewHandler *handlers.ViewHandler,
) {
	router.Use(middleware.Recoverer, middleware.RequestID, ips.RealIP, middleware.SecurityHeaders, middleware.Logging)
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	staff := middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide)

	// --- Статика и документация ---
	static := http.FileServer(http.FS(public.FS))
	router.PathPrefix("/css/").Handler(static)
	router.PathPrefix("/js/").Handler(static)
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(limiter.Middleware, middleware.BodyLimit(middleware.MaxBodyBytes))

	// --- Пользователи ---
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	users.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	users.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)
	users.HandleFunc("/forgotPassword", authHandler.ForgotPassword).Methods(http.MethodPost)
	users.HandleFunc("/resetPassword/{token}", authHandler.ResetPassword).Methods(http.MethodPatch)

	me := users.NewRoute().Subrouter()
	me.Use(auth.Protect)
	me.HandleFunc("/updateMyPassword", authHandler.UpdateMyPassword).Methods(http.MethodPatch)
	me.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	usersAdmin := me.NewRoute().Subrouter()
	usersAdmin.Use(middleware.RestrictTo(models.RoleAdmin))
	usersAdmin.HandleFunc("", authHandler.GetUsers).Methods(http.MethodGet)
	usersAdmin.HandleFunc("/{id:[0-9]+}", authHandler.GetUser).Methods(http.MethodGet)

	// --- Туры и отзывы ---
	tours := api.PathPrefix("/tours").Subrouter()
	tours.HandleFunc("", tourHandler.ListTours).Methods(http.MethodGet)
	tours.HandleFunc("/{id:[0-9]+}", tourHandler.GetTour).Methods(http.MethodGet)
	tours.HandleFunc("/{tourId:[0-9]+}/reviews", tourHandler.ListReviews).Methods(http.MethodGet)

	toursAuth := tours.NewRoute().Subrouter()
	toursAuth.Use(auth.Protect)

	toursStaff := toursAuth.NewRoute().Subrouter()
	toursStaff.Use(staff)
	toursStaff.HandleFunc("", tourHandler.CreateTour).Methods(http.MethodPost)
	toursStaff.HandleFunc("/{id:[0-9]+}", tourHandler.UpdateTour).Methods(http.MethodPatch)
	toursStaff.HandleFunc("/{id:[0-9]+}", tourHandler.DeleteTour).Methods(http.MethodDelete)

	reviewers := toursAuth.NewRoute().Subrouter()
	reviewers.Use(middleware.RestrictTo(models.RoleUser))
	reviewers.HandleFunc("/{tourId:[0-9]+}/reviews", tourHandler.CreateReview).Methods(http.MethodPost)

	// --- Бронирования ---
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.HandleFunc("/webhook-checkout", bookingHandler.WebhookCheckout).Methods(http.MethodPost)

	bookingsAuth := bookings.NewRoute().Subrouter()
	bookingsAuth.Use(auth.Protect)
	bookingsAuth.HandleFunc("/checkout-session/{tourId:[0-9]+}", bookingHandler.CheckoutSession).Methods(http.MethodGet)

	bookingsStaff := bookingsAuth.NewRoute().Subrouter()
	bookingsStaff.Use(staff)
	bookingsStaff.HandleFunc("", bookingHandler.ListBookings).Methods(http.MethodGet)
	bookingsStaff.HandleFunc("", bookingHandler.CreateBooking).Methods(http.MethodPost)
	bookingsStaff.HandleFunc("/{id:[0-9]+}", bookingHandler.GetBooking).Methods(http.MethodGet)
	bookingsStaff.HandleFunc("/{id:[0-9]+}", bookingHandler.UpdateBooking).Methods(http.MethodPatch)
	bookingsStaff.HandleFunc("/{id:[0-9]+}", bookingHandler.DeleteBooking).Methods(http.MethodDelete)

	// --- Страницы сайта ---
	pages := router.NewRoute().Subrouter()
	pages.Use(auth.IsLoggedIn)
	pages.HandleFunc("/", viewHandler.Overview).Methods(http.MethodGet)
	pages.HandleFunc("/tour/{slug}", viewHandler.Tour).Methods(http.MethodGet)
	pages.HandleFunc("/login", viewHandler.Login).Methods(http.MethodGet)
	pages.HandleFunc("/signup", viewHandler.Signup).Methods(http.MethodGet)

	account := router.NewRoute().Subrouter()
	account.Use(auth.ProtectWith(viewHandler.RenderError))
	account.HandleFunc("/me", viewHandler.Account).Methods(http.MethodGet)
	account.HandleFunc("/my-tours", viewHandler.MyTours).Methods(http.MethodGet)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	helpers.WriteError(w, r, apperrors.NotFound(fmt.Sprintf("Can't find %s on this server!", r.URL.Path)))
}
