package app

import (
	"context"
	"fmt"

	"tourbook/internal/config"
	"tourbook/internal/db"
	"tourbook/internal/handlers"
	"tourbook/internal/logger"
	"tourbook/internal/middleware"
	"tourbook/internal/repository"
	"tourbook/internal/routes"
	"tourbook/internal/services"
	"tourbook/internal/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// InitApp поднимает пул, накатывает миграции и собирает маршруты.
// cleanup закрывает пул; вызывать после остановки сервера.
func InitApp(ctx context.Context, cfg *config.Config) (router *mux.Router, cleanup func(), err error) {
	conn, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("подключение к БД %s: %w", cfg.GetDSNSafe(), err)
	}
	cleanup = conn.Close

	if err := db.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	logger.Log.Info("Миграции применены", zap.String("dsn", cfg.GetDSNSafe()))

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	tourRepo := repository.NewTourRepository(conn)
	reviewRepo := repository.NewReviewRepository(conn)
	bookingRepo := repository.NewBookingRepository(conn)

	// Сервисы
	tokenService := services.NewTokenService(cfg)
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo, emailService, tokenService, cfg)
	tourService := services.NewTourService(tourRepo)
	reviewService := services.NewReviewService(reviewRepo, tourRepo)
	bookingService := services.NewBookingService(bookingRepo)
	checkoutService := services.NewCheckoutService(cfg)

	renderer, err := views.New()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService, handlers.NewSessionCookies(cfg))
	tourHandler := handlers.NewTourHandler(tourService, reviewService)
	bookingHandler := handlers.NewBookingHandler(bookingService, tourService, checkoutService)
	viewHandler := handlers.NewViewHandler(tourService, reviewService, renderer)

	ips, err := middleware.NewIPResolver(cfg.TrustedProxies)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	// Маршруты
	router = mux.NewRouter()
	routes.InitRoutes(router,
		middleware.NewAuth(tokenService, userRepo),
		ips,
		middleware.NewRateLimiter(cfg.RateLimitPerHour),
		authHandler, tourHandler, bookingHandler, viewHandler,
	)

	return router, cleanup, nil
}
