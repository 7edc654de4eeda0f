package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "flightbooking/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"flightbooking/internal/auth"
	"flightbooking/internal/cache"
	"flightbooking/internal/config"
	"flightbooking/internal/db"
	"flightbooking/internal/events"
	"flightbooking/internal/handler"
	"flightbooking/internal/payment"
	"flightbooking/internal/repository"
	"flightbooking/internal/router"
	"flightbooking/internal/service"
	"flightbooking/internal/storage"
)

// @title Flight Booking API
// @version 1.0
// @description Flight search, bookings, favorites, airline reviews and account administration with JWT authentication.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Printf("Warning: failed to drop tables: %v", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("publishing events to %s on %s", cfg.Kafka.Topic, strings.Join(cfg.Kafka.Brokers, ","))
	}

	files := storage.NewLocalDisk(cfg.UploadDir)
	store := repository.NewStore(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	// Initialize services
	lifecycle := service.NewLifecycleUpdater(store, publisher, time.Now)
	guard := service.NewDeletionGuard(store, files, publisher, time.Now)
	authService := service.NewAuthService(store.Users(), jwtService, tokenStore, hasher)
	flightService := service.NewFlightService(store, lifecycle, guard, files, publisher, time.Now)
	airlineService := service.NewAirlineService(store, hasher, guard, publisher)
	bookingService := service.NewBookingService(store, lifecycle, publisher, time.Now)
	favoriteService := service.NewFavoriteService(store, lifecycle, time.Now)
	reviewService := service.NewReviewService(store)
	userService := service.NewUserService(store, hasher, guard, files, publisher)
	paymentService := service.NewPaymentService(store, lifecycle, payment.NewStubGateway(cfg.Payment.CheckoutURL), service.PaymentOptions{
		Currency: cfg.Payment.Currency,
		BackURLs: payment.BackURLs{
			Success: cfg.Payment.SuccessURL,
			Failure: cfg.Payment.FailureURL,
			Pending: cfg.Payment.PendingURL,
		},
	}, publisher)

	e := echo.New()
	router.Register(e, cfg, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Flight:   handler.NewFlightHandler(flightService),
		Airline:  handler.NewAirlineHandler(airlineService),
		Booking:  handler.NewBookingHandler(bookingService),
		Favorite: handler.NewFavoriteHandler(favoriteService),
		Review:   handler.NewReviewHandler(reviewService),
		User:     handler.NewUserHandler(userService),
		Payment:  handler.NewPaymentHandler(paymentService),
	}, jwtService, authService)

	// Log swagger full path
	swaggerHost := cfg.SwaggerHost
	if swaggerHost == "" {
		swaggerHost = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(swaggerHost, "http://") && !strings.HasPrefix(swaggerHost, "https://") {
		swaggerHost = "http://" + swaggerHost
	}
	log.Printf("Swagger documentation available at: %s/swagger/index.html", swaggerHost)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
