package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"flightbooking/internal/auth"
	"flightbooking/internal/config"
	"flightbooking/internal/errors"
	"flightbooking/internal/handler"
	"flightbooking/internal/model"
	"flightbooking/internal/service"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	Flight   *handler.FlightHandler
	Airline  *handler.AirlineHandler
	Booking  *handler.BookingHandler
	Favorite *handler.FavoriteHandler
	Review   *handler.ReviewHandler
	User     *handler.UserHandler
	Payment  *handler.PaymentHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	h Handlers,
	jwtService *auth.JWTService,
	authService service.AuthService,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if cfg.UploadDir != "" {
		e.Static("/uploads", cfg.UploadDir)
	}

	requireAuth := []echo.MiddlewareFunc{
		echojwt.WithConfig(echojwt.Config{
			ContextKey:  auth.ClaimsKey,
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
			ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
				return jwtService.ValidateToken(token)
			},
			ErrorHandler: func(_ echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Message: "invalid or missing token",
					Code:    "UNAUTHORIZED",
					Error:   err.Error(),
				})
			},
		}),
		Authenticate(authService),
	}
	admin := RequireRoles(model.RoleAdmin)
	manager := RequireRoles(model.RoleAdmin, model.RoleAirline)

	authGroup := e.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.GET("/verify", h.Auth.Verify, requireAuth...)
	authGroup.POST("/logout", h.Auth.Logout, requireAuth...)

	api := e.Group("/api")

	// Public routes
	api.GET("/flights", h.Flight.ListFlights)
	api.GET("/flights/featured", h.Flight.FeaturedFlights)
	api.GET("/flights/:id", h.Flight.GetFlight)
	api.GET("/reviews", h.Review.ListReviews)
	api.GET("/reviews/airline/:airline", h.Review.AirlineReviews)
	api.GET("/reviews/airline/:airline/average", h.Review.AirlineAverage)
	api.POST("/payment/webhook", h.Payment.Webhook)

	// Secured routes (require JWT authentication)
	secured := api.Group("", requireAuth...)

	// Flight management
	secured.GET("/flights/all", h.Flight.ManagedFlights, manager)
	secured.POST("/flights", h.Flight.CreateFlight, manager)
	secured.PUT("/flights/:id", h.Flight.UpdateFlight, manager)
	secured.DELETE("/flights/:id", h.Flight.DeleteFlight, manager)
	secured.PATCH("/flights/:id/toggle-status", h.Flight.ToggleStatus, manager)
	secured.PATCH("/flights/:id/featured", h.Flight.ToggleFeatured, admin)
	secured.POST("/flights/:id/image", h.Flight.UploadImage, manager)

	// Airline routes
	airlines := secured.Group("/airlines", admin)
	airlines.GET("", h.Airline.ListAirlines)
	airlines.GET("/:id", h.Airline.GetAirline)
	airlines.POST("", h.Airline.CreateAirline)
	airlines.PUT("/:id", h.Airline.UpdateAirline)
	airlines.DELETE("/:id", h.Airline.DeleteAirline)

	// Booking routes
	secured.POST("/bookings", h.Booking.CreateBooking)
	secured.GET("/bookings/my-bookings", h.Booking.MyBookings)
	secured.GET("/bookings", h.Booking.ListBookings, admin)
	secured.GET("/bookings/user/:userId", h.Booking.UserBookings, admin)
	secured.GET("/bookings/:id", h.Booking.GetBooking)
	secured.PATCH("/bookings/:id/cancel", h.Booking.CancelBooking)
	secured.GET("/bookings/:id/receipt", h.Booking.Receipt)

	// Payment routes
	secured.POST("/payment", h.Payment.CreatePreference)

	// Favorite routes
	secured.POST("/favorites", h.Favorite.AddFavorite)
	secured.GET("/favorites", h.Favorite.ListFavorites)
	secured.DELETE("/favorites/:flightId", h.Favorite.RemoveFavorite)

	// Review routes
	secured.POST("/reviews", h.Review.CreateReview)
	secured.PUT("/reviews/:id", h.Review.UpdateReview)
	secured.DELETE("/reviews/:id", h.Review.DeleteReview)

	// User routes
	secured.GET("/users/profile/me", h.User.GetProfile)
	secured.PUT("/users/profile/me", h.User.UpdateProfile)
	secured.DELETE("/users/profile/me/with-bookings", h.User.DeleteProfile)
	users := secured.Group("/users", admin)
	users.GET("", h.User.ListUsers)
	users.GET("/:id", h.User.GetUser)
	users.POST("", h.User.CreateUser)
	users.PUT("/:id", h.User.UpdateUser)
	users.DELETE("/:id", h.User.DeleteUser)
	users.PATCH("/:id/toggle-status", h.User.ToggleStatus)
	users.PATCH("/:id/role", h.User.ChangeRole)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
