package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAirlineNotFound is returned when an airline does not exist.
	ErrAirlineNotFound = errors.New("airline not found")
	// ErrFlightNotFound is returned when a flight does not exist.
	ErrFlightNotFound = errors.New("flight not found")
	// ErrBookingNotFound is returned when a booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrReviewNotFound is returned when a review does not exist.
	ErrReviewNotFound = errors.New("review not found")
	// ErrFavoriteNotFound is returned when a flight is not in the user's favorites.
	ErrFavoriteNotFound = errors.New("favorite not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrAccountInactive    = errors.New("account is not active")
	ErrForbidden          = errors.New("you do not have permission to perform this action")

	ErrEmailTaken       = errors.New("email is already registered")
	ErrNameTaken        = errors.New("name is already in use")
	ErrCodeTaken        = errors.New("airline code is already in use")
	ErrCUITTaken        = errors.New("cuit is already in use")
	ErrAlreadyFavorite  = errors.New("flight is already in favorites")
	ErrAlreadyReviewed  = errors.New("you have already reviewed this airline")
	ErrFlightFull       = errors.New("not enough seats left on this flight")
	ErrSelfDeletion     = errors.New("you cannot delete your own account from the admin panel")
	ErrSelfModification = errors.New("you cannot change your own role or status")

	ErrInvalidPassengers = errors.New("passengers must be a non-empty list")
	ErrInvalidAmount     = errors.New("totalPrice must be greater than zero")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrEmptyComment      = errors.New("comment is required")
	ErrInvalidRole       = errors.New("invalid role")
	ErrAirlineRoleLocked = errors.New("airline accounts cannot change role")
	ErrInvalidSchedule   = errors.New("invalid flight date or time")
	ErrInvalidFlight     = errors.New("capacity must be positive and basePrice cannot be negative")
	ErrFlightInactive    = errors.New("flight is not active")
	ErrFlightDeparted    = errors.New("flight has already departed")
	ErrBookingNotActive  = errors.New("only active bookings can be cancelled")
	ErrPasswordMismatch  = errors.New("email or password confirmation does not match")
	ErrInvalidUpload     = errors.New("only image files are allowed")

	ErrReactivateDeparted = errors.New("flight has already departed and cannot be reactivated; create a new flight instead")
	ErrFlightRequired     = errors.New("flightId is required")

	// ErrPaymentGateway is returned when the payment provider rejects or
	// cannot be reached for a checkout request.
	ErrPaymentGateway = errors.New("payment provider is unavailable")
)

// BlockedFlight identifies a flight that still carries live bookings.
type BlockedFlight struct {
	FlightID       uint   `json:"flightId"`
	Route          string `json:"route"`
	Date           string `json:"date"`
	ActiveBookings int64  `json:"activeBookings"`
}

// DeletionBlockedError is returned when an entity still has live obligations.
type DeletionBlockedError struct {
	Entity   string          `json:"entity"`
	EntityID uint            `json:"entityId"`
	Flights  []BlockedFlight `json:"flights,omitempty"`
	Bookings int64           `json:"activeBookings"`
}

func (e *DeletionBlockedError) Error() string {
	if len(e.Flights) == 0 {
		return fmt.Sprintf("cannot delete %s %d: it has %d active bookings", e.Entity, e.EntityID, e.Bookings)
	}
	parts := make([]string, 0, len(e.Flights))
	for _, f := range e.Flights {
		parts = append(parts, fmt.Sprintf("flight %d (%s, %s) has %d active bookings", f.FlightID, f.Route, f.Date, f.ActiveBookings))
	}
	return fmt.Sprintf("cannot delete %s %d: %s", e.Entity, e.EntityID, strings.Join(parts, "; "))
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Detail     string
	Details    interface{}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
		Error:   e.Detail,
		Details: e.Details,
	}
}

var statusByError = []struct {
	err    error
	status int
	code   string
}{
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrAirlineNotFound, http.StatusNotFound, "AIRLINE_NOT_FOUND"},
	{ErrFlightNotFound, http.StatusNotFound, "FLIGHT_NOT_FOUND"},
	{ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
	{ErrReviewNotFound, http.StatusNotFound, "REVIEW_NOT_FOUND"},
	{ErrFavoriteNotFound, http.StatusNotFound, "FAVORITE_NOT_FOUND"},

	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrTokenRevoked, http.StatusUnauthorized, "TOKEN_REVOKED"},
	{ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},

	{ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	{ErrNameTaken, http.StatusConflict, "NAME_TAKEN"},
	{ErrCodeTaken, http.StatusConflict, "CODE_TAKEN"},
	{ErrCUITTaken, http.StatusConflict, "CUIT_TAKEN"},
	{ErrAlreadyFavorite, http.StatusConflict, "ALREADY_FAVORITE"},
	{ErrAlreadyReviewed, http.StatusConflict, "ALREADY_REVIEWED"},
	{ErrFlightFull, http.StatusConflict, "FLIGHT_FULL"},
	{ErrSelfDeletion, http.StatusBadRequest, "SELF_DELETION"},
	{ErrSelfModification, http.StatusBadRequest, "SELF_MODIFICATION"},

	{ErrInvalidPassengers, http.StatusBadRequest, "INVALID_PASSENGERS"},
	{ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
	{ErrEmptyComment, http.StatusBadRequest, "EMPTY_COMMENT"},
	{ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
	{ErrAirlineRoleLocked, http.StatusBadRequest, "AIRLINE_ROLE_LOCKED"},
	{ErrInvalidSchedule, http.StatusBadRequest, "INVALID_SCHEDULE"},
	{ErrInvalidFlight, http.StatusBadRequest, "INVALID_FLIGHT"},
	{ErrFlightInactive, http.StatusBadRequest, "FLIGHT_INACTIVE"},
	{ErrFlightDeparted, http.StatusBadRequest, "FLIGHT_DEPARTED"},
	{ErrReactivateDeparted, http.StatusBadRequest, "FLIGHT_DEPARTED"},
	{ErrFlightRequired, http.StatusBadRequest, "FLIGHT_REQUIRED"},
	{ErrBookingNotActive, http.StatusBadRequest, "BOOKING_NOT_ACTIVE"},
	{ErrPasswordMismatch, http.StatusBadRequest, "CONFIRMATION_MISMATCH"},
	{ErrInvalidUpload, http.StatusBadRequest, "INVALID_UPLOAD"},

	{ErrPaymentGateway, http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR"},
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var blocked *DeletionBlockedError
	if errors.As(err, &blocked) {
		httpErr := NewHTTPError(http.StatusBadRequest, blocked.Error(), "DELETE_BLOCKED")
		httpErr.Details = blocked
		return httpErr
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	httpErr := NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	if err != nil {
		httpErr.Detail = err.Error()
	}
	return httpErr
}
