package handler

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"flightbooking/internal/model"
	"flightbooking/internal/service"
)

// BookingHandler handles booking endpoints.
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest represents a booking request.
type CreateBookingRequest struct {
	FlightID   uint              `json:"flightId" validate:"required"`
	Passengers []model.Passenger `json:"passengers" validate:"required,min=1,dive"`
	TotalPrice decimal.Decimal   `json:"totalPrice" swaggertype:"number"`
}

// CreateBooking godoc
// @Summary Book seats on a flight
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookingRequest true "Booking data"
// @Success 201 {object} model.Booking
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/bookings [post]
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return passengerBindError(err)
	}
	if len(req.Passengers) == 0 {
		return badRequest("passengers must be a non-empty list", "INVALID_PASSENGERS")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest("invalid passenger data: "+err.Error(), "INVALID_PASSENGERS")
	}

	booking, err := h.bookingService.Create(c.Request().Context(), p, service.CreateBookingInput{
		FlightID:   req.FlightID,
		Passengers: req.Passengers,
		TotalPrice: req.TotalPrice,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// MyBookings godoc
// @Summary List the caller's bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Booking
// @Router /api/bookings/my-bookings [get]
func (h *BookingHandler) MyBookings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	bookings, err := h.bookingService.ListMine(c.Request().Context(), p)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// ListBookings godoc
// @Summary List every booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Booking
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/bookings [get]
func (h *BookingHandler) ListBookings(c echo.Context) error {
	bookings, err := h.bookingService.ListAll(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// UserBookings godoc
// @Summary List the bookings of a user
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {array} model.Booking
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/bookings/user/{userId} [get]
func (h *BookingHandler) UserBookings(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	bookings, err := h.bookingService.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// GetBooking godoc
// @Summary Get booking by id
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} model.Booking
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookingService.Get(c.Request().Context(), p, id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, booking)
}

// CancelBooking godoc
// @Summary Cancel an active booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} model.Booking
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/bookings/{id}/cancel [patch]
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookingService.Cancel(c.Request().Context(), p, id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Receipt godoc
// @Summary Download a booking receipt
// @Tags bookings
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {file} file
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/bookings/{id}/receipt [get]
func (h *BookingHandler) Receipt(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.bookingService.WriteReceipt(c.Request().Context(), p, id, &buf); err != nil {
		return respondError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=booking-%d.pdf", id))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

// passengerBindError reports a malformed passengers list as INVALID_PASSENGERS
// and any other undecodable body as INVALID_REQUEST.
func passengerBindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && strings.HasPrefix(typeErr.Field, "passengers") {
		return badRequest("passengers must be a non-empty list", "INVALID_PASSENGERS")
	}
	return badRequest("invalid request body", "INVALID_REQUEST")
}
