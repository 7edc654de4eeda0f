package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"flightbooking/internal/model"
	"flightbooking/internal/service"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentRequest represents a checkout request for a prospective booking.
type PaymentRequest struct {
	FlightID   uint              `json:"flightId"`
	Passengers []model.Passenger `json:"passengers"`
	TotalPrice decimal.Decimal   `json:"totalPrice" swaggertype:"number"`
}

// PaymentResponse carries the provider preference the client redirects to.
type PaymentResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreatePreference godoc
// @Summary Create a checkout preference
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PaymentRequest true "Checkout data"
// @Success 200 {object} PaymentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/payment [post]
func (h *PaymentHandler) CreatePreference(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return passengerBindError(err)
	}

	checkout, err := h.paymentService.CreatePreference(c.Request().Context(), actor, service.PaymentInput{
		FlightID:   req.FlightID,
		Passengers: req.Passengers,
		TotalPrice: req.TotalPrice,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, PaymentResponse{
		ID:        checkout.ID,
		InitPoint: checkout.InitPoint,
	})
}

// Webhook godoc
// @Summary Receive a payment provider notification
// @Tags payments
// @Accept json
// @Success 200
// @Router /api/payment/webhook [post]
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 64<<10))
	if err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	c.Logger().Infof("payment webhook: %s", body)
	return c.NoContent(http.StatusOK)
}
