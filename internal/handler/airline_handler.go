package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"flightbooking/internal/model"
	"flightbooking/internal/service"
)

// AirlineHandler handles the admin airline endpoints.
type AirlineHandler struct {
	airlineService service.AirlineService
}

// NewAirlineHandler creates a new airline handler.
func NewAirlineHandler(airlineService service.AirlineService) *AirlineHandler {
	return &AirlineHandler{airlineService: airlineService}
}

// CreateAirlineRequest represents an airline creation request.
type CreateAirlineRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Code     string `json:"code" validate:"required,max=10"`
	CUIT     string `json:"cuit" validate:"required,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateAirlineRequest is a partial airline update.
type UpdateAirlineRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Code     *string `json:"code" validate:"omitempty,max=10"`
	CUIT     *string `json:"cuit" validate:"omitempty,max=20"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// AirlineResponse is an airline profile with its account email.
type AirlineResponse struct {
	model.Airline
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
}

func airlineResponse(a *model.Airline) AirlineResponse {
	resp := AirlineResponse{Airline: *a}
	if a.User != nil {
		resp.Email = a.User.Email
		resp.IsActive = a.User.IsActive
	}
	return resp
}

// ListAirlines godoc
// @Summary List airlines
// @Tags airlines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AirlineResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/airlines [get]
func (h *AirlineHandler) ListAirlines(c echo.Context) error {
	airlines, err := h.airlineService.List(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	out := make([]AirlineResponse, 0, len(airlines))
	for i := range airlines {
		out = append(out, airlineResponse(&airlines[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetAirline godoc
// @Summary Get airline by id
// @Tags airlines
// @Produce json
// @Security BearerAuth
// @Param id path int true "Airline ID"
// @Success 200 {object} AirlineResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/airlines/{id} [get]
func (h *AirlineHandler) GetAirline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	airline, err := h.airlineService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, airlineResponse(airline))
}

// CreateAirline godoc
// @Summary Create an airline account
// @Tags airlines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAirlineRequest true "Airline data"
// @Success 201 {object} AirlineResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/airlines [post]
func (h *AirlineHandler) CreateAirline(c echo.Context) error {
	var req CreateAirlineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	airline, err := h.airlineService.Create(c.Request().Context(), service.CreateAirlineInput{
		Name:     req.Name,
		Code:     req.Code,
		CUIT:     req.CUIT,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, airlineResponse(airline))
}

// UpdateAirline godoc
// @Summary Update an airline
// @Description A new name is propagated to the airline's flights and reviews.
// @Tags airlines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Airline ID"
// @Param request body UpdateAirlineRequest true "Fields to change"
// @Success 200 {object} AirlineResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/airlines/{id} [put]
func (h *AirlineHandler) UpdateAirline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateAirlineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	airline, err := h.airlineService.Update(c.Request().Context(), id, service.UpdateAirlineInput{
		Name:     req.Name,
		Code:     req.Code,
		CUIT:     req.CUIT,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, airlineResponse(airline))
}

// DeleteAirline godoc
// @Summary Delete an airline with its flights
// @Description Refused while any future flight holds active bookings.
// @Tags airlines
// @Produce json
// @Security BearerAuth
// @Param id path int true "Airline ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/airlines/{id} [delete]
func (h *AirlineHandler) DeleteAirline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.airlineService.Delete(c.Request().Context(), id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "airline deleted"})
}
