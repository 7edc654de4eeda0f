package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"flightbooking/internal/repository"
	"flightbooking/internal/service"
)

// FlightHandler handles flight endpoints.
type FlightHandler struct {
	flightService service.FlightService
}

// NewFlightHandler creates a new flight handler.
func NewFlightHandler(flightService service.FlightService) *FlightHandler {
	return &FlightHandler{flightService: flightService}
}

// FlightRequest is the body of flight create and update calls. Airline is
// ignored for airline accounts.
type FlightRequest struct {
	Airline       string          `json:"airline" validate:"omitempty,max=255"`
	Origin        string          `json:"origin" validate:"required,max=255"`
	Destination   string          `json:"destination" validate:"required,max=255"`
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	DepartureTime string          `json:"departureTime" validate:"required"`
	ArrivalTime   string          `json:"arrivalTime" validate:"required"`
	Capacity      int             `json:"capacity" validate:"required,gt=0"`
	BasePrice     decimal.Decimal `json:"basePrice" swaggertype:"number"`
	IsFeatured    bool            `json:"isFeatured"`
}

func (r FlightRequest) input() service.FlightInput {
	return service.FlightInput{
		Airline:       r.Airline,
		Origin:        r.Origin,
		Destination:   r.Destination,
		Date:          r.Date,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		Capacity:      r.Capacity,
		BasePrice:     r.BasePrice,
		IsFeatured:    r.IsFeatured,
	}
}

// ListFlights godoc
// @Summary Search flights
// @Tags flights
// @Produce json
// @Param origin query string false "Origin prefix"
// @Param destination query string false "Destination prefix"
// @Param departureDate query string false "Departure date (YYYY-MM-DD)"
// @Param airline query string false "Comma separated airline names"
// @Param sort query string false "priceAsc or priceDesc"
// @Success 200 {array} model.Flight
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/flights [get]
func (h *FlightHandler) ListFlights(c echo.Context) error {
	filter := repository.FlightFilter{
		Origin:      strings.TrimSpace(c.QueryParam("origin")),
		Destination: strings.TrimSpace(c.QueryParam("destination")),
		Date:        strings.TrimSpace(c.QueryParam("departureDate")),
		Sort:        c.QueryParam("sort"),
	}
	for _, name := range strings.Split(c.QueryParam("airline"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			filter.Airlines = append(filter.Airlines, name)
		}
	}

	flights, err := h.flightService.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, flights)
}

// FeaturedFlights godoc
// @Summary List featured flights
// @Tags flights
// @Produce json
// @Success 200 {array} model.Flight
// @Router /api/flights/featured [get]
func (h *FlightHandler) FeaturedFlights(c echo.Context) error {
	flights, err := h.flightService.Featured(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, flights)
}

// ManagedFlights godoc
// @Summary List flights the caller manages
// @Description Admins see every flight, airlines their own.
// @Tags flights
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Flight
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/flights/all [get]
func (h *FlightHandler) ManagedFlights(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	flights, err := h.flightService.Managed(c.Request().Context(), p)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, flights)
}

// GetFlight godoc
// @Summary Get flight by id
// @Tags flights
// @Produce json
// @Param id path int true "Flight ID"
// @Success 200 {object} model.Flight
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/flights/{id} [get]
func (h *FlightHandler) GetFlight(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	flight, err := h.flightService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, flight)
}

// CreateFlight godoc
// @Summary Create a flight
// @Tags flights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FlightRequest true "Flight data"
// @Success 201 {object} model.Flight
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/flights [post]
func (h *FlightHandler) CreateFlight(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req FlightRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	flight, err := h.flightService.Create(c.Request().Context(), p, req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, flight)
}

// UpdateFlight godoc
// @Summary Update a flight
// @Tags flights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Param request body FlightRequest true "Flight data"
// @Success 200 {object} model.Flight
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/flights/{id} [put]
func (h *FlightHandler) UpdateFlight(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req FlightRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	flight, err := h.flightService.Update(c.Request().Context(), p, id, req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, flight)
}

// DeleteFlight godoc
// @Summary Delete a flight
// @Description Refused while the flight holds active bookings.
// @Tags flights
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/flights/{id} [delete]
func (h *FlightHandler) DeleteFlight(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.flightService.Delete(c.Request().Context(), p, id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "flight deleted"})
}

// ToggleStatus godoc
// @Summary Toggle a flight between Activo and Inactivo
// @Tags flights
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Success 200 {object} model.Flight
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/flights/{id}/toggle-status [patch]
func (h *FlightHandler) ToggleStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	flight, err := h.flightService.ToggleStatus(c.Request().Context(), p, id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, flight)
}

// ToggleFeatured godoc
// @Summary Toggle the featured flag of a flight
// @Tags flights
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Success 200 {object} model.Flight
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/flights/{id}/featured [patch]
func (h *FlightHandler) ToggleFeatured(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	flight, err := h.flightService.ToggleFeatured(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, flight)
}

// UploadImage godoc
// @Summary Upload a flight image
// @Tags flights
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flight ID"
// @Param image formData file true "Image file"
// @Success 200 {object} model.Flight
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/flights/{id}/image [post]
func (h *FlightHandler) UploadImage(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest("image file is required", "INVALID_UPLOAD")
	}

	flight, err := h.flightService.SetImage(c.Request().Context(), p, id, file)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, flight)
}
