package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"flightbooking/internal/service"
)

// FavoriteHandler handles the caller's saved flights.
type FavoriteHandler struct {
	favoriteService service.FavoriteService
}

// NewFavoriteHandler creates a new favorite handler.
func NewFavoriteHandler(favoriteService service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// AddFavoriteRequest names the flight to save.
type AddFavoriteRequest struct {
	FlightID uint `json:"flightId" validate:"required"`
}

// AddFavorite godoc
// @Summary Save a flight
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddFavoriteRequest true "Flight to save"
// @Success 201 {object} model.Favorite
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/favorites [post]
func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req AddFavoriteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	favorite, err := h.favoriteService.Add(c.Request().Context(), p, req.FlightID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, favorite)
}

// RemoveFavorite godoc
// @Summary Remove a saved flight
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param flightId path int true "Flight ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/favorites/{flightId} [delete]
func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	flightID, err := pathID(c, "flightId")
	if err != nil {
		return err
	}
	if err := h.favoriteService.Remove(c.Request().Context(), p, flightID); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "favorite removed"})
}

// ListFavorites godoc
// @Summary List saved flights
// @Description Favorites of flights that are no longer active are dropped.
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.FavoriteFlight
// @Router /api/favorites [get]
func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	favorites, err := h.favoriteService.List(c.Request().Context(), p)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, favorites)
}
