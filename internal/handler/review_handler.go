package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"flightbooking/internal/service"
)

// ReviewHandler handles airline reviews.
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewRequest represents a new review.
type CreateReviewRequest struct {
	Airline string `json:"airline"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UpdateReviewRequest changes rating or comment.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// ListReviews godoc
// @Summary List reviews
// @Tags reviews
// @Produce json
// @Success 200 {array} model.Review
// @Router /api/reviews [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	reviews, err := h.reviewService.List(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// AirlineReviews godoc
// @Summary List the reviews of an airline
// @Tags reviews
// @Produce json
// @Param airline path string true "Airline name"
// @Success 200 {array} model.Review
// @Router /api/reviews/airline/{airline} [get]
func (h *ReviewHandler) AirlineReviews(c echo.Context) error {
	reviews, err := h.reviewService.ListByAirline(c.Request().Context(), c.Param("airline"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// AirlineAverage godoc
// @Summary Average rating of an airline
// @Tags reviews
// @Produce json
// @Param airline path string true "Airline name"
// @Success 200 {object} service.AirlineRating
// @Router /api/reviews/airline/{airline}/average [get]
func (h *ReviewHandler) AirlineAverage(c echo.Context) error {
	rating, err := h.reviewService.Average(c.Request().Context(), c.Param("airline"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, rating)
}

// CreateReview godoc
// @Summary Review an airline
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/reviews [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	review, err := h.reviewService.Create(c.Request().Context(), p, service.ReviewInput{
		Airline: req.Airline,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, review)
}

// UpdateReview godoc
// @Summary Edit your review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param request body UpdateReviewRequest true "Changes"
// @Success 200 {object} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	review, err := h.reviewService.Update(c.Request().Context(), p, id, req.Rating, req.Comment)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, review)
}

// DeleteReview godoc
// @Summary Delete a review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.reviewService.Delete(c.Request().Context(), p, id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "review deleted"})
}
