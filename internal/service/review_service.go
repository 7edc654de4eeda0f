package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
)

const (
	minRating = 1
	maxRating = 5
)

// ReviewInput is the writable part of a review.
type ReviewInput struct {
	Airline string
	Rating  int
	Comment string
}

// AirlineRating is the aggregate rating of one airline.
type AirlineRating struct {
	Airline       string  `json:"airline"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int64   `json:"totalReviews"`
}

// ReviewService manages airline reviews.
type ReviewService interface {
	List(ctx context.Context) ([]model.Review, error)
	ListByAirline(ctx context.Context, airline string) ([]model.Review, error)
	Average(ctx context.Context, airline string) (*AirlineRating, error)
	Create(ctx context.Context, actor *auth.Principal, in ReviewInput) (*model.Review, error)
	Update(ctx context.Context, actor *auth.Principal, id uint, rating *int, comment *string) (*model.Review, error)
	Delete(ctx context.Context, actor *auth.Principal, id uint) error
}

type reviewService struct {
	store repository.Store
}

// NewReviewService creates a new review service.
func NewReviewService(store repository.Store) ReviewService {
	return &reviewService{store: store}
}

func (s *reviewService) List(ctx context.Context) ([]model.Review, error) {
	reviews, err := s.store.Reviews().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) ListByAirline(ctx context.Context, airline string) ([]model.Review, error) {
	reviews, err := s.store.Reviews().ListByAirline(ctx, strings.TrimSpace(airline))
	if err != nil {
		return nil, fmt.Errorf("list airline reviews: %w", err)
	}
	return reviews, nil
}

// Average returns the mean rating rounded to one decimal. An airline with no
// reviews averages 0.
func (s *reviewService) Average(ctx context.Context, airline string) (*AirlineRating, error) {
	airline = strings.TrimSpace(airline)
	summary, err := s.store.Reviews().Summary(ctx, airline)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}
	return &AirlineRating{
		Airline:       airline,
		AverageRating: decimal.NewFromFloat(summary.Average).Round(1).InexactFloat64(),
		TotalReviews:  summary.Count,
	}, nil
}

func (s *reviewService) Create(ctx context.Context, actor *auth.Principal, in ReviewInput) (*model.Review, error) {
	airline := strings.TrimSpace(in.Airline)
	comment := strings.TrimSpace(in.Comment)
	if err := validateReview(in.Rating, comment); err != nil {
		return nil, err
	}
	if _, err := s.store.Airlines().FindByName(ctx, airline); err != nil {
		return nil, notFound(err, apperrors.ErrAirlineNotFound)
	}

	_, err := s.store.Reviews().FindByUserAndAirline(ctx, actor.ID, airline)
	if err == nil {
		return nil, apperrors.ErrAlreadyReviewed
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("check review: %w", err)
	}

	review := &model.Review{
		UserID:  actor.ID,
		Airline: airline,
		Rating:  in.Rating,
		Comment: comment,
	}
	if err := s.store.Reviews().Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

// Update changes rating or comment on the actor's own review.
func (s *reviewService) Update(ctx context.Context, actor *auth.Principal, id uint, rating *int, comment *string) (*model.Review, error) {
	review, err := s.store.Reviews().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrReviewNotFound)
	}
	if review.UserID != actor.ID {
		return nil, apperrors.ErrForbidden
	}

	if rating != nil {
		review.Rating = *rating
	}
	if c := trimmed(comment); c != nil {
		review.Comment = *c
	}
	if err := validateReview(review.Rating, review.Comment); err != nil {
		return nil, err
	}
	if err := s.store.Reviews().Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// Delete removes a review. Owners and admins may delete.
func (s *reviewService) Delete(ctx context.Context, actor *auth.Principal, id uint) error {
	review, err := s.store.Reviews().FindByID(ctx, id)
	if err != nil {
		return notFound(err, apperrors.ErrReviewNotFound)
	}
	if !actor.CanAccess(review.UserID) {
		return apperrors.ErrForbidden
	}
	if err := s.store.Reviews().Delete(ctx, review.ID); err != nil {
		return notFound(err, apperrors.ErrReviewNotFound)
	}
	return nil
}

func validateReview(rating int, comment string) error {
	if rating < minRating || rating > maxRating {
		return apperrors.ErrInvalidRating
	}
	if comment == "" {
		return apperrors.ErrEmptyComment
	}
	return nil
}
