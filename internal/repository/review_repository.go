package repository

import (
	"context"

	"gorm.io/gorm"

	"flightbooking/internal/model"
)

// RatingSummary aggregates the reviews of one airline.
type RatingSummary struct {
	Average float64
	Count   int64
}

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id uint) (*model.Review, error)
	FindByUserAndAirline(ctx context.Context, userID uint, airline string) (*model.Review, error)
	List(ctx context.Context) ([]model.Review, error)
	ListByAirline(ctx context.Context, airline string) ([]model.Review, error)
	Summary(ctx context.Context, airline string) (RatingSummary, error)
	RenameAirline(ctx context.Context, oldName, newName string) (int64, error)
	Delete(ctx context.Context, id uint) error
	DeleteByAirline(ctx context.Context, airline string) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("User").Create(review).Error
}

func (r *reviewRepository) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("User").Save(review).Error
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).Preload("User").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByUserAndAirline(ctx context.Context, userID uint, airline string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND airline = ?", userID, airline).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context) ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.WithContext(ctx).Preload("User").Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) ListByAirline(ctx context.Context, airline string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("airline = ?", airline).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) Summary(ctx context.Context, airline string) (RatingSummary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("airline = ?", airline).
		Scan(&row).Error
	if err != nil {
		return RatingSummary{}, err
	}
	return RatingSummary{Average: row.Average, Count: row.Count}, nil
}

func (r *reviewRepository) RenameAirline(ctx context.Context, oldName, newName string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("airline = ?", oldName).
		Update("airline", newName)
	return res.RowsAffected, res.Error
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	return deleteOne(r.db.WithContext(ctx), &model.Review{}, id)
}

func (r *reviewRepository) DeleteByAirline(ctx context.Context, airline string) (int64, error) {
	res := r.db.WithContext(ctx).Where("airline = ?", airline).Delete(&model.Review{})
	return res.RowsAffected, res.Error
}

func (r *reviewRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Review{})
	return res.RowsAffected, res.Error
}
