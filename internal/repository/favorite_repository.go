package repository

import (
	"context"

	"gorm.io/gorm"

	"flightbooking/internal/model"
)

// FavoriteRepository defines favorite persistence operations.
type FavoriteRepository interface {
	Create(ctx context.Context, favorite *model.Favorite) error
	Exists(ctx context.Context, userID, flightID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Favorite, error)
	Delete(ctx context.Context, userID, flightID uint) error
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
	DeleteByFlights(ctx context.Context, flightIDs []uint) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *model.Favorite) error {
	return r.db.WithContext(ctx).Omit("Flight").Create(favorite).Error
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, flightID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND flight_id = ?", userID, flightID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uint) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := r.db.WithContext(ctx).
		Preload("Flight").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, flightID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND flight_id = ?", userID, flightID).
		Delete(&model.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *favoriteRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *favoriteRepository) DeleteByFlights(ctx context.Context, flightIDs []uint) (int64, error) {
	if len(flightIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("flight_id IN ?", flightIDs).Delete(&model.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *favoriteRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Favorite{})
	return res.RowsAffected, res.Error
}
