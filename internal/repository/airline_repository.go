package repository

import (
	"context"

	"gorm.io/gorm"

	"flightbooking/internal/model"
)

// AirlineRepository defines airline profile persistence operations.
type AirlineRepository interface {
	Create(ctx context.Context, airline *model.Airline) error
	Update(ctx context.Context, airline *model.Airline) error
	FindByID(ctx context.Context, id uint) (*model.Airline, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Airline, error)
	FindByUserID(ctx context.Context, userID uint) (*model.Airline, error)
	FindByName(ctx context.Context, name string) (*model.Airline, error)
	FindByCode(ctx context.Context, code string) (*model.Airline, error)
	FindByCUIT(ctx context.Context, cuit string) (*model.Airline, error)
	List(ctx context.Context) ([]model.Airline, error)
	RenameByUserID(ctx context.Context, userID uint, name string) error
	Delete(ctx context.Context, id uint) error
}

type airlineRepository struct {
	db *gorm.DB
}

// NewAirlineRepository creates a new airline repository.
func NewAirlineRepository(db *gorm.DB) AirlineRepository {
	return &airlineRepository{db: db}
}

func (r *airlineRepository) Create(ctx context.Context, airline *model.Airline) error {
	return r.db.WithContext(ctx).Create(airline).Error
}

func (r *airlineRepository) Update(ctx context.Context, airline *model.Airline) error {
	return r.db.WithContext(ctx).Omit("User").Save(airline).Error
}

func (r *airlineRepository) FindByID(ctx context.Context, id uint) (*model.Airline, error) {
	var airline model.Airline
	if err := r.db.WithContext(ctx).Preload("User").First(&airline, id).Error; err != nil {
		return nil, err
	}
	return &airline, nil
}

// FindByIDForUpdate finds an airline by ID with row-level lock for update.
func (r *airlineRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Airline, error) {
	var airline model.Airline
	if err := forUpdate(r.db.WithContext(ctx)).First(&airline, id).Error; err != nil {
		return nil, err
	}
	return &airline, nil
}

func (r *airlineRepository) FindByUserID(ctx context.Context, userID uint) (*model.Airline, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *airlineRepository) FindByName(ctx context.Context, name string) (*model.Airline, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *airlineRepository) FindByCode(ctx context.Context, code string) (*model.Airline, error) {
	return r.findOne(ctx, "code = ?", code)
}

func (r *airlineRepository) FindByCUIT(ctx context.Context, cuit string) (*model.Airline, error) {
	return r.findOne(ctx, "cuit = ?", cuit)
}

func (r *airlineRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Airline, error) {
	var airline model.Airline
	if err := r.db.WithContext(ctx).Where(query, arg).First(&airline).Error; err != nil {
		return nil, err
	}
	return &airline, nil
}

func (r *airlineRepository) List(ctx context.Context) ([]model.Airline, error) {
	var airlines []model.Airline
	if err := r.db.WithContext(ctx).Preload("User").Order("name").Find(&airlines).Error; err != nil {
		return nil, err
	}
	return airlines, nil
}

func (r *airlineRepository) RenameByUserID(ctx context.Context, userID uint, name string) error {
	return r.db.WithContext(ctx).Model(&model.Airline{}).
		Where("user_id = ?", userID).
		Update("name", name).Error
}

func (r *airlineRepository) Delete(ctx context.Context, id uint) error {
	return deleteOne(r.db.WithContext(ctx), &model.Airline{}, id)
}
