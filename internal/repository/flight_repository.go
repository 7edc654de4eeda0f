package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"flightbooking/internal/model"
)

// Flight list orderings.
const (
	SortPriceAsc  = "priceAsc"
	SortPriceDesc = "priceDesc"
)

// FlightFilter narrows a flight listing. Zero values mean "any".
type FlightFilter struct {
	Origin       string
	Destination  string
	Date         string
	Airlines     []string
	FeaturedOnly bool
	Status       model.FlightStatus
	// Owner restricts to flights labelled OwnerName or created by OwnerID.
	OwnerName string
	OwnerID   uint
	Sort      string
}

// FlightRepository defines flight persistence operations.
type FlightRepository interface {
	Create(ctx context.Context, flight *model.Flight) error
	Update(ctx context.Context, flight *model.Flight) error
	FindByID(ctx context.Context, id uint) (*model.Flight, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Flight, error)
	List(ctx context.Context, filter FlightFilter) ([]model.Flight, error)
	FindOwned(ctx context.Context, airlineName string, userID uint) ([]model.Flight, error)
	// UpdateStatus moves the given flights from one status to another and
	// returns how many rows actually changed.
	UpdateStatus(ctx context.Context, ids []uint, from, to model.FlightStatus) (int64, error)
	RenameAirline(ctx context.Context, oldName, newName string, userID uint) (int64, error)
	ClearCreator(ctx context.Context, userID uint) error
	Delete(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
}

type flightRepository struct {
	db *gorm.DB
}

// NewFlightRepository creates a new flight repository.
func NewFlightRepository(db *gorm.DB) FlightRepository {
	return &flightRepository{db: db}
}

func (r *flightRepository) Create(ctx context.Context, flight *model.Flight) error {
	return r.db.WithContext(ctx).Create(flight).Error
}

func (r *flightRepository) Update(ctx context.Context, flight *model.Flight) error {
	return r.db.WithContext(ctx).Save(flight).Error
}

func (r *flightRepository) FindByID(ctx context.Context, id uint) (*model.Flight, error) {
	var flight model.Flight
	if err := r.db.WithContext(ctx).First(&flight, id).Error; err != nil {
		return nil, err
	}
	return &flight, nil
}

// FindByIDForUpdate finds a flight by ID with row-level lock for update.
func (r *flightRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Flight, error) {
	var flight model.Flight
	if err := forUpdate(r.db.WithContext(ctx)).First(&flight, id).Error; err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *flightRepository) List(ctx context.Context, filter FlightFilter) ([]model.Flight, error) {
	q := r.db.WithContext(ctx).Model(&model.Flight{})

	if filter.Origin != "" {
		q = q.Where("LOWER(origin) LIKE ?", strings.ToLower(filter.Origin)+"%")
	}
	if filter.Destination != "" {
		q = q.Where("LOWER(destination) LIKE ?", strings.ToLower(filter.Destination)+"%")
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if len(filter.Airlines) > 0 {
		q = q.Where("airline IN ?", filter.Airlines)
	}
	if filter.FeaturedOnly {
		q = q.Where("is_featured = ?", true)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	switch {
	case filter.OwnerName != "":
		q = q.Where("airline = ? OR created_by = ?", filter.OwnerName, filter.OwnerID)
	case filter.OwnerID != 0:
		q = q.Where("created_by = ?", filter.OwnerID)
	}

	switch filter.Sort {
	case SortPriceDesc:
		q = q.Order("base_price DESC")
	default:
		q = q.Order("base_price ASC")
	}

	var flights []model.Flight
	if err := q.Order("id").Find(&flights).Error; err != nil {
		return nil, err
	}
	return flights, nil
}

// FindOwned resolves every flight belonging to an airline by label or by creator.
func (r *flightRepository) FindOwned(ctx context.Context, airlineName string, userID uint) ([]model.Flight, error) {
	var flights []model.Flight
	err := forUpdate(r.db.WithContext(ctx)).
		Where("airline = ? OR created_by = ?", airlineName, userID).
		Order("id").
		Find(&flights).Error
	if err != nil {
		return nil, err
	}
	return flights, nil
}

func (r *flightRepository) UpdateStatus(ctx context.Context, ids []uint, from, to model.FlightStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Flight{}).
		Where("id IN ? AND status = ?", ids, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *flightRepository) RenameAirline(ctx context.Context, oldName, newName string, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Flight{}).
		Where("airline = ? OR created_by = ?", oldName, userID).
		Update("airline", newName)
	return res.RowsAffected, res.Error
}

func (r *flightRepository) ClearCreator(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&model.Flight{}).
		Where("created_by = ?", userID).
		Update("created_by", nil).Error
}

func (r *flightRepository) Delete(ctx context.Context, id uint) error {
	return deleteOne(r.db.WithContext(ctx), &model.Flight{}, id)
}

func (r *flightRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Flight{})
	return res.RowsAffected, res.Error
}
