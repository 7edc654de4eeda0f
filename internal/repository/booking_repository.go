package repository

import (
	"context"

	"gorm.io/gorm"

	"flightbooking/internal/model"
)

// BookingRepository defines booking persistence operations.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	Update(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id uint) (*model.Booking, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Booking, error)
	List(ctx context.Context) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Booking, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]model.Booking, error)
	CountActiveByFlight(ctx context.Context, flightID uint) (int64, error)
	SumActivePassengers(ctx context.Context, flightID uint) (int64, error)
	// SetStatusByFlights moves every booking on the given flights from one
	// status to another.
	SetStatusByFlights(ctx context.Context, flightIDs []uint, from, to model.BookingStatus) (int64, error)
	DeleteByFlights(ctx context.Context, flightIDs []uint) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Omit("Flight", "User").Create(booking).Error
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Omit("Flight", "User").Save(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.WithContext(ctx).Preload("Flight").First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate finds a booking by ID with row-level lock for update.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Booking, error) {
	var booking model.Booking
	if err := forUpdate(r.db.WithContext(ctx)).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) List(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Flight").
		Preload("User").
		Order("purchase_date DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID uint) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Flight").
		Where("user_id = ?", userID).
		Order("purchase_date DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) ListActiveByUser(ctx context.Context, userID uint) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Flight").
		Where("user_id = ? AND status = ?", userID, model.BookingActive).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CountActiveByFlight(ctx context.Context, flightID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("flight_id = ? AND status = ?", flightID, model.BookingActive).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) SumActivePassengers(ctx context.Context, flightID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Booking{}).
		Select("COALESCE(SUM(passenger_count), 0)").
		Where("flight_id = ? AND status = ?", flightID, model.BookingActive).
		Scan(&total).Error
	return total, err
}

func (r *bookingRepository) SetStatusByFlights(ctx context.Context, flightIDs []uint, from, to model.BookingStatus) (int64, error) {
	if len(flightIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("flight_id IN ? AND status = ?", flightIDs, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *bookingRepository) DeleteByFlights(ctx context.Context, flightIDs []uint) (int64, error) {
	if len(flightIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("flight_id IN ?", flightIDs).Delete(&model.Booking{})
	return res.RowsAffected, res.Error
}

func (r *bookingRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Booking{})
	return res.RowsAffected, res.Error
}
