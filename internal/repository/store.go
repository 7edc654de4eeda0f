package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups every repository behind one handle so a cascade spanning
// several tables can run inside a single transaction.
type Store interface {
	Users() UserRepository
	Airlines() AirlineRepository
	Flights() FlightRepository
	Bookings() BookingRepository
	Favorites() FavoriteRepository
	Reviews() ReviewRepository
	// WithTransaction executes fn within a database transaction. Repositories
	// obtained from tx share it; returning an error rolls every step back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore builds a GORM-backed Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository         { return &userRepository{db: s.db} }
func (s *gormStore) Airlines() AirlineRepository   { return &airlineRepository{db: s.db} }
func (s *gormStore) Flights() FlightRepository     { return &flightRepository{db: s.db} }
func (s *gormStore) Bookings() BookingRepository   { return &bookingRepository{db: s.db} }
func (s *gormStore) Favorites() FavoriteRepository { return &favoriteRepository{db: s.db} }
func (s *gormStore) Reviews() ReviewRepository     { return &reviewRepository{db: s.db} }

func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}

// forUpdate locks the selected rows until the surrounding transaction ends.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// deleteOne deletes exactly one row or reports gorm.ErrRecordNotFound, so a
// concurrent delete that lost the race aborts its transaction.
func deleteOne(db *gorm.DB, value interface{}, id uint) error {
	res := db.Delete(value, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
