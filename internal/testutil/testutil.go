// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"flightbooking/internal/auth"
	"flightbooking/internal/db"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
)

// Now is the fixed instant service tests run at.
var Now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.Local)

// Clock returns Now.
func Clock() time.Time { return Now }

// NewDB opens a migrated in-memory SQLite database that is closed with the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// NewStore returns a Store over a fresh database together with the database.
func NewStore(t *testing.T) (repository.Store, *gorm.DB) {
	gdb := NewDB(t)
	return repository.NewStore(gdb), gdb
}

// CreateUser inserts an active account with the given role.
func CreateUser(t *testing.T, gdb *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "not-a-real-hash",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

// CreateAirline inserts an airline user and its profile.
func CreateAirline(t *testing.T, gdb *gorm.DB, name, code string) (*model.User, *model.Airline) {
	t.Helper()
	user := CreateUser(t, gdb, name, model.RoleAirline)
	airline := &model.Airline{
		UserID: user.ID,
		Name:   name,
		Code:   code,
		CUIT:   "30-" + code + "-1",
	}
	require.NoError(t, gdb.Omit("User").Create(airline).Error)
	return user, airline
}

// FlightAt inserts an Activo flight of airline departing at departure.
func FlightAt(t *testing.T, gdb *gorm.DB, airline string, departure time.Time, capacity int) *model.Flight {
	t.Helper()
	flight := &model.Flight{
		Airline:       airline,
		Origin:        "Buenos Aires",
		Destination:   "Cordoba",
		Date:          departure.Format("2006-01-02"),
		DepartureTime: departure.Format("15:04"),
		ArrivalTime:   departure.Add(90 * time.Minute).Format("15:04"),
		Capacity:      capacity,
		BasePrice:     decimal.NewFromInt(100),
		Status:        model.FlightActive,
	}
	require.NoError(t, gdb.Create(flight).Error)
	return flight
}

// Book inserts a booking of n passengers with the given status.
func Book(t *testing.T, gdb *gorm.DB, userID, flightID uint, n int, status model.BookingStatus) *model.Booking {
	t.Helper()
	passengers := make([]model.Passenger, n)
	for i := range passengers {
		passengers[i] = model.Passenger{
			FirstName:      "Pax",
			LastName:       fmt.Sprintf("N%d", i+1),
			DocumentNumber: fmt.Sprintf("DOC%d", i+1),
		}
	}
	booking := &model.Booking{
		UserID:         userID,
		FlightID:       flightID,
		Passengers:     passengers,
		PassengerCount: n,
		TotalPrice:     decimal.NewFromInt(int64(100 * n)),
		PurchaseDate:   Now,
		Status:         status,
	}
	require.NoError(t, gdb.Omit("Flight", "User").Create(booking).Error)
	return booking
}

// Principal builds the principal a token for user would resolve to.
func Principal(user *model.User) *auth.Principal {
	return auth.NewPrincipal(user, "")
}

// Count returns the number of rows of model's table.
func Count(t *testing.T, gdb *gorm.DB, value interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(value).Count(&n).Error)
	return n
}
