package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/testutil"
)

func TestDeletionGuard_DeleteAirlineBlockedByActiveBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, airline := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	flight := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(48), 10)
	testutil.Book(t, f.db, customer.ID, flight.ID, 2, model.BookingActive)

	err := f.guard.DeleteAirline(ctx, airline.ID)

	var blocked *apperrors.DeletionBlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, "airline", blocked.Entity)
	assert.Equal(t, int64(1), blocked.Bookings)
	require.Len(t, blocked.Flights, 1)
	assert.Equal(t, flight.ID, blocked.Flights[0].FlightID)
	assert.Equal(t, "Buenos Aires - Cordoba", blocked.Flights[0].Route)
	assert.Equal(t, int64(1), blocked.Flights[0].ActiveBookings)

	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Airline{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Flight{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Booking{}))
	assert.Empty(t, f.publisher.types())
}

func TestDeletionGuard_DeleteAirlineCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, airline := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
	_, otherAirline := testutil.CreateAirline(t, f.db, "Condor", "CND")
	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)

	future := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(48), 10)
	past := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(-48), 10)
	other := testutil.FlightAt(t, f.db, otherAirline.Name, hoursFromNow(48), 10)

	testutil.Book(t, f.db, customer.ID, future.ID, 1, model.BookingCancelled)
	testutil.Book(t, f.db, customer.ID, past.ID, 1, model.BookingActive)
	keptBooking := testutil.Book(t, f.db, customer.ID, other.ID, 1, model.BookingActive)
	require.NoError(t, f.db.Create(&model.Favorite{UserID: customer.ID, FlightID: future.ID}).Error)
	require.NoError(t, f.db.Create(&model.Favorite{UserID: customer.ID, FlightID: other.ID}).Error)
	require.NoError(t, f.db.Create(&model.Review{UserID: customer.ID, Airline: owner.Name, Rating: 4, Comment: "ok"}).Error)
	require.NoError(t, f.db.Create(&model.Review{UserID: customer.ID, Airline: otherAirline.Name, Rating: 5, Comment: "great"}).Error)

	require.NoError(t, f.guard.DeleteAirline(ctx, airline.ID))

	var count int64
	require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", owner.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Airline{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Flight{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Favorite{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Review{}))

	var bookings []model.Booking
	require.NoError(t, f.db.Find(&bookings).Error)
	require.Len(t, bookings, 1)
	assert.Equal(t, keptBooking.ID, bookings[0].ID)

	assert.Equal(t, []string{events.AirlineDeleted}, f.publisher.types())
}

func TestDeletionGuard_DeleteAirlineIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, airline := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	flight := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(48), 10)
	testutil.Book(t, f.db, customer.ID, flight.ID, 1, model.BookingCancelled)
	require.NoError(t, f.db.Create(&model.Favorite{UserID: customer.ID, FlightID: flight.ID}).Error)
	require.NoError(t, f.db.Create(&model.Review{UserID: customer.ID, Airline: owner.Name, Rating: 3, Comment: "fine"}).Error)

	injected := errors.New("injected failure")
	require.NoError(t, f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_airline_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "airlines" {
			_ = tx.AddError(injected)
		}
	}))

	err := f.guard.DeleteAirline(ctx, airline.ID)
	require.ErrorIs(t, err, injected)

	assert.Equal(t, int64(2), testutil.Count(t, f.db, &model.User{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Airline{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Flight{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Booking{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Favorite{}))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Review{}))
	assert.Empty(t, f.publisher.types())
}

func TestDeletionGuard_DeleteUser(t *testing.T) {
	tests := []struct {
		name          string
		bookingStatus model.BookingStatus
		departureIn   int
		expectBlocked bool
	}{
		{name: "active booking on future flight blocks", bookingStatus: model.BookingActive, departureIn: 24, expectBlocked: true},
		{name: "cancelled booking does not block", bookingStatus: model.BookingCancelled, departureIn: 24},
		{name: "booking on departed flight does not block", bookingStatus: model.BookingActive, departureIn: -24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			admin := testutil.CreateUser(t, f.db, "root", model.RoleAdmin)
			customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
			flight := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(tt.departureIn), 10)
			testutil.Book(t, f.db, customer.ID, flight.ID, 1, tt.bookingStatus)
			require.NoError(t, f.db.Create(&model.Favorite{UserID: customer.ID, FlightID: flight.ID}).Error)

			err := f.guard.DeleteUser(ctx, testutil.Principal(admin), customer.ID)

			if tt.expectBlocked {
				var blocked *apperrors.DeletionBlockedError
				require.True(t, errors.As(err, &blocked))
				assert.Equal(t, "user", blocked.Entity)
				assert.Equal(t, int64(1), blocked.Bookings)
				assert.Equal(t, int64(2), testutil.Count(t, f.db, &model.User{}))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.User{}))
			assert.Zero(t, testutil.Count(t, f.db, &model.Booking{}))
			assert.Zero(t, testutil.Count(t, f.db, &model.Favorite{}))
			assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Flight{}))
			assert.Equal(t, []string{events.UserDeleted}, f.publisher.types())
		})
	}
}

func TestDeletionGuard_DeleteUserRefusesSelf(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateUser(t, f.db, "root", model.RoleAdmin)

	err := f.guard.DeleteUser(context.Background(), testutil.Principal(admin), admin.ID)

	assert.ErrorIs(t, err, apperrors.ErrSelfDeletion)
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.User{}))
}

func TestDeletionGuard_DeleteSelfAsAirline(t *testing.T) {
	f := newFixture(t)
	owner, _ := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
	testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(12), 10)

	require.NoError(t, f.guard.DeleteSelf(context.Background(), testutil.Principal(owner)))

	assert.Zero(t, testutil.Count(t, f.db, &model.User{}))
	assert.Zero(t, testutil.Count(t, f.db, &model.Airline{}))
	assert.Zero(t, testutil.Count(t, f.db, &model.Flight{}))
}

func TestDeletionGuard_DeleteFlight(t *testing.T) {
	tests := []struct {
		name          string
		actor         func(t *testing.T, f *fixture, owner *model.User) *model.User
		departureIn   int
		bookingStatus model.BookingStatus
		expectedError error
		expectBlocked bool
	}{
		{
			name:          "owner deletes flight without bookings",
			actor:         func(_ *testing.T, _ *fixture, owner *model.User) *model.User { return owner },
			departureIn:   24,
			bookingStatus: model.BookingCancelled,
		},
		{
			name: "admin deletes any flight",
			actor: func(t *testing.T, f *fixture, _ *model.User) *model.User {
				return testutil.CreateUser(t, f.db, "root", model.RoleAdmin)
			},
			departureIn:   24,
			bookingStatus: model.BookingCancelled,
		},
		{
			name: "other airline is forbidden",
			actor: func(t *testing.T, f *fixture, _ *model.User) *model.User {
				other, _ := testutil.CreateAirline(t, f.db, "Condor", "CND")
				return other
			},
			departureIn:   24,
			bookingStatus: model.BookingCancelled,
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:          "active booking blocks",
			actor:         func(_ *testing.T, _ *fixture, owner *model.User) *model.User { return owner },
			departureIn:   24,
			bookingStatus: model.BookingActive,
			expectBlocked: true,
		},
		{
			name:          "departed flight with active booking blocks",
			actor:         func(_ *testing.T, _ *fixture, owner *model.User) *model.User { return owner },
			departureIn:   -3,
			bookingStatus: model.BookingActive,
			expectBlocked: true,
		},
		{
			name:          "departed flight without active bookings is deletable",
			actor:         func(_ *testing.T, _ *fixture, owner *model.User) *model.User { return owner },
			departureIn:   -3,
			bookingStatus: model.BookingCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			owner, _ := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
			customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
			flight := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(tt.departureIn), 10)
			testutil.Book(t, f.db, customer.ID, flight.ID, 1, tt.bookingStatus)
			actor := tt.actor(t, f, owner)

			err := f.guard.DeleteFlight(context.Background(), testutil.Principal(actor), flight.ID)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Flight{}))
			case tt.expectBlocked:
				var blocked *apperrors.DeletionBlockedError
				require.True(t, errors.As(err, &blocked))
				assert.Equal(t, "flight", blocked.Entity)
				assert.Equal(t, int64(1), blocked.Bookings)
				assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Flight{}))
				assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Booking{}))
			default:
				require.NoError(t, err)
				assert.Zero(t, testutil.Count(t, f.db, &model.Flight{}))
				assert.Zero(t, testutil.Count(t, f.db, &model.Booking{}))
			}
		})
	}
}

func TestDeletionGuard_DeleteFlightAfterExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	admin := testutil.CreateUser(t, f.db, "root", model.RoleAdmin)
	flight := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(-2), 10)
	booking := testutil.Book(t, f.db, customer.ID, flight.ID, 1, model.BookingActive)

	require.NoError(t, f.lifecycle.RefreshOne(ctx, flight))
	require.Equal(t, model.FlightInactive, flight.Status)

	err := f.guard.DeleteFlight(ctx, testutil.Principal(admin), flight.ID)

	var blocked *apperrors.DeletionBlockedError
	require.True(t, errors.As(err, &blocked), "expected DeletionBlockedError, got %v", err)
	var b model.Booking
	require.NoError(t, f.db.First(&b, booking.ID).Error)
	assert.Equal(t, model.BookingActive, b.Status)
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Flight{}))
}

func TestDeletionGuard_DeleteFlightNotFound(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateUser(t, f.db, "root", model.RoleAdmin)

	err := f.guard.DeleteFlight(context.Background(), testutil.Principal(admin), 999)

	assert.ErrorIs(t, err, apperrors.ErrFlightNotFound)
}
