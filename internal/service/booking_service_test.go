package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/testutil"
)

func newBookingService(f *fixture) BookingService {
	return NewBookingService(f.store, f.lifecycle, f.publisher, testutil.Clock)
}

func passengers(n int) []model.Passenger {
	out := make([]model.Passenger, n)
	for i := range out {
		out[i] = model.Passenger{FirstName: "Ana", LastName: "Perez", DocumentNumber: "30111222"}
	}
	return out
}

func TestBookingService_Create(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T, f *fixture) uint
		passengers    int
		totalPrice    decimal.Decimal
		expectedError error
	}{
		{
			name: "books seats on an active flight",
			setup: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 3).ID
			},
			passengers: 3,
			totalPrice: decimal.NewFromInt(300),
		},
		{
			name:          "unknown flight",
			setup:         func(*testing.T, *fixture) uint { return 999 },
			passengers:    1,
			totalPrice:    decimal.NewFromInt(100),
			expectedError: apperrors.ErrFlightNotFound,
		},
		{
			name: "no passengers",
			setup: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 3).ID
			},
			totalPrice:    decimal.NewFromInt(100),
			expectedError: apperrors.ErrInvalidPassengers,
		},
		{
			name: "non-positive amount",
			setup: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 3).ID
			},
			passengers:    1,
			totalPrice:    decimal.Zero,
			expectedError: apperrors.ErrInvalidAmount,
		},
		{
			name: "departed flight",
			setup: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(-1), 3).ID
			},
			passengers:    1,
			totalPrice:    decimal.NewFromInt(100),
			expectedError: apperrors.ErrFlightInactive,
		},
		{
			name: "capacity exhausted",
			setup: func(t *testing.T, f *fixture) uint {
				flight := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 3)
				other := testutil.CreateUser(t, f.db, "other", model.RoleUser)
				testutil.Book(t, f.db, other.ID, flight.ID, 2, model.BookingActive)
				testutil.Book(t, f.db, other.ID, flight.ID, 2, model.BookingCancelled)
				return flight.ID
			},
			passengers:    2,
			totalPrice:    decimal.NewFromInt(200),
			expectedError: apperrors.ErrFlightFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
			flightID := tt.setup(t, f)

			booking, err := newBookingService(f).Create(context.Background(), testutil.Principal(customer), CreateBookingInput{
				FlightID:   flightID,
				Passengers: passengers(tt.passengers),
				TotalPrice: tt.totalPrice,
			})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, booking)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.passengers, booking.PassengerCount)
			assert.Len(t, booking.Passengers, tt.passengers)
			assert.Equal(t, model.BookingActive, booking.Status)
			assert.Equal(t, testutil.Now, booking.PurchaseDate)
			assert.Equal(t, []string{events.BookingCreated}, f.publisher.types())
		})
	}
}

func TestBookingService_GetAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newBookingService(f)

	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	stranger := testutil.CreateUser(t, f.db, "stranger", model.RoleUser)
	admin := testutil.CreateUser(t, f.db, "root", model.RoleAdmin)
	flight := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10)
	booking := testutil.Book(t, f.db, customer.ID, flight.ID, 1, model.BookingActive)

	_, err := svc.Get(ctx, testutil.Principal(stranger), booking.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := svc.Get(ctx, testutil.Principal(admin), booking.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Flight)
	assert.Equal(t, flight.ID, got.Flight.ID)

	_, err = svc.Cancel(ctx, testutil.Principal(stranger), booking.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	cancelled, err := svc.Cancel(ctx, testutil.Principal(customer), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, testutil.Principal(customer), booking.ID)
	assert.ErrorIs(t, err, apperrors.ErrBookingNotActive)

	_, err = svc.Get(ctx, testutil.Principal(customer), 999)
	assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
}

func TestBookingService_ListByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newBookingService(f)

	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	past := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(-2), 10)
	future := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(2), 10)
	testutil.Book(t, f.db, customer.ID, past.ID, 1, model.BookingActive)
	testutil.Book(t, f.db, customer.ID, future.ID, 1, model.BookingActive)

	bookings, err := svc.ListByUser(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		// expiry touches the flight only
		assert.Equal(t, model.BookingActive, b.Status)
		if b.FlightID == past.ID {
			assert.Equal(t, model.FlightInactive, b.Flight.Status)
		} else {
			assert.Equal(t, model.FlightActive, b.Flight.Status)
		}
	}

	_, err = svc.ListByUser(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestBookingService_WriteReceipt(t *testing.T) {
	f := newFixture(t)
	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	flight := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10)
	booking := testutil.Book(t, f.db, customer.ID, flight.ID, 2, model.BookingActive)

	var buf bytes.Buffer
	require.NoError(t, newBookingService(f).WriteReceipt(context.Background(), testutil.Principal(customer), booking.ID, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
