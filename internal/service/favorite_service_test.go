package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/model"
	"flightbooking/internal/testutil"
)

func TestFlightDuration(t *testing.T) {
	tests := []struct {
		departure string
		arrival   string
		expected  string
	}{
		{departure: "08:00", arrival: "10:30", expected: "2h 30m"},
		{departure: "23:15", arrival: "01:05", expected: "1h 50m"},
		{departure: "12:00:00", arrival: "12:45", expected: "0h 45m"},
		{departure: "bad", arrival: "10:00", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.departure+"-"+tt.arrival, func(t *testing.T) {
			assert.Equal(t, tt.expected, FlightDuration(tt.departure, tt.arrival))
		})
	}
}

func TestFavoriteService_AddAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewFavoriteService(f.store, f.lifecycle, testutil.Clock)

	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	actor := testutil.Principal(customer)
	flight := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10)
	departed := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(-1), 10)

	fav, err := svc.Add(ctx, actor, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, flight.ID, fav.FlightID)

	_, err = svc.Add(ctx, actor, flight.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyFavorite)

	_, err = svc.Add(ctx, actor, departed.ID)
	assert.ErrorIs(t, err, apperrors.ErrFlightInactive)

	_, err = svc.Add(ctx, actor, 999)
	assert.ErrorIs(t, err, apperrors.ErrFlightNotFound)

	require.NoError(t, svc.Remove(ctx, actor, flight.ID))
	assert.ErrorIs(t, svc.Remove(ctx, actor, flight.ID), apperrors.ErrFavoriteNotFound)
}

func TestFavoriteService_ListPrunesInactiveFlights(t *testing.T) {
	f := newFixture(t)
	svc := NewFavoriteService(f.store, f.lifecycle, testutil.Clock)

	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	live := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10)
	expired := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(-3), 10)
	disabled := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10)
	require.NoError(t, f.db.Model(disabled).Update("status", model.FlightInactive).Error)
	for _, id := range []uint{live.ID, expired.ID, disabled.ID} {
		require.NoError(t, f.db.Create(&model.Favorite{UserID: customer.ID, FlightID: id}).Error)
	}

	favorites, err := svc.List(context.Background(), testutil.Principal(customer))
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, live.ID, favorites[0].ID)
	assert.Equal(t, "1h 30m", favorites[0].Duration)
	assert.NotZero(t, favorites[0].FavoriteID)

	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Favorite{}))
}
