package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightbooking/internal/model"
	"flightbooking/internal/repository"
	"flightbooking/internal/testutil"
)

func TestFlightRepository_ListOwnerFilter(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	owner, airline := testutil.CreateAirline(t, gdb, "Andes", "AND")
	other := testutil.CreateUser(t, gdb, "other", model.RoleAirline)
	departure := testutil.Now.Add(48 * time.Hour)

	labelled := testutil.FlightAt(t, gdb, airline.Name, departure, 10)
	created := testutil.FlightAt(t, gdb, "", departure, 10)
	require.NoError(t, gdb.Model(created).Update("created_by", owner.ID).Error)
	unlabelled := testutil.FlightAt(t, gdb, "", departure, 10)
	require.NoError(t, gdb.Model(unlabelled).Update("created_by", other.ID).Error)
	testutil.FlightAt(t, gdb, "Sur", departure, 10)

	tests := []struct {
		name     string
		filter   repository.FlightFilter
		expected []uint
	}{
		{
			name:     "label or creator",
			filter:   repository.FlightFilter{OwnerName: airline.Name, OwnerID: owner.ID},
			expected: []uint{labelled.ID, created.ID},
		},
		{
			name:     "creator only ignores empty labels",
			filter:   repository.FlightFilter{OwnerID: owner.ID},
			expected: []uint{created.ID},
		},
		{
			name:     "label only",
			filter:   repository.FlightFilter{OwnerName: airline.Name},
			expected: []uint{labelled.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flights, err := store.Flights().List(context.Background(), tt.filter)
			require.NoError(t, err)

			ids := make([]uint, 0, len(flights))
			for _, f := range flights {
				ids = append(ids, f.ID)
			}
			assert.ElementsMatch(t, tt.expected, ids)
		})
	}
}
