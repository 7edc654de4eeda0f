package service

import (
	"context"
	"fmt"
	"time"

	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
)

const dateLayout = "2006-01-02"

var clockLayouts = []string{"15:04", "15:04:05"}

// DepartureInstant combines a flight's naive date and departure time in loc.
func DepartureInstant(f model.Flight, loc *time.Location) (time.Time, error) {
	for _, layout := range clockLayouts {
		t, err := time.ParseInLocation(dateLayout+" "+layout, f.Date+" "+f.DepartureTime, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.ErrInvalidSchedule
}

// hasDeparted reports whether the flight's departure is before now. A
// schedule that does not parse is treated as still in the future.
func hasDeparted(f model.Flight, now time.Time) bool {
	dep, err := DepartureInstant(f, now.Location())
	if err != nil {
		return false
	}
	return dep.Before(now)
}

// EffectiveStatus is the status a flight has at now: an Activo flight whose
// departure has passed is Inactivo. Inactivo never turns back on its own.
func EffectiveStatus(f model.Flight, now time.Time) model.FlightStatus {
	if f.Status == model.FlightActive && hasDeparted(f, now) {
		return model.FlightInactive
	}
	return f.Status
}

// LifecycleUpdater persists lazy flight expiry.
type LifecycleUpdater struct {
	store  repository.Store
	events events.Publisher
	now    Clock
}

// NewLifecycleUpdater creates an updater. A nil clock means time.Now.
func NewLifecycleUpdater(store repository.Store, publisher events.Publisher, clock Clock) *LifecycleUpdater {
	return &LifecycleUpdater{store: store, events: publisher, now: orNow(clock)}
}

// Refresh expires every stored-Activo flight in flights whose departure has
// passed and updates the slice in place. Bookings keep their status; only an
// explicit toggle deactivates them.
// Concurrent readers may expire the same flight; the conditional update makes
// that harmless.
func (u *LifecycleUpdater) Refresh(ctx context.Context, flights []model.Flight) error {
	now := u.now()
	var expired []uint
	for _, f := range flights {
		if f.Status == model.FlightActive && EffectiveStatus(f, now) == model.FlightInactive {
			expired = append(expired, f.ID)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	err := u.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		return expireFlights(ctx, tx, expired)
	})
	if err != nil {
		return err
	}

	done := make(map[uint]bool, len(expired))
	evts := make([]events.Event, 0, len(expired))
	for _, id := range expired {
		done[id] = true
		evts = append(evts, events.New(events.FlightExpired, id, nil))
	}
	for i := range flights {
		if done[flights[i].ID] {
			flights[i].Status = model.FlightInactive
		}
	}
	events.PublishSafe(ctx, u.events, evts...)
	return nil
}

// RefreshOne is Refresh for a single flight.
func (u *LifecycleUpdater) RefreshOne(ctx context.Context, f *model.Flight) error {
	batch := []model.Flight{*f}
	if err := u.Refresh(ctx, batch); err != nil {
		return err
	}
	*f = batch[0]
	return nil
}

// Sweep expires every stored flight that has departed and returns how many
// were flipped.
func (u *LifecycleUpdater) Sweep(ctx context.Context) (int, error) {
	flights, err := u.store.Flights().List(ctx, repository.FlightFilter{Status: model.FlightActive})
	if err != nil {
		return 0, fmt.Errorf("list active flights: %w", err)
	}
	if err := u.Refresh(ctx, flights); err != nil {
		return 0, err
	}
	n := 0
	for _, f := range flights {
		if f.Status == model.FlightInactive {
			n++
		}
	}
	return n, nil
}

// expireFlights marks stored-Activo flights Inactivo.
func expireFlights(ctx context.Context, tx repository.Store, ids []uint) error {
	if _, err := tx.Flights().UpdateStatus(ctx, ids, model.FlightActive, model.FlightInactive); err != nil {
		return fmt.Errorf("expire flights: %w", err)
	}
	return nil
}
