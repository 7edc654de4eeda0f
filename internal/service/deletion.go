package service

import (
	"context"
	"fmt"
	"time"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
	"flightbooking/internal/storage"
)

// DeletionGuard decides whether users, airlines and flights may be deleted
// and performs the cascade in one transaction when they may.
type DeletionGuard struct {
	store  repository.Store
	files  storage.Sink
	events events.Publisher
	now    Clock
}

// NewDeletionGuard creates a deletion guard. files may be nil.
func NewDeletionGuard(store repository.Store, files storage.Sink, publisher events.Publisher, clock Clock) *DeletionGuard {
	return &DeletionGuard{store: store, files: files, events: publisher, now: orNow(clock)}
}

// purge collects side effects that only happen once the transaction commits.
type purge struct {
	files  []string
	events []events.Event
}

func (p *purge) file(path *string) {
	if path != nil && *path != "" {
		p.files = append(p.files, *path)
	}
}

// DeleteAirline deletes an airline profile, its user and everything tied to
// the airline's flights.
func (g *DeletionGuard) DeleteAirline(ctx context.Context, airlineID uint) error {
	p := &purge{}
	err := g.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		found, err := tx.Airlines().FindByID(ctx, airlineID)
		if err != nil {
			return notFound(err, apperrors.ErrAirlineNotFound)
		}
		// users before airlines, the same lock order as every other path
		user, err := tx.Users().FindByIDForUpdate(ctx, found.UserID)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("lock airline user: %w", err)
		}
		airline, err := tx.Airlines().FindByIDForUpdate(ctx, airlineID)
		if err != nil {
			return notFound(err, apperrors.ErrAirlineNotFound)
		}
		return g.purgeAirline(ctx, tx, airline, user, p)
	})
	if err != nil {
		return err
	}
	g.finish(ctx, p)
	return nil
}

// DeleteUser is the admin path: it refuses to delete the acting admin.
func (g *DeletionGuard) DeleteUser(ctx context.Context, actor *auth.Principal, id uint) error {
	if actor.ID == id {
		return apperrors.ErrSelfDeletion
	}
	return g.deleteIdentity(ctx, id)
}

// DeleteSelf deletes the calling account with all of its dependents.
func (g *DeletionGuard) DeleteSelf(ctx context.Context, actor *auth.Principal) error {
	return g.deleteIdentity(ctx, actor.ID)
}

func (g *DeletionGuard) deleteIdentity(ctx context.Context, userID uint) error {
	p := &purge{}
	err := g.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		if user.Role != model.RoleAirline {
			return g.purgeUser(ctx, tx, user, p)
		}

		airline, err := tx.Airlines().FindByUserID(ctx, user.ID)
		if err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("load airline profile: %w", err)
			}
			airline = nil
		} else if airline, err = tx.Airlines().FindByIDForUpdate(ctx, airline.ID); err != nil {
			return fmt.Errorf("lock airline profile: %w", err)
		}
		return g.purgeAirline(ctx, tx, airline, user, p)
	})
	if err != nil {
		return err
	}
	g.finish(ctx, p)
	return nil
}

// purgeAirline resolves the airline's flights by label or creator, refuses
// while any future flight holds an active booking, and otherwise deletes
// favorites, reviews, bookings and flights, then the identity rows. Either
// airline or user may be nil when the other half is already gone.
func (g *DeletionGuard) purgeAirline(ctx context.Context, tx repository.Store, airline *model.Airline, user *model.User, p *purge) error {
	var (
		name     string
		userID   uint
		entityID uint
	)
	switch {
	case airline != nil:
		name, userID, entityID = airline.Name, airline.UserID, airline.ID
	case user != nil:
		name, userID, entityID = user.Name, user.ID, user.ID
	default:
		return apperrors.ErrAirlineNotFound
	}
	if user != nil {
		name = user.Name
	}

	flights, err := tx.Flights().FindOwned(ctx, name, userID)
	if err != nil {
		return fmt.Errorf("resolve airline flights: %w", err)
	}

	now := g.now()
	blocked := &apperrors.DeletionBlockedError{Entity: "airline", EntityID: entityID}
	for _, f := range flights {
		if hasDeparted(f, now) {
			continue
		}
		n, err := tx.Bookings().CountActiveByFlight(ctx, f.ID)
		if err != nil {
			return fmt.Errorf("count active bookings: %w", err)
		}
		if n > 0 {
			blocked.Flights = append(blocked.Flights, blockedFlight(f, n))
			blocked.Bookings += n
		}
	}
	if user != nil {
		if err := collectLiveBookings(ctx, tx, user.ID, now, blocked); err != nil {
			return err
		}
	}
	if blocked.Bookings > 0 {
		return blocked
	}

	ids := make([]uint, 0, len(flights))
	for _, f := range flights {
		ids = append(ids, f.ID)
		p.file(f.ImageURL)
	}
	if _, err := tx.Favorites().DeleteByFlights(ctx, ids); err != nil {
		return fmt.Errorf("delete flight favorites: %w", err)
	}
	if _, err := tx.Reviews().DeleteByAirline(ctx, name); err != nil {
		return fmt.Errorf("delete airline reviews: %w", err)
	}
	if _, err := tx.Bookings().DeleteByFlights(ctx, ids); err != nil {
		return fmt.Errorf("delete flight bookings: %w", err)
	}
	if _, err := tx.Flights().DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("delete flights: %w", err)
	}

	if user != nil {
		if err := deleteOwnRows(ctx, tx, user.ID); err != nil {
			return err
		}
	}
	if airline != nil {
		if err := tx.Airlines().Delete(ctx, airline.ID); err != nil {
			return notFound(err, apperrors.ErrAirlineNotFound)
		}
	}
	if user != nil {
		if err := tx.Users().Delete(ctx, user.ID); err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		p.file(user.ProfilePicture)
	}

	p.events = append(p.events, events.New(events.AirlineDeleted, entityID, map[string]interface{}{
		"name":    name,
		"userId":  userID,
		"flights": ids,
	}))
	return nil
}

// purgeUser deletes a non-airline user unless they hold an active booking on
// a flight that is still active.
func (g *DeletionGuard) purgeUser(ctx context.Context, tx repository.Store, user *model.User, p *purge) error {
	blocked := &apperrors.DeletionBlockedError{Entity: "user", EntityID: user.ID}
	if err := collectLiveBookings(ctx, tx, user.ID, g.now(), blocked); err != nil {
		return err
	}
	if blocked.Bookings > 0 {
		return blocked
	}

	if err := deleteOwnRows(ctx, tx, user.ID); err != nil {
		return err
	}
	if err := tx.Flights().ClearCreator(ctx, user.ID); err != nil {
		return fmt.Errorf("detach created flights: %w", err)
	}
	if err := tx.Users().Delete(ctx, user.ID); err != nil {
		return notFound(err, apperrors.ErrUserNotFound)
	}

	p.file(user.ProfilePicture)
	p.events = append(p.events, events.New(events.UserDeleted, user.ID, map[string]interface{}{
		"email": user.Email,
	}))
	return nil
}

// DeleteFlight deletes a flight with its favorites and bookings. Airline
// principals may only delete flights carrying their own name.
func (g *DeletionGuard) DeleteFlight(ctx context.Context, actor *auth.Principal, id uint) error {
	p := &purge{}
	err := g.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		flight, err := tx.Flights().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrFlightNotFound)
		}
		if !ownsFlight(actor, flight) {
			return apperrors.ErrForbidden
		}

		n, err := tx.Bookings().CountActiveByFlight(ctx, flight.ID)
		if err != nil {
			return fmt.Errorf("count active bookings: %w", err)
		}
		if n > 0 {
			return &apperrors.DeletionBlockedError{
				Entity:   "flight",
				EntityID: flight.ID,
				Bookings: n,
				Flights:  []apperrors.BlockedFlight{blockedFlight(*flight, n)},
			}
		}

		ids := []uint{flight.ID}
		if _, err := tx.Favorites().DeleteByFlights(ctx, ids); err != nil {
			return fmt.Errorf("delete flight favorites: %w", err)
		}
		if _, err := tx.Bookings().DeleteByFlights(ctx, ids); err != nil {
			return fmt.Errorf("delete flight bookings: %w", err)
		}
		if err := tx.Flights().Delete(ctx, flight.ID); err != nil {
			return notFound(err, apperrors.ErrFlightNotFound)
		}

		p.file(flight.ImageURL)
		p.events = append(p.events, events.New(events.FlightDeleted, flight.ID, map[string]interface{}{
			"airline": flight.Airline,
			"actorId": actor.ID,
		}))
		return nil
	})
	if err != nil {
		return err
	}
	g.finish(ctx, p)
	return nil
}

func (g *DeletionGuard) finish(ctx context.Context, p *purge) {
	if g.files != nil {
		for _, f := range p.files {
			g.files.Remove(f)
		}
	}
	events.PublishSafe(ctx, g.events, p.events...)
}

// collectLiveBookings adds the user's active bookings on still-active flights
// to blocked, grouped by flight.
func collectLiveBookings(ctx context.Context, tx repository.Store, userID uint, now time.Time, blocked *apperrors.DeletionBlockedError) error {
	bookings, err := tx.Bookings().ListActiveByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load active bookings: %w", err)
	}

	// flights already listed were counted in full by the caller
	counted := make(map[uint]bool, len(blocked.Flights))
	for _, bf := range blocked.Flights {
		counted[bf.FlightID] = true
	}
	index := make(map[uint]int)
	for _, b := range bookings {
		if counted[b.FlightID] || b.Flight == nil || EffectiveStatus(*b.Flight, now) != model.FlightActive {
			continue
		}
		blocked.Bookings++
		if i, ok := index[b.FlightID]; ok {
			blocked.Flights[i].ActiveBookings++
			continue
		}
		index[b.FlightID] = len(blocked.Flights)
		blocked.Flights = append(blocked.Flights, blockedFlight(*b.Flight, 1))
	}
	return nil
}

// deleteOwnRows removes the reviews, favorites and bookings a user made.
func deleteOwnRows(ctx context.Context, tx repository.Store, userID uint) error {
	if _, err := tx.Reviews().DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user reviews: %w", err)
	}
	if _, err := tx.Favorites().DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user favorites: %w", err)
	}
	if _, err := tx.Bookings().DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user bookings: %w", err)
	}
	return nil
}

func blockedFlight(f model.Flight, active int64) apperrors.BlockedFlight {
	return apperrors.BlockedFlight{
		FlightID:       f.ID,
		Route:          f.Origin + " - " + f.Destination,
		Date:           f.Date + " " + f.DepartureTime,
		ActiveBookings: active,
	}
}

// ownsFlight reports whether actor may manage f: admins always, airlines
// only for flights carrying their name.
func ownsFlight(actor *auth.Principal, f *model.Flight) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == model.RoleAirline && f.Airline == actor.Name
}
