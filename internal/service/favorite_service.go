package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
)

// FavoriteFlight is a saved flight as returned to its owner.
type FavoriteFlight struct {
	model.Flight
	FavoriteID uint   `json:"favoriteId"`
	Duration   string `json:"duration"`
}

// FavoriteService manages a user's saved flights.
type FavoriteService interface {
	Add(ctx context.Context, actor *auth.Principal, flightID uint) (*model.Favorite, error)
	Remove(ctx context.Context, actor *auth.Principal, flightID uint) error
	List(ctx context.Context, actor *auth.Principal) ([]FavoriteFlight, error)
}

type favoriteService struct {
	store     repository.Store
	lifecycle *LifecycleUpdater
	now       Clock
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(store repository.Store, lifecycle *LifecycleUpdater, clock Clock) FavoriteService {
	return &favoriteService{store: store, lifecycle: lifecycle, now: orNow(clock)}
}

func (s *favoriteService) Add(ctx context.Context, actor *auth.Principal, flightID uint) (*model.Favorite, error) {
	flight, err := s.store.Flights().FindByID(ctx, flightID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFlightNotFound)
	}
	if err := s.lifecycle.RefreshOne(ctx, flight); err != nil {
		return nil, err
	}
	if flight.Status != model.FlightActive {
		return nil, apperrors.ErrFlightInactive
	}

	exists, err := s.store.Favorites().Exists(ctx, actor.ID, flightID)
	if err != nil {
		return nil, fmt.Errorf("check favorite: %w", err)
	}
	if exists {
		return nil, apperrors.ErrAlreadyFavorite
	}

	favorite := &model.Favorite{UserID: actor.ID, FlightID: flightID}
	if err := s.store.Favorites().Create(ctx, favorite); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrAlreadyFavorite
		}
		return nil, fmt.Errorf("create favorite: %w", err)
	}
	favorite.Flight = flight
	return favorite, nil
}

func (s *favoriteService) Remove(ctx context.Context, actor *auth.Principal, flightID uint) error {
	if err := s.store.Favorites().Delete(ctx, actor.ID, flightID); err != nil {
		return notFound(err, apperrors.ErrFavoriteNotFound)
	}
	return nil
}

// List returns the actor's favorites. Favorites whose flight is gone or no
// longer active are deleted on the way out.
func (s *favoriteService) List(ctx context.Context, actor *auth.Principal) ([]FavoriteFlight, error) {
	favorites, err := s.store.Favorites().ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	flights := make([]model.Flight, 0, len(favorites))
	for _, fav := range favorites {
		if fav.Flight != nil {
			flights = append(flights, *fav.Flight)
		}
	}
	if err := s.lifecycle.Refresh(ctx, flights); err != nil {
		return nil, err
	}
	current := make(map[uint]model.Flight, len(flights))
	for _, f := range flights {
		current[f.ID] = f
	}

	var stale []uint
	result := make([]FavoriteFlight, 0, len(favorites))
	for _, fav := range favorites {
		f, ok := current[fav.FlightID]
		if !ok || f.Status != model.FlightActive {
			stale = append(stale, fav.ID)
			continue
		}
		result = append(result, FavoriteFlight{
			Flight:     f,
			FavoriteID: fav.ID,
			Duration:   FlightDuration(f.DepartureTime, f.ArrivalTime),
		})
	}

	if _, err := s.store.Favorites().DeleteByIDs(ctx, stale); err != nil {
		return nil, fmt.Errorf("prune favorites: %w", err)
	}
	return result, nil
}

// FlightDuration formats the time between two clock readings as "Xh Ym". An
// arrival earlier than the departure lands on the next day.
func FlightDuration(departure, arrival string) string {
	dep, ok1 := parseClock(departure)
	arr, ok2 := parseClock(arrival)
	if !ok1 || !ok2 {
		return ""
	}
	d := arr.Sub(dep)
	if d < 0 {
		d += 24 * time.Hour
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func parseClock(v string) (time.Time, bool) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
