package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/repository"
	"flightbooking/internal/storage"
)

// FlightInput carries the editable fields of a flight.
type FlightInput struct {
	Airline       string
	Origin        string
	Destination   string
	Date          string
	DepartureTime string
	ArrivalTime   string
	Capacity      int
	BasePrice     decimal.Decimal
	IsFeatured    bool
}

// FlightService manages flights.
type FlightService interface {
	List(ctx context.Context, filter repository.FlightFilter) ([]model.Flight, error)
	Featured(ctx context.Context) ([]model.Flight, error)
	// Managed lists every flight for admins and the caller's own flights for airlines.
	Managed(ctx context.Context, actor *auth.Principal) ([]model.Flight, error)
	Get(ctx context.Context, id uint) (*model.Flight, error)
	Create(ctx context.Context, actor *auth.Principal, in FlightInput) (*model.Flight, error)
	Update(ctx context.Context, actor *auth.Principal, id uint, in FlightInput) (*model.Flight, error)
	Delete(ctx context.Context, actor *auth.Principal, id uint) error
	ToggleStatus(ctx context.Context, actor *auth.Principal, id uint) (*model.Flight, error)
	ToggleFeatured(ctx context.Context, id uint) (*model.Flight, error)
	SetImage(ctx context.Context, actor *auth.Principal, id uint, file *multipart.FileHeader) (*model.Flight, error)
}

type flightService struct {
	store     repository.Store
	lifecycle *LifecycleUpdater
	guard     *DeletionGuard
	files     storage.Sink
	events    events.Publisher
	now       Clock
}

// NewFlightService creates a new flight service.
func NewFlightService(store repository.Store, lifecycle *LifecycleUpdater, guard *DeletionGuard, files storage.Sink, publisher events.Publisher, clock Clock) FlightService {
	return &flightService{
		store:     store,
		lifecycle: lifecycle,
		guard:     guard,
		files:     files,
		events:    publisher,
		now:       orNow(clock),
	}
}

func (s *flightService) List(ctx context.Context, filter repository.FlightFilter) ([]model.Flight, error) {
	flights, err := s.store.Flights().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	if err := s.lifecycle.Refresh(ctx, flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (s *flightService) Featured(ctx context.Context) ([]model.Flight, error) {
	flights, err := s.List(ctx, repository.FlightFilter{FeaturedOnly: true, Status: model.FlightActive})
	if err != nil {
		return nil, err
	}
	active := flights[:0]
	for _, f := range flights {
		if f.Status == model.FlightActive {
			active = append(active, f)
		}
	}
	return active, nil
}

func (s *flightService) Managed(ctx context.Context, actor *auth.Principal) ([]model.Flight, error) {
	filter := repository.FlightFilter{}
	if !actor.IsAdmin() {
		filter.OwnerName = actor.Name
		filter.OwnerID = actor.ID
	}
	return s.List(ctx, filter)
}

func (s *flightService) Get(ctx context.Context, id uint) (*model.Flight, error) {
	flight, err := s.store.Flights().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFlightNotFound)
	}
	if err := s.lifecycle.RefreshOne(ctx, flight); err != nil {
		return nil, err
	}
	return flight, nil
}

// Create adds a flight. Airline principals always publish under their own
// name; admins must name an existing airline.
func (s *flightService) Create(ctx context.Context, actor *auth.Principal, in FlightInput) (*model.Flight, error) {
	flight := &model.Flight{Status: model.FlightActive}
	if err := fillFlight(ctx, s.store, actor, flight, in); err != nil {
		return nil, err
	}
	if hasDeparted(*flight, s.now()) {
		return nil, apperrors.ErrFlightDeparted
	}
	creator := actor.ID
	flight.CreatedBy = &creator

	if err := s.store.Flights().Create(ctx, flight); err != nil {
		return nil, fmt.Errorf("create flight: %w", err)
	}
	return flight, nil
}

func (s *flightService) Update(ctx context.Context, actor *auth.Principal, id uint, in FlightInput) (*model.Flight, error) {
	var flight *model.Flight
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		flight, err = tx.Flights().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrFlightNotFound)
		}
		if !ownsFlight(actor, flight) {
			return apperrors.ErrForbidden
		}
		if err := fillFlight(ctx, tx, actor, flight, in); err != nil {
			return err
		}
		return tx.Flights().Update(ctx, flight)
	})
	if err != nil {
		return nil, err
	}
	return flight, nil
}

func (s *flightService) Delete(ctx context.Context, actor *auth.Principal, id uint) error {
	return s.guard.DeleteFlight(ctx, actor, id)
}

// ToggleStatus flips a flight between Activo and Inactivo. Deactivation also
// deactivates its active bookings; reactivation leaves bookings as they are
// and is refused once the flight has departed.
func (s *flightService) ToggleStatus(ctx context.Context, actor *auth.Principal, id uint) (*model.Flight, error) {
	var (
		flight    *model.Flight
		cancelled int64
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		flight, err = tx.Flights().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrFlightNotFound)
		}
		if !ownsFlight(actor, flight) {
			return apperrors.ErrForbidden
		}

		if flight.Status == model.FlightActive {
			flight.Status = model.FlightInactive
			cancelled, err = tx.Bookings().SetStatusByFlights(ctx, []uint{flight.ID}, model.BookingActive, model.BookingInactive)
			if err != nil {
				return fmt.Errorf("deactivate bookings: %w", err)
			}
		} else {
			if hasDeparted(*flight, s.now()) {
				return apperrors.ErrReactivateDeparted
			}
			flight.Status = model.FlightActive
		}
		return tx.Flights().Update(ctx, flight)
	})
	if err != nil {
		return nil, err
	}

	evt := events.New(events.FlightStatusChanged, flight.ID, map[string]interface{}{
		"status":              flight.Status,
		"deactivatedBookings": cancelled,
	})
	evt.ActorID = actor.ID
	events.PublishSafe(ctx, s.events, evt)
	return flight, nil
}

func (s *flightService) ToggleFeatured(ctx context.Context, id uint) (*model.Flight, error) {
	var flight *model.Flight
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		flight, err = tx.Flights().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrFlightNotFound)
		}
		flight.IsFeatured = !flight.IsFeatured
		return tx.Flights().Update(ctx, flight)
	})
	if err != nil {
		return nil, err
	}
	return flight, nil
}

// SetImage stores an uploaded image for the flight and removes the previous one.
func (s *flightService) SetImage(ctx context.Context, actor *auth.Principal, id uint, file *multipart.FileHeader) (*model.Flight, error) {
	if s.files == nil {
		return nil, fmt.Errorf("file storage is not configured")
	}
	flight, err := s.store.Flights().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFlightNotFound)
	}
	if !ownsFlight(actor, flight) {
		return nil, apperrors.ErrForbidden
	}

	path, err := s.files.SaveImage(storage.FlightImages, "flight", file)
	if err != nil {
		return nil, uploadError(err)
	}

	var old *string
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		locked, err := tx.Flights().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrFlightNotFound)
		}
		old = locked.ImageURL
		locked.ImageURL = &path
		flight = locked
		return tx.Flights().Update(ctx, locked)
	})
	if err != nil {
		s.files.Remove(path)
		return nil, err
	}
	if old != nil {
		s.files.Remove(*old)
	}
	return flight, nil
}

// fillFlight validates in and copies it onto flight.
func fillFlight(ctx context.Context, store repository.Store, actor *auth.Principal, flight *model.Flight, in FlightInput) error {
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return apperrors.ErrInvalidSchedule
	}
	if !validClock(in.DepartureTime) || !validClock(in.ArrivalTime) {
		return apperrors.ErrInvalidSchedule
	}
	if in.Capacity <= 0 || in.BasePrice.IsNegative() {
		return apperrors.ErrInvalidFlight
	}

	airline := strings.TrimSpace(in.Airline)
	if actor.Role == model.RoleAirline {
		airline = actor.Name
	} else {
		if airline == "" {
			return apperrors.ErrAirlineNotFound
		}
		if _, err := store.Airlines().FindByName(ctx, airline); err != nil {
			return notFound(err, apperrors.ErrAirlineNotFound)
		}
	}

	flight.Airline = airline
	flight.Origin = strings.TrimSpace(in.Origin)
	flight.Destination = strings.TrimSpace(in.Destination)
	flight.Date = in.Date
	flight.DepartureTime = in.DepartureTime
	flight.ArrivalTime = in.ArrivalTime
	flight.Capacity = in.Capacity
	flight.BasePrice = in.BasePrice
	if actor.IsAdmin() {
		flight.IsFeatured = in.IsFeatured
	}
	return nil
}

func validClock(v string) bool {
	_, ok := parseClock(v)
	return ok
}
