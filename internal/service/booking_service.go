package service

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/receipt"
	"flightbooking/internal/repository"
)

// CreateBookingInput is a booking request. TotalPrice is taken as quoted by
// the client.
type CreateBookingInput struct {
	FlightID   uint
	Passengers []model.Passenger
	TotalPrice decimal.Decimal
}

// BookingService manages bookings.
type BookingService interface {
	Create(ctx context.Context, actor *auth.Principal, in CreateBookingInput) (*model.Booking, error)
	Get(ctx context.Context, actor *auth.Principal, id uint) (*model.Booking, error)
	ListMine(ctx context.Context, actor *auth.Principal) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Booking, error)
	Cancel(ctx context.Context, actor *auth.Principal, id uint) (*model.Booking, error)
	WriteReceipt(ctx context.Context, actor *auth.Principal, id uint, w io.Writer) error
}

type bookingService struct {
	store     repository.Store
	lifecycle *LifecycleUpdater
	events    events.Publisher
	now       Clock
}

// NewBookingService creates a new booking service.
func NewBookingService(store repository.Store, lifecycle *LifecycleUpdater, publisher events.Publisher, clock Clock) BookingService {
	return &bookingService{store: store, lifecycle: lifecycle, events: publisher, now: orNow(clock)}
}

// Create books seats on an active flight. The flight row stays locked while
// remaining capacity is checked.
func (s *bookingService) Create(ctx context.Context, actor *auth.Principal, in CreateBookingInput) (*model.Booking, error) {
	if len(in.Passengers) == 0 {
		return nil, apperrors.ErrInvalidPassengers
	}
	if !in.TotalPrice.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	booking := &model.Booking{
		UserID:         actor.ID,
		FlightID:       in.FlightID,
		Passengers:     in.Passengers,
		PassengerCount: len(in.Passengers),
		TotalPrice:     in.TotalPrice,
		Status:         model.BookingActive,
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		flight, err := tx.Flights().FindByIDForUpdate(ctx, in.FlightID)
		if err != nil {
			return notFound(err, apperrors.ErrFlightNotFound)
		}
		now := s.now()
		if EffectiveStatus(*flight, now) != model.FlightActive {
			return apperrors.ErrFlightInactive
		}

		booked, err := tx.Bookings().SumActivePassengers(ctx, flight.ID)
		if err != nil {
			return fmt.Errorf("count booked seats: %w", err)
		}
		if booked+int64(booking.PassengerCount) > int64(flight.Capacity) {
			return apperrors.ErrFlightFull
		}

		booking.PurchaseDate = now
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		booking.Flight = flight
		return nil
	})
	if err != nil {
		return nil, err
	}

	evt := events.New(events.BookingCreated, booking.ID, map[string]interface{}{
		"flightId":       booking.FlightID,
		"passengerCount": booking.PassengerCount,
		"totalPrice":     booking.TotalPrice.StringFixed(2),
	})
	evt.ActorID = actor.ID
	events.PublishSafe(ctx, s.events, evt)
	return booking, nil
}

// Get returns a booking to its owner or an admin.
func (s *bookingService) Get(ctx context.Context, actor *auth.Principal, id uint) (*model.Booking, error) {
	booking, err := s.store.Bookings().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrBookingNotFound)
	}
	if !actor.CanAccess(booking.UserID) {
		return nil, apperrors.ErrForbidden
	}
	batch := []model.Booking{*booking}
	if err := s.refresh(ctx, batch); err != nil {
		return nil, err
	}
	return &batch[0], nil
}

func (s *bookingService) ListMine(ctx context.Context, actor *auth.Principal) ([]model.Booking, error) {
	return s.ListByUser(ctx, actor.ID)
}

func (s *bookingService) ListAll(ctx context.Context) ([]model.Booking, error) {
	bookings, err := s.store.Bookings().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if err := s.refresh(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID uint) ([]model.Booking, error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	bookings, err := s.store.Bookings().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	if err := s.refresh(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Cancel moves an active booking to Cancelado.
func (s *bookingService) Cancel(ctx context.Context, actor *auth.Principal, id uint) (*model.Booking, error) {
	var booking *model.Booking
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		booking, err = tx.Bookings().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrBookingNotFound)
		}
		if !actor.CanAccess(booking.UserID) {
			return apperrors.ErrForbidden
		}
		if booking.Status != model.BookingActive {
			return apperrors.ErrBookingNotActive
		}
		booking.Status = model.BookingCancelled
		return tx.Bookings().Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	evt := events.New(events.BookingCancelled, booking.ID, map[string]interface{}{"flightId": booking.FlightID})
	evt.ActorID = actor.ID
	events.PublishSafe(ctx, s.events, evt)
	return booking, nil
}

// WriteReceipt renders the booking as PDF for its owner or an admin.
func (s *bookingService) WriteReceipt(ctx context.Context, actor *auth.Principal, id uint, w io.Writer) error {
	booking, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	holder, err := s.store.Users().FindByID(ctx, booking.UserID)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("load booking holder: %w", err)
	}
	return receipt.Render(w, booking, holder)
}

// refresh applies lazy flight expiry to the flights behind bookings.
func (s *bookingService) refresh(ctx context.Context, bookings []model.Booking) error {
	seen := make(map[uint]int)
	var flights []model.Flight
	for _, b := range bookings {
		if b.Flight == nil {
			continue
		}
		if _, ok := seen[b.FlightID]; !ok {
			seen[b.FlightID] = len(flights)
			flights = append(flights, *b.Flight)
		}
	}
	if err := s.lifecycle.Refresh(ctx, flights); err != nil {
		return err
	}

	for i := range bookings {
		if idx, ok := seen[bookings[i].FlightID]; ok {
			f := flights[idx]
			bookings[i].Flight = &f
		}
	}
	return nil
}
