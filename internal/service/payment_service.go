package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/payment"
	"flightbooking/internal/repository"
)

// PaymentInput is a checkout request for a booking about to be made.
type PaymentInput struct {
	FlightID   uint
	Passengers []model.Passenger
	TotalPrice decimal.Decimal
}

// PaymentOptions are the currency and return pages of every checkout.
type PaymentOptions struct {
	Currency string
	BackURLs payment.BackURLs
}

// PaymentService handles checkout preferences with the payment provider.
type PaymentService interface {
	CreatePreference(ctx context.Context, actor *auth.Principal, in PaymentInput) (*payment.Checkout, error)
}

type paymentService struct {
	store     repository.Store
	lifecycle *LifecycleUpdater
	gateway   payment.Gateway
	opts      PaymentOptions
	events    events.Publisher
}

// NewPaymentService creates a new payment service.
func NewPaymentService(store repository.Store, lifecycle *LifecycleUpdater, gateway payment.Gateway, opts PaymentOptions, publisher events.Publisher) PaymentService {
	return &paymentService{
		store:     store,
		lifecycle: lifecycle,
		gateway:   gateway,
		opts:      opts,
		events:    publisher,
	}
}

// CreatePreference prices one checkout line per passenger, splitting
// TotalPrice evenly, and asks the gateway for a preference.
func (s *paymentService) CreatePreference(ctx context.Context, actor *auth.Principal, in PaymentInput) (*payment.Checkout, error) {
	if in.FlightID == 0 {
		return nil, apperrors.ErrFlightRequired
	}
	if len(in.Passengers) == 0 {
		return nil, apperrors.ErrInvalidPassengers
	}
	if !in.TotalPrice.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	flight, err := s.store.Flights().FindByID(ctx, in.FlightID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFlightNotFound)
	}
	if err := s.lifecycle.RefreshOne(ctx, flight); err != nil {
		return nil, err
	}
	if flight.Status != model.FlightActive {
		return nil, apperrors.ErrFlightInactive
	}

	quantity := len(in.Passengers)
	pref := payment.Preference{
		Items: []payment.Item{{
			Title:      fmt.Sprintf("Flight booking %d (%s - %s)", flight.ID, flight.Origin, flight.Destination),
			Quantity:   quantity,
			UnitPrice:  in.TotalPrice.Div(decimal.NewFromInt(int64(quantity))).Round(2),
			CurrencyID: s.opts.Currency,
		}},
		BackURLs:          s.opts.BackURLs,
		AutoReturn:        "approved",
		ExternalReference: strconv.FormatUint(uint64(actor.ID), 10) + ":" + strconv.FormatUint(uint64(flight.ID), 10),
	}

	checkout, err := s.gateway.CreatePreference(ctx, pref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPaymentGateway, err)
	}

	evt := events.New(events.PaymentRequested, flight.ID, map[string]interface{}{
		"preferenceId":   checkout.ID,
		"passengerCount": quantity,
		"totalPrice":     in.TotalPrice.StringFixed(2),
	})
	evt.ActorID = actor.ID
	events.PublishSafe(ctx, s.events, evt)
	return checkout, nil
}
