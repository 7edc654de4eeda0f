package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/payment"
	"flightbooking/internal/testutil"
)

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePreference(ctx context.Context, pref payment.Preference) (*payment.Checkout, error) {
	args := m.Called(ctx, pref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Checkout), args.Error(1)
}

func unitPrice(expected string) interface{} {
	return mock.MatchedBy(func(p payment.Preference) bool {
		return len(p.Items) == 1 && p.Items[0].UnitPrice.Equal(decimal.RequireFromString(expected))
	})
}

func TestPaymentService_CreatePreference(t *testing.T) {
	tests := []struct {
		name          string
		flight        func(t *testing.T, f *fixture) uint
		passengers    int
		totalPrice    int64
		setupMock     func(*MockGateway)
		expectedError error
	}{
		{
			name: "splits total evenly",
			flight: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10).ID
			},
			passengers: 3,
			totalPrice: 300,
			setupMock: func(m *MockGateway) {
				m.On("CreatePreference", mock.Anything, unitPrice("100")).
					Return(&payment.Checkout{ID: "pref-1", InitPoint: "https://pay.example/pref-1"}, nil)
			},
		},
		{
			name: "rounds uneven split to cents",
			flight: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10).ID
			},
			passengers: 3,
			totalPrice: 100,
			setupMock: func(m *MockGateway) {
				m.On("CreatePreference", mock.Anything, unitPrice("33.33")).
					Return(&payment.Checkout{ID: "pref-2", InitPoint: "https://pay.example/pref-2"}, nil)
			},
		},
		{
			name:          "missing flight id",
			flight:        func(*testing.T, *fixture) uint { return 0 },
			passengers:    1,
			totalPrice:    100,
			setupMock:     func(*MockGateway) {},
			expectedError: apperrors.ErrFlightRequired,
		},
		{
			name: "no passengers",
			flight: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10).ID
			},
			passengers:    0,
			totalPrice:    100,
			setupMock:     func(*MockGateway) {},
			expectedError: apperrors.ErrInvalidPassengers,
		},
		{
			name: "zero total",
			flight: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10).ID
			},
			passengers:    2,
			totalPrice:    0,
			setupMock:     func(*MockGateway) {},
			expectedError: apperrors.ErrInvalidAmount,
		},
		{
			name:          "unknown flight",
			flight:        func(*testing.T, *fixture) uint { return 999 },
			passengers:    1,
			totalPrice:    100,
			setupMock:     func(*MockGateway) {},
			expectedError: apperrors.ErrFlightNotFound,
		},
		{
			name: "departed flight",
			flight: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(-1), 10).ID
			},
			passengers:    1,
			totalPrice:    100,
			setupMock:     func(*MockGateway) {},
			expectedError: apperrors.ErrFlightInactive,
		},
		{
			name: "gateway failure",
			flight: func(t *testing.T, f *fixture) uint {
				return testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10).ID
			},
			passengers: 1,
			totalPrice: 100,
			setupMock: func(m *MockGateway) {
				m.On("CreatePreference", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
			},
			expectedError: apperrors.ErrPaymentGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
			flightID := tt.flight(t, f)
			gateway := new(MockGateway)
			tt.setupMock(gateway)

			svc := NewPaymentService(f.store, f.lifecycle, gateway, PaymentOptions{Currency: "ARS"}, f.publisher)
			checkout, err := svc.CreatePreference(context.Background(), testutil.Principal(customer), PaymentInput{
				FlightID:   flightID,
				Passengers: passengers(tt.passengers),
				TotalPrice: decimal.NewFromInt(tt.totalPrice),
			})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, checkout)
				assert.NotContains(t, f.publisher.types(), events.PaymentRequested)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, checkout.ID)
				assert.NotEmpty(t, checkout.InitPoint)
				assert.Contains(t, f.publisher.types(), events.PaymentRequested)
			}

			gateway.AssertExpectations(t)
		})
	}
}

func TestPaymentService_PreferenceCarriesOptions(t *testing.T) {
	f := newFixture(t)
	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	flight := testutil.FlightAt(t, f.db, "SkyLine", hoursFromNow(24), 10)
	opts := PaymentOptions{
		Currency: "USD",
		BackURLs: payment.BackURLs{Success: "https://app/ok", Failure: "https://app/ko", Pending: "https://app/wait"},
	}

	gateway := new(MockGateway)
	gateway.On("CreatePreference", mock.Anything, mock.MatchedBy(func(p payment.Preference) bool {
		item := p.Items[0]
		return item.CurrencyID == "USD" && item.Quantity == 2 &&
			p.BackURLs == opts.BackURLs && p.AutoReturn == "approved"
	})).Return(&payment.Checkout{ID: "pref-3", InitPoint: "https://pay.example/pref-3"}, nil)

	svc := NewPaymentService(f.store, f.lifecycle, gateway, opts, f.publisher)
	_, err := svc.CreatePreference(context.Background(), testutil.Principal(customer), PaymentInput{
		FlightID:   flight.ID,
		Passengers: passengers(2),
		TotalPrice: decimal.NewFromInt(250),
	})

	require.NoError(t, err)
	gateway.AssertExpectations(t)
}
