package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func TestPublishSafe(t *testing.T) {
	t.Run("swallows publisher errors", func(t *testing.T) {
		p := new(MockPublisher)
		p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

		assert.NotPanics(t, func() {
			PublishSafe(context.Background(), p, New(FlightExpired, 1, nil))
		})
		p.AssertExpectations(t)
	})

	t.Run("skips empty batches", func(t *testing.T) {
		p := new(MockPublisher)
		PublishSafe(context.Background(), p)
		p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("nil publisher", func(t *testing.T) {
		assert.NotPanics(t, func() {
			PublishSafe(context.Background(), nil, New(UserDeleted, 2, nil))
		})
	})
}

func TestNew(t *testing.T) {
	e := New(BookingCreated, 9, map[string]interface{}{"flightId": uint(3)})

	assert.Equal(t, BookingCreated, e.Type)
	assert.Equal(t, uint(9), e.EntityID)
	assert.False(t, e.OccurredAt.IsZero())
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), e))
}
