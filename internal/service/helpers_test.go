package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"flightbooking/internal/events"
	"flightbooking/internal/repository"
	"flightbooking/internal/testutil"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fixture wires the services over one in-memory database at testutil.Now.
type fixture struct {
	db        *gorm.DB
	store     repository.Store
	publisher *recordingPublisher
	lifecycle *LifecycleUpdater
	guard     *DeletionGuard
}

func newFixture(t *testing.T) *fixture {
	store, gdb := testutil.NewStore(t)
	pub := &recordingPublisher{}
	return &fixture{
		db:        gdb,
		store:     store,
		publisher: pub,
		lifecycle: NewLifecycleUpdater(store, pub, testutil.Clock),
		guard:     NewDeletionGuard(store, nil, pub, testutil.Clock),
	}
}

func hoursFromNow(h int) time.Time {
	return testutil.Now.Add(time.Duration(h) * time.Hour)
}
