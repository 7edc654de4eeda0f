package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"flightbooking/internal/config"
	"flightbooking/internal/db"
	"flightbooking/internal/events"
	"flightbooking/internal/repository"
	"flightbooking/internal/service"
)

// The worker expires departed flights on a fixed interval and, when Kafka is
// configured, logs the lifecycle events other processes publish.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	var consumer *events.Consumer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		consumer = events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
		defer consumer.Close()
	}

	lifecycle := service.NewLifecycleUpdater(repository.NewStore(gormDB), publisher, time.Now)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runSweeps(ctx, lifecycle, cfg.Worker.SweepInterval)
	}()

	if consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := consumer.Consume(ctx, func(_ context.Context, e events.Event) error {
				log.Printf("event %s entity=%d actor=%d attrs=%v", e.Type, e.EntityID, e.ActorID, e.Attributes)
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("consumer stopped: %v", err)
			}
		}()
	}

	log.Printf("worker started, sweeping every %s", cfg.Worker.SweepInterval)
	wg.Wait()
	log.Println("worker stopped")
}

func runSweeps(ctx context.Context, lifecycle *service.LifecycleUpdater, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := lifecycle.Sweep(ctx); err != nil {
			log.Printf("sweep: %v", err)
		} else if n > 0 {
			log.Printf("sweep: expired %d flights", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
