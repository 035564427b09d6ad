package main

import (
	"context"
	"time"

	bookingsrepo "lagoon/internal/bookings/repository"
	holdsrepo "lagoon/internal/holds/repository"
	"lagoon/internal/notifications"
	sweeperservice "lagoon/internal/sweeper/service"
	"lagoon/pkg/config"
	"lagoon/pkg/kafka"
	kafkaconfig "lagoon/pkg/kafka/config"
)

const JobName = "sweeper"

// One-shot maintenance job, intended to run on a schedule (cron or a
// container orchestrator). The same sweep is also exposed over HTTP by
// the reservations service for on-demand runs.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	notifier, producer := initNotifier(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	holdRepo := holdsrepo.NewMongoHoldRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	sweeper := sweeperservice.NewSweeperService(holdRepo, bookingRepo, notifier, cfg)

	report, err := sweeper.Run(ctx)
	if err != nil {
		cfg.Log.Fatal("Sweep failed", "error", err)
	}

	cfg.Log.Info("Sweep job finished",
		"holds_deleted", report.HoldsDeleted,
		"bookings_checked_out", report.BookingsClosedOut,
		"ran_at", report.RanAt,
	)
}

func initNotifier(cfg *config.Config) (notifications.Notifier, *kafka.Producer) {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return notifications.NewNoopNotifier(), nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.EventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	return notifications.NewKafkaNotifier(producer, cfg.Log), producer
}
