package main

import (
	availabilityhandler "lagoon/internal/availability/handler"
	availabilityservice "lagoon/internal/availability/service"
	bookingshandler "lagoon/internal/bookings/handler"
	bookingsrepo "lagoon/internal/bookings/repository"
	bookingsservice "lagoon/internal/bookings/service"
	facilitiesrepo "lagoon/internal/facilities/repository"
	holdshandler "lagoon/internal/holds/handler"
	holdsrepo "lagoon/internal/holds/repository"
	holdsservice "lagoon/internal/holds/service"
	holdsvalidator "lagoon/internal/holds/validator"
	"lagoon/internal/notifications"
	reviewshandler "lagoon/internal/reviews/handler"
	reviewsrepo "lagoon/internal/reviews/repository"
	reviewsservice "lagoon/internal/reviews/service"
	reviewsvalidator "lagoon/internal/reviews/validator"
	sweeperhandler "lagoon/internal/sweeper/handler"
	sweeperservice "lagoon/internal/sweeper/service"
	"lagoon/pkg/app"
	"lagoon/pkg/config"
	"lagoon/pkg/kafka"
	kafkaconfig "lagoon/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
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

	cfg.Log.Info("Starting Reservations service")

	facilityRepo := facilitiesrepo.NewMongoFacilityRepository(cfg)
	holdRepo := holdsrepo.NewMongoHoldRepository(cfg)
	lockRepo := holdsrepo.NewFacilityLockRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	reviewRepo := reviewsrepo.NewMongoReviewRepository(cfg)

	holdService := holdsservice.NewHoldService(
		holdRepo,
		lockRepo,
		bookingRepo,
		facilityRepo,
		holdsvalidator.NewHoldValidator(cfg.Log),
		notifier,
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(bookingRepo, notifier, cfg)
	availabilityService := availabilityservice.NewAvailabilityService(holdRepo, bookingRepo, cfg)
	sweeperService := sweeperservice.NewSweeperService(holdRepo, bookingRepo, notifier, cfg)
	reviewService := reviewsservice.NewReviewService(
		reviewRepo,
		bookingRepo,
		reviewsvalidator.NewReviewValidator(cfg.Log),
		cfg,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		holdshandler.NewHoldHandler(holdService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		sweeperhandler.NewSweeperHandler(sweeperService, cfg.Log),
		reviewshandler.NewReviewHandler(reviewService, cfg.Log),
	)
	serverApp.Run()
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

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.EventsTopic)
	return notifications.NewKafkaNotifier(producer, cfg.Log), producer
}
