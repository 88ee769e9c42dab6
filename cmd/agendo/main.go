package main

import (
	"agendo/internal/appointments/handler"
	"agendo/internal/appointments/repository"
	"agendo/internal/appointments/service"
	"agendo/internal/appointments/validator"
	"agendo/internal/busy"
	"agendo/internal/calendar"
	providersrepo "agendo/internal/providers/repository"
	"agendo/pkg/app"
	"agendo/pkg/config"
	"agendo/pkg/kafka"
	kafka_config "agendo/pkg/kafka/config"
	kafka_middleware "agendo/pkg/kafka/middleware"
	"agendo/pkg/sealer"

	"github.com/joho/godotenv"
)

const ServiceName = "agendo"

func main() {
	// Missing .env is fine in container deployments.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting agendo booking service")

	bookingService, slotService, sweeper, producer := initServices(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	sweeper.Start()
	defer sweeper.Stop()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAppointmentHandler(bookingService, slotService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.BookingService, service.SlotService, *service.HoldSweeper, *kafka.Producer) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	appointmentRepo := repository.NewMongoAppointmentRepository(cfg)
	lockRepo := repository.NewAppointmentLockRepository(cfg)
	providerRepo := providersrepo.NewMongoProviderRepository(cfg)

	var tokenSealer *sealer.Sealer
	if cfg.SealerKey != "" {
		var err error
		tokenSealer, err = sealer.New(cfg.SealerKey)
		if err != nil {
			cfg.Log.Fatal("Invalid sealer key", "error", err)
		}
	} else {
		cfg.Log.Warn("No sealer key configured, calendar tokens are read unsealed")
	}

	credentialRepo := calendar.NewMongoCredentialRepository(cfg, tokenSealer)
	freeBusyClient := calendar.NewFreeBusyClient(cfg, credentialRepo)
	collector := busy.NewCollector(cfg, appointmentRepo, freeBusyClient)

	producer := initProducer(cfg)

	var publisher service.EventPublisher
	if producer != nil {
		publisher = producer
	}

	bookingService := service.NewBookingService(
		appointmentRepo,
		lockRepo,
		providerRepo,
		bookingValidator,
		publisher,
		cfg,
	)
	slotService := service.NewSlotService(providerRepo, collector, cfg)
	sweeper := service.NewHoldSweeper(appointmentRepo, publisher, cfg)

	cfg.Log.Info("Appointment services initialized", "database", cfg.MongoDatabaseName)
	return bookingService, slotService, sweeper, producer
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	if kafkaCfg == nil {
		cfg.Log.Info("Kafka brokers not configured, event publishing disabled")
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, service.TopicAppointments, service.TopicAppointmentsDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}

	cfg.Log.Info("Kafka producer initialized",
		"brokers", kafkaCfg.Brokers,
		"topic", service.TopicAppointments,
	)
	return producer
}
