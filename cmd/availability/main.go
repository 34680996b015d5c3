package main

import (
	"context"

	availabilityhandler "slotbook/internal/availability/handler"
	"slotbook/internal/availability/busy"
	"slotbook/internal/availability/providers"
	"slotbook/internal/availability/resolver"
	availabilityservice "slotbook/internal/availability/service"
	"slotbook/internal/bookings/events"
	bookingshandler "slotbook/internal/bookings/handler"
	bookingsrepo "slotbook/internal/bookings/repository"
	bookingsservice "slotbook/internal/bookings/service"
	bookingsvalidator "slotbook/internal/bookings/validator"
	businesseshandler "slotbook/internal/businesses/handler"
	businessesrepo "slotbook/internal/businesses/repository"
	businessesservice "slotbook/internal/businesses/service"
	businessesvalidator "slotbook/internal/businesses/validator"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
	"slotbook/pkg/kafka"
	kafkamiddleware "slotbook/pkg/kafka/middleware"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Availability service")
	serverApp := app.NewApplication(cfg)

	registry := initProviders(cfg)
	publisher, closePublisher := initPublisher(cfg)
	serverApp.OnShutdown(closePublisher)

	businessRepo := businessesrepo.NewMongoBusinessRepository(cfg)
	businessService := businessesservice.NewBusinessService(
		businessRepo,
		businessesvalidator.NewBusinessValidator(cfg.Log),
		registry,
		cfg,
	)

	appointmentRepo := bookingsrepo.NewMongoAppointmentRepository(cfg)
	availabilityService := availabilityservice.NewAvailabilityService(
		businessRepo,
		resolver.New(registry, cfg.ProviderTimeout, cfg.Log, cfg.Metrics),
		busy.NewAggregator(appointmentRepo, registry, cfg.ProviderTimeout, cfg.Log, cfg.Metrics),
		cfg,
	)

	bookingService := bookingsservice.NewBookingService(
		appointmentRepo,
		bookingsrepo.NewSlotClaimRepository(cfg),
		availabilityService,
		bookingsvalidator.NewAppointmentValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		businesseshandler.NewBusinessHandler(businessService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		bookingshandler.NewAppointmentHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

// initProviders registers the apps that have credentials configured. A
// business linked to an app missing here is served with that source closed.
func initProviders(cfg *config.Config) *providers.Registry {
	registry := providers.NewRegistry()

	if cfg.ScheduleProviderURL != "" {
		registry.RegisterSchedule(providers.AppHTTPSchedule, providers.NewHTTPScheduleProvider(cfg.ScheduleProviderURL, cfg.ProviderTimeout))
	}

	if cfg.GoogleCalendarCredentialsFile != "" {
		gcal, err := providers.NewGoogleCalendarProvider(context.Background(), cfg.GoogleCalendarCredentialsFile)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize Google Calendar provider", "error", err)
		}
		registry.RegisterCalendar(providers.AppGoogleCalendar, gcal)
	}

	schedules, calendars := registry.Apps()
	cfg.Log.Info("Provider registry initialized",
		"schedule_apps", schedules,
		"calendar_apps", calendars,
	)
	return registry
}

func initPublisher(cfg *config.Config) (events.Publisher, func()) {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Appointment events disabled")
		return events.NewNoopPublisher(), func() {}
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.AppointmentsTopic, cfg.AppointmentsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamiddleware.MetricsProducerMiddleware(cfg.Metrics))

	cfg.Log.Info("Appointment events enabled",
		"topic", cfg.AppointmentsTopic,
		"dlq_topic", cfg.AppointmentsDLQTopic,
	)
	return events.NewKafkaPublisher(producer, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}
