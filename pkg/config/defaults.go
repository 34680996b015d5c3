package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "slotbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	MetricsNamespace = "slotbook"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 35 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRedisDB = 0

	DefaultProviderTimeout     = 3 * time.Second
	DefaultAvailabilityTimeout = 10 * time.Second
	DefaultBookingTimeout      = 10 * time.Second

	DefaultDefaultAvailabilityDays = 7
	DefaultMaxAvailabilityDays     = 62

	DefaultEventsEnabled        = false
	DefaultAppointmentsTopic    = "appointments"
	DefaultAppointmentsDLQTopic = "appointments.dlq"

	DefaultPaginationLimit = 100
	MinPaginationLimit     = 10
)
