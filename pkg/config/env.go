package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvProviderTimeout     = "PROVIDER_TIMEOUT"
	EnvAvailabilityTimeout = "AVAILABILITY_TIMEOUT"
	EnvBookingTimeout      = "BOOKING_TIMEOUT"

	EnvDefaultAvailabilityDays = "DEFAULT_AVAILABILITY_DAYS"
	EnvMaxAvailabilityDays     = "MAX_AVAILABILITY_DAYS"

	EnvScheduleProviderURL           = "SCHEDULE_PROVIDER_URL"
	EnvGoogleCalendarCredentialsFile = "GOOGLE_CALENDAR_CREDENTIALS_FILE"

	EnvEventsEnabled        = "EVENTS_ENABLED"
	EnvAppointmentsTopic    = "APPOINTMENTS_TOPIC"
	EnvAppointmentsDLQTopic = "APPOINTMENTS_DLQ_TOPIC"
)
