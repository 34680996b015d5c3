package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slotbook/pkg/client"
	kafka_config "slotbook/pkg/kafka/config"
	"slotbook/pkg/logger"
	"slotbook/pkg/metrics"
	"strconv"
	"time"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ProviderTimeout bounds a single schedule or calendar call.
	ProviderTimeout     time.Duration
	AvailabilityTimeout time.Duration
	BookingTimeout      time.Duration

	DefaultAvailabilityDays int
	MaxAvailabilityDays     int

	ScheduleProviderURL           string
	GoogleCalendarCredentialsFile string

	EventsEnabled        bool
	AppointmentsTopic    string
	AppointmentsDLQTopic string
	Kafka                *kafka_config.Config

	Log     *logger.Logger
	Client  *client.Client
	Metrics *metrics.Metrics
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		ProviderTimeout:     getEnvDuration(EnvProviderTimeout, DefaultProviderTimeout),
		AvailabilityTimeout: getEnvDuration(EnvAvailabilityTimeout, DefaultAvailabilityTimeout),
		BookingTimeout:      getEnvDuration(EnvBookingTimeout, DefaultBookingTimeout),

		DefaultAvailabilityDays: getEnvNum(EnvDefaultAvailabilityDays, DefaultDefaultAvailabilityDays),
		MaxAvailabilityDays:     getEnvNum(EnvMaxAvailabilityDays, DefaultMaxAvailabilityDays),

		ScheduleProviderURL:           getEnvStr(EnvScheduleProviderURL, ""),
		GoogleCalendarCredentialsFile: getEnvStr(EnvGoogleCalendarCredentialsFile, ""),

		EventsEnabled:        getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		AppointmentsTopic:    getEnvStr(EnvAppointmentsTopic, DefaultAppointmentsTopic),
		AppointmentsDLQTopic: getEnvStr(EnvAppointmentsDLQTopic, DefaultAppointmentsDLQTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client:  client.NewClient(),
		Metrics: metrics.New(MetricsNamespace),
	}

	if cfg.EventsEnabled {
		kafkaCfg, err := kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal("Kafka configuration is invalid", "error", err)
		}
		cfg.Kafka = kafkaCfg
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the shared Redis client when REDIS_ADDR is set. Without
// it the service keeps idempotency state in memory.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("REDIS_ADDR not set, using in-memory idempotency store")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"ProviderTimeout", cfg.ProviderTimeout},
		{"AvailabilityTimeout", cfg.AvailabilityTimeout},
		{"BookingTimeout", cfg.BookingTimeout},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.ProviderTimeout > cfg.AvailabilityTimeout {
		errors = append(errors, fmt.Sprintf("ProviderTimeout (%s) must not exceed AvailabilityTimeout (%s)", cfg.ProviderTimeout, cfg.AvailabilityTimeout))
	}
	if cfg.AvailabilityTimeout > cfg.RequestTimeout || cfg.BookingTimeout > cfg.RequestTimeout {
		errors = append(errors, fmt.Sprintf("AvailabilityTimeout and BookingTimeout must not exceed RequestTimeout (%s)", cfg.RequestTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.DefaultAvailabilityDays <= 0 {
		errors = append(errors, fmt.Sprintf("DefaultAvailabilityDays must be positive, got: %d", cfg.DefaultAvailabilityDays))
	}
	if cfg.MaxAvailabilityDays < cfg.DefaultAvailabilityDays {
		errors = append(errors, fmt.Sprintf("MaxAvailabilityDays (%d) must be >= DefaultAvailabilityDays (%d)", cfg.MaxAvailabilityDays, cfg.DefaultAvailabilityDays))
	}

	if cfg.ScheduleProviderURL != "" {
		if u, err := url.Parse(cfg.ScheduleProviderURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("ScheduleProviderURL must be an absolute URL, got: %s", cfg.ScheduleProviderURL))
		}
	}
	if cfg.GoogleCalendarCredentialsFile != "" {
		if _, err := os.Stat(cfg.GoogleCalendarCredentialsFile); err != nil {
			errors = append(errors, fmt.Sprintf("GoogleCalendarCredentialsFile is not readable: %v", err))
		}
	}

	if cfg.EventsEnabled && cfg.AppointmentsTopic == "" {
		errors = append(errors, "AppointmentsTopic cannot be empty when events are enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"provider_timeout", cfg.ProviderTimeout,
		"availability_timeout", cfg.AvailabilityTimeout,
		"booking_timeout", cfg.BookingTimeout,
		"default_availability_days", cfg.DefaultAvailabilityDays,
		"max_availability_days", cfg.MaxAvailabilityDays,
		"schedule_provider_url", cfg.ScheduleProviderURL,
		"google_calendar_enabled", cfg.GoogleCalendarCredentialsFile != "",
		"events_enabled", cfg.EventsEnabled,
		"appointments_topic", cfg.AppointmentsTopic,
		"appointments_dlq_topic", cfg.AppointmentsDLQTopic,
	)
	if cfg.Kafka != nil {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = MinPaginationLimit
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
