package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds settings for the fetch, aggregate, and validate jobs, populated from
// environment variables.
type Config struct {
	LogLevel        string
	LogFormat       string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	PushgatewayURL  string

	// IFRC GO API configuration.
	IFRCBaseURL      string
	IFRCToken        string
	IFRCPageSize     int
	IFRCPageDelay    time.Duration
	IFRCTimeout      time.Duration
	IFRCCreatedSince string

	// File handoff between the fetch and aggregate jobs.
	ReportsFile    string
	AggregatedFile string

	MaxLocationsPerMonth int

	// Optional Kafka publication of aggregated months.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pageDelay, err := parseDuration("IFRC_PAGE_DELAY", "2s", true)
	if err != nil {
		return nil, err
	}
	timeout, err := parseDuration("IFRC_TIMEOUT", "30s", false)
	if err != nil {
		return nil, err
	}
	pageSize, err := parsePositiveInt("IFRC_PAGE_SIZE", 400)
	if err != nil {
		return nil, err
	}
	maxLocations, err := parsePositiveInt("MAX_LOCATIONS_PER_MONTH", 50)
	if err != nil {
		return nil, err
	}

	createdSince := sharedcfg.EnvOrDefault("IFRC_CREATED_SINCE", "2018-01-01T00:00:00Z")
	if _, err := time.Parse(time.RFC3339, createdSince); err != nil {
		return nil, errors.New("invalid IFRC_CREATED_SINCE")
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,
		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),

		IFRCBaseURL:      sharedcfg.EnvOrDefault("IFRC_BASE_URL", "https://goadmin.ifrc.org"),
		IFRCToken:        os.Getenv("IFRC_TOKEN"),
		IFRCPageSize:     pageSize,
		IFRCPageDelay:    pageDelay,
		IFRCTimeout:      timeout,
		IFRCCreatedSince: createdSince,

		ReportsFile:    sharedcfg.EnvOrDefault("REPORTS_FILE", "field_reports.json"),
		AggregatedFile: sharedcfg.EnvOrDefault("AGGREGATED_FILE", "field_reports_aggregated.json"),

		MaxLocationsPerMonth: maxLocations,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "field-reports-aggregated"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// ValidateFetch reports settings the fetch job needs that Load leaves optional.
func (c *Config) ValidateFetch() error {
	if c.IFRCToken == "" {
		return errors.New("IFRC_TOKEN is required")
	}
	return nil
}

func parseDuration(key, fallback string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
