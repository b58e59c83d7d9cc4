// Package config centralises configuration parsing for the signup service.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures runtime configuration values for the signup service and the roster consumer.
type Config struct {
	HTTPAddress         string
	MetricsAddress      string
	LogLevel            string
	LogFormat           string
	CORSAllowedOrigin   string
	EnforceCapacity     bool
	KafkaBrokers        []string
	RosterTopic         string
	OutboxFlushInterval time.Duration
	OutboxBatchSize     int
	OutboxBufferSize    int
	ConsumerGroupID     string
}

// StreamEnabled reports whether roster events should be published to Kafka.
func (c Config) StreamEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

var defaults = map[string]any{
	"HTTP_ADDRESS":          ":8080",
	"METRICS_ADDRESS":       ":9102",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
	"CORS_ALLOWED_ORIGIN":   "http://localhost:5173",
	"ENFORCE_CAPACITY":      false,
	"KAFKA_BROKERS":         "",
	"ROSTER_TOPIC":          "roster_events",
	"OUTBOX_FLUSH_INTERVAL": 2 * time.Second,
	"OUTBOX_BATCH_SIZE":     25,
	"OUTBOX_BUFFER_SIZE":    1024,
	"CONSUMER_GROUP_ID":     "roster-audit",
}

// Load reads an optional .env file and the process environment into Config,
// applying defaults for local dev.
func Load() Config {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

// FromViper builds Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	cfg := Config{
		HTTPAddress:         v.GetString("HTTP_ADDRESS"),
		MetricsAddress:      v.GetString("METRICS_ADDRESS"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
		CORSAllowedOrigin:   v.GetString("CORS_ALLOWED_ORIGIN"),
		EnforceCapacity:     v.GetBool("ENFORCE_CAPACITY"),
		KafkaBrokers:        splitAndTrim(v.GetString("KAFKA_BROKERS")),
		RosterTopic:         v.GetString("ROSTER_TOPIC"),
		OutboxFlushInterval: v.GetDuration("OUTBOX_FLUSH_INTERVAL"),
		OutboxBatchSize:     v.GetInt("OUTBOX_BATCH_SIZE"),
		OutboxBufferSize:    v.GetInt("OUTBOX_BUFFER_SIZE"),
		ConsumerGroupID:     v.GetString("CONSUMER_GROUP_ID"),
	}

	// Unparseable or non-positive values fall back to the defaults.
	if cfg.OutboxFlushInterval <= 0 {
		cfg.OutboxFlushInterval = defaults["OUTBOX_FLUSH_INTERVAL"].(time.Duration)
	}
	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = defaults["OUTBOX_BATCH_SIZE"].(int)
	}
	if cfg.OutboxBufferSize <= 0 {
		cfg.OutboxBufferSize = defaults["OUTBOX_BUFFER_SIZE"].(int)
	}
	if strings.TrimSpace(cfg.RosterTopic) == "" {
		cfg.RosterTopic = defaults["ROSTER_TOPIC"].(string)
	}
	return cfg
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
