package config

import (
	"log/slog"
	"time"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port              string
	StoreDriver       string // mongo | memory
	MongoURI          string
	MongoDB           string
	RabbitURI         string // empty disables event publishing
	RabbitQueue       string
	LogLevel          slog.Level
	MaxBodyBytes      int64
	RequestTimeout    time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func Load() *Config {
	return &Config{
		Port:              getenvAny("3000", "PORT", "API_PORT"),
		StoreDriver:       getenv("STORE_DRIVER", StoreMongo),
		MongoURI:          getenvAny("mongodb://localhost:27017", "MONGODB_URI", "MONGO_URI"),
		MongoDB:           getenvAny("TholonsCRM", "MONGODB_DB", "MONGO_DB"),
		RabbitURI:         getenvAny("", "RABBITMQ_URL", "RABBIT_URI"),
		RabbitQueue:       getenvAny("crm_events", "RABBITMQ_QUEUE", "RABBIT_QUEUE"),
		LogLevel:          parseLevel(getenv("LOG_LEVEL", "info")),
		MaxBodyBytes:      parseInt64("MAX_BODY_BYTES", 16<<20),
		RequestTimeout:    parseDuration("REQUEST_TIMEOUT", 5*time.Second),
		ReadHeaderTimeout: parseDuration("READ_HEADER_TIMEOUT", 5*time.Second),
		ShutdownTimeout:   parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}
