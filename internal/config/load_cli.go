package config

import (
	"log/slog"
	"time"
)

// CLIConfig is read by crmctl; flags override it.
type CLIConfig struct {
	APIURL        string
	WSURL         string
	Partner       string
	HTTPTimeout   time.Duration
	Unconditional bool // single-writer mode: commits skip the revision check
	LogLevel      slog.Level
}

func LoadCLIConfig() *CLIConfig {
	return &CLIConfig{
		APIURL:        getenv("CRM_API_URL", "http://localhost:3000/api"),
		WSURL:         getenv("CRM_WS_URL", "ws://localhost:8090/ws"),
		Partner:       getenv("CRM_PARTNER", ""),
		HTTPTimeout:   parseDuration("CRM_HTTP_TIMEOUT", 15*time.Second),
		Unconditional: parseBool("CRM_UNCONDITIONAL", false),
		LogLevel:      parseLevel(getenv("LOG_LEVEL", "warn")),
	}
}
