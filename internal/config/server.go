// Package config loads VPN Sentinel server and client configuration from
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ServerConfig holds all server-process configuration.
type ServerConfig struct {
	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Listener ports
	APIPort       int `env:"VPN_SENTINEL_SERVER_API_PORT" envDefault:"5000"`
	HealthPort    int `env:"VPN_SENTINEL_SERVER_HEALTH_PORT" envDefault:"8081"`
	DashboardPort int `env:"VPN_SENTINEL_SERVER_DASHBOARD_PORT" envDefault:"8080"`

	// Ingestion API path, e.g. "/api/v1".
	APIPath string `env:"VPN_SENTINEL_API_PATH" envDefault:"/api/v1"`

	// Security gate
	APIKey              string   `env:"VPN_SENTINEL_API_KEY"`
	AllowedIPs          []string `env:"VPN_SENTINEL_SERVER_ALLOWED_IPS" envSeparator:","`
	RateLimitRequests   int      `env:"VPN_SENTINEL_SERVER_RATE_LIMIT_REQUESTS" envDefault:"30"`
	RateLimitWindowSecs int      `env:"VPN_SENTINEL_SERVER_RATE_LIMIT_WINDOW" envDefault:"60"`

	// Client lifecycle
	ClientTimeoutMinutes int `env:"VPN_SENTINEL_CLIENT_TIMEOUT_MINUTES" envDefault:"30"`

	// TLS (optional — if either is unset, the server listens in plaintext)
	TLSCertPath string `env:"VPN_SENTINEL_TLS_CERT_PATH"`
	TLSKeyPath  string `env:"VPN_SENTINEL_TLS_KEY_PATH"`

	// Telegram notification transport
	TelegramEnabled *bool  `env:"VPN_SENTINEL_TELEGRAM_ENABLED"`
	TelegramToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID  string `env:"TELEGRAM_CHAT_ID"`

	// Geolocation provider used to resolve the server's own public IP.
	GeolocationService string `env:"VPN_SENTINEL_GEOLOCATION_SERVICE" envDefault:"auto"`

	// CORS, for the dashboard talking to the API from a browser.
	CORSAllowedOrigins []string `env:"VPN_SENTINEL_CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Value of TZ. Nothing reads this field: the dashboard renders all
	// times in UTC, and the state store itself is always UTC.
	DisplayTimezone string `env:"TZ" envDefault:"UTC"`

	// Optional log file shown by the dashboard's /logs endpoint. The server
	// does not write to it; its own logs go to stdout only.
	LogFilePath string `env:"VPN_SENTINEL_LOG_FILE"`
}

// LoadServerConfig reads server configuration from environment variables.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing server config from env: %w", err)
	}
	return cfg, nil
}

// TelegramTransportEnabled reports whether the Telegram transport must be
// considered "on": either an explicit true, or both credentials present
// without an explicit false.
func (c *ServerConfig) TelegramTransportEnabled() bool {
	if c.TelegramEnabled != nil {
		return *c.TelegramEnabled
	}
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

// TLSConfigured reports whether both halves of a TLS cert/key pair were given.
func (c *ServerConfig) TLSConfigured() bool {
	return c.TLSCertPath != "" && c.TLSKeyPath != ""
}

// NormalizedAPIPath returns APIPath with a leading slash added if missing
// and any trailing slash stripped, per §6's path normalization rule.
func (c *ServerConfig) NormalizedAPIPath() string {
	p := c.APIPath
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}
