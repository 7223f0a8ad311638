package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ClientConfig holds all client-process configuration.
type ClientConfig struct {
	ServerURL string `env:"VPN_SENTINEL_URL" envDefault:"http://localhost:5000"`
	APIPath   string `env:"VPN_SENTINEL_API_PATH" envDefault:"/api/v1"`

	ClientID string `env:"VPN_SENTINEL_CLIENT_ID"`

	IntervalSeconds int `env:"VPN_SENTINEL_INTERVAL" envDefault:"300"`
	TimeoutSeconds  int `env:"VPN_SENTINEL_TIMEOUT" envDefault:"30"`

	APIKey string `env:"VPN_SENTINEL_API_KEY"`

	AllowInsecureTLS bool   `env:"VPN_SENTINEL_ALLOW_INSECURE" envDefault:"false"`
	TLSCABundlePath  string `env:"VPN_SENTINEL_TLS_CA_BUNDLE"`

	HealthPort       int    `env:"VPN_SENTINEL_HEALTH_PORT" envDefault:"8082"`
	HealthMonitor    bool   `env:"VPN_SENTINEL_HEALTH_MONITOR" envDefault:"true"`
	HealthPIDFile    string `env:"VPN_SENTINEL_HEALTH_PIDFILE" envDefault:"/tmp/vpn-sentinel-health.pid"`

	GeolocationService string `env:"VPN_SENTINEL_GEOLOCATION_SERVICE" envDefault:"auto"`

	ClientVersion string `env:"VPN_SENTINEL_CLIENT_VERSION" envDefault:"dev"`

	// TestCapturePath, when set, redirects keepalive submissions to a local
	// file instead of performing network I/O.
	TestCapturePath string `env:"VPN_SENTINEL_TEST_CAPTURE_PATH"`
}

// LoadClientConfig reads client configuration from environment variables.
func LoadClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing client config from env: %w", err)
	}
	return cfg, nil
}

// KeepaliveURL returns the fully slash-normalized target URL for the
// keepalive endpoint: <base>/keepalive, where base = ServerURL + APIPath.
func (c *ClientConfig) KeepaliveURL() string {
	return JoinURL(c.ServerURL, c.APIPath, "keepalive")
}

// JoinURL slash-normalizes and concatenates URL segments: missing leading
// slashes are added, duplicate slashes within and between segments are
// collapsed, and the trailing slash of the base is never doubled against
// the next segment's leading one. The base itself is left as given apart
// from its trailing slashes, so its scheme's "//" is kept.
func JoinURL(base string, segments ...string) string {
	result := strings.TrimRight(base, "/")
	for _, seg := range segments {
		for strings.Contains(seg, "//") {
			seg = strings.ReplaceAll(seg, "//", "/")
		}
		seg = strings.Trim(seg, "/")
		if seg == "" {
			continue
		}
		result = result + "/" + seg
	}
	return result
}
