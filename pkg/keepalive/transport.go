package keepalive

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TransportConfig configures the keepalive submission transport (§4.C3).
type TransportConfig struct {
	URL              string
	APIKey           string
	Timeout          time.Duration
	AllowInsecureTLS bool
	CABundlePath     string
	// TestCapturePath, if set, redirects submission to a local file
	// instead of performing network I/O.
	TestCapturePath string
}

// Submit transports payload per the spec's transport contract: POST JSON
// with X-API-Key if configured, or append-to-file in test-capture mode.
// Returns nil on success (2xx HTTP, or successful capture).
func Submit(cfg TransportConfig, payload NestedPayload) error {
	if cfg.TestCapturePath != "" {
		return captureToFile(cfg.TestCapturePath, payload)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling keepalive payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building keepalive request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("X-API-Key", cfg.APIKey)
	}

	client, err := httpClient(cfg)
	if err != nil {
		return fmt.Errorf("building http client: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("submitting keepalive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("keepalive submission failed with status %d", resp.StatusCode)
	}
	return nil
}

func httpClient(cfg TransportConfig) (*http.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	switch {
	case cfg.AllowInsecureTLS:
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opt-in
	case cfg.CABundlePath != "":
		pool := x509.NewCertPool()
		pem, err := os.ReadFile(cfg.CABundlePath)
		if err != nil {
			return nil, fmt.Errorf("reading CA bundle: %w", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates parsed from CA bundle %s", cfg.CABundlePath)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	}

	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

// captureToFile appends payload as one compact JSON line to path, creating
// parent directories as needed. If payload can't be marshaled, the raw
// text is written instead, joined to a single line.
func captureToFile(path string, payload NestedPayload) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating capture directory: %w", err)
	}

	line, err := json.Marshal(payload)
	if err != nil {
		line = []byte(strings.ReplaceAll(fmt.Sprintf("%+v", payload), "\n", " "))
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening capture file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing capture line: %w", err)
	}
	return nil
}
