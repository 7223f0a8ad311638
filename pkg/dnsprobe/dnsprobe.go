// Package dnsprobe determines a client's DNS egress location by querying
// Cloudflare's "whoami" trace service, first over DNS (TXT
// whoami.cloudflare @1.1.1.1) and falling back to Cloudflare's HTTP trace
// endpoints if the DNS path is unavailable.
package dnsprobe

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v5"
	"github.com/miekg/dns"
)

// Result is the canonical DNS egress record: both uppercase short codes.
// A missing field is the empty string.
type Result struct {
	Loc  string `json:"loc"`
	Colo string `json:"colo"`
}

const (
	cloudflareDNSServer = "1.1.1.1:53"
	whoamiQuery         = "whoami.cloudflare."
)

var httpFallbackURLs = []string{
	"https://1.1.1.1/cdn-cgi/trace",
	"https://www.cloudflare.com/cdn-cgi/trace",
}

// Probe resolves the DNS egress location, trying the DNS TXT path first
// and then each HTTP fallback URL in order. If every path fails, Result is
// the zero value (both fields empty).
func Probe(ctx context.Context) Result {
	if res, err := probeDNS(ctx); err == nil {
		return res
	}

	var result Result
	_, _ = backoff.Retry(ctx, func() (Result, error) {
		for _, url := range httpFallbackURLs {
			res, err := probeHTTP(ctx, url)
			if err == nil {
				result = res
				return res, nil
			}
		}
		return Result{}, fmt.Errorf("all cloudflare trace endpoints failed")
	}, backoff.WithMaxTries(1))

	return result
}

// probeDNS issues a single TXT query for whoami.cloudflare against
// 1.1.1.1 and parses the loc/colo tokens out of the response.
func probeDNS(_ context.Context) (Result, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(whoamiQuery, dns.TypeTXT)
	msg.RecursionDesired = true

	client := new(dns.Client)
	client.Timeout = 0 // use the default miekg/dns client timeout

	resp, _, err := client.Exchange(msg, cloudflareDNSServer)
	if err != nil {
		return Result{}, fmt.Errorf("querying whoami.cloudflare TXT: %w", err)
	}

	var body string
	for _, ans := range resp.Answer {
		if txt, ok := ans.(*dns.TXT); ok {
			for _, s := range txt.Txt {
				body += s + "\n"
			}
		}
	}
	if body == "" {
		return Result{}, fmt.Errorf("empty whoami.cloudflare TXT response")
	}

	return Parse(body), nil
}

func probeHTTP(ctx context.Context, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("querying %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s response: %w", url, err)
	}

	return Parse(string(body)), nil
}
