// Command healthcheck exits 0 when the prototypehub server on this host
// answers /api/health with status "ok", and 1 otherwise. It is meant for
// container HEALTHCHECK instructions in images without a shell or curl.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	httphandler "github.com/ericfisherdev/prototypehub/internal/adapter/driving/http"
	"github.com/ericfisherdev/prototypehub/internal/config"
)

const timeout = 2 * time.Second

func main() {
	addr := normalizeAddr(os.Getenv(config.EnvListenAddr))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := checkHealth(ctx, &http.Client{Timeout: timeout}, "http://"+addr+"/api/health"); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
}

// checkHealth requests url and requires a 200 response whose body decodes
// to a HealthResponse with status "ok".
func checkHealth(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var health httphandler.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("server reports status %q", health.Status)
	}

	return nil
}

// normalizeAddr maps the server's listen address to one the healthcheck can
// dial from inside the same container: bind-all hosts become loopback, and
// an empty or malformed value falls back to config.DefaultListenAddr.
func normalizeAddr(raw string) string {
	if raw == "" {
		return config.DefaultListenAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return config.DefaultListenAddr
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
