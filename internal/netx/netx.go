// Package netx provides network reachability tracking and a streaming file
// download helper.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lewisnorthcott/sitesinc-offline/internal/logging"
)

// Checker answers the single question the sync engine keeps asking: can we
// reach the server right now?
type Checker interface {
	Online() bool
}

// Monitor probes the API health endpoint on a fixed interval and tracks the
// result. It starts pessimistic (offline) until the first successful probe.
type Monitor struct {
	client  *http.Client
	pingURL string
	timeout time.Duration
	log     logging.Logger

	online atomic.Bool

	mu   sync.Mutex
	subs []func(online bool)
}

func NewMonitor(client *http.Client, pingURL string, log logging.Logger) *Monitor {
	if client == nil {
		client = &http.Client{}
	}
	return &Monitor{
		client:  client,
		pingURL: pingURL,
		timeout: 3 * time.Second,
		log:     log,
	}
}

// Online reports the result of the most recent probe.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Notify registers fn to run whenever the online state flips. Callbacks run
// on the probing goroutine and must not block.
func (m *Monitor) Notify(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Probe performs one reachability check and updates the tracked state. Any
// HTTP response counts as reachable; only transport failures mean offline.
func (m *Monitor) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	online := false
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.pingURL, nil)
	if err == nil {
		resp, err := m.client.Do(req)
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			online = true
		}
	}

	if m.online.Swap(online) != online {
		m.log.Info(ctx, "connectivity changed", "online", online)
		m.mu.Lock()
		subs := make([]func(bool), len(m.subs))
		copy(subs, m.subs)
		m.mu.Unlock()
		for _, fn := range subs {
			fn(online)
		}
	}
	return online
}

// Run probes on the given interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// DownloadToFile streams a GET of url into dest, creating parent directories
// as needed. The file appears at dest only once the whole body has been
// written; partial downloads leave nothing behind. Returns the number of
// bytes written.
func DownloadToFile(ctx context.Context, client *http.Client, url, dest string) (int64, error) {
	if client == nil {
		client = &http.Client{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return 0, err
	}
	return n, nil
}
