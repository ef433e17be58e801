// Package tips fetches a short motivational line for the dashboard. The
// fetch is best-effort: any failure falls back to a built-in line, and
// nothing here ever touches group state.
package tips

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

// fallbacks are served whenever the remote fetch fails or is disabled.
var fallbacks = []string{
	"Small, steady contributions add up.",
	"Every round paid is a promise kept.",
	"Saving together beats saving alone.",
	"The pot comes around to everyone — stay the course.",
}

// Fetcher retrieves tips from a remote endpoint with a static fallback.
type Fetcher struct {
	url    string
	client *http.Client
}

// New creates a Fetcher for the given URL. An empty URL disables remote
// fetching entirely.
func New(url string) *Fetcher {
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: 3 * time.Second},
	}
}

// adviceslip.com response shape.
type slipResponse struct {
	Slip struct {
		Advice string `json:"advice"`
	} `json:"slip"`
}

// Tip returns a tip string. It never fails: on any error it degrades to a
// random built-in fallback.
func (f *Fetcher) Tip(ctx context.Context) string {
	if f.url == "" {
		return fallback()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		slog.Warn("Tip request build failed", "error", err)
		return fallback()
	}
	resp, err := f.client.Do(req)
	if err != nil {
		slog.Warn("Tip fetch failed", "error", err)
		return fallback()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Tip fetch returned non-OK", "status", resp.StatusCode)
		return fallback()
	}

	var slip slipResponse
	if err := json.NewDecoder(resp.Body).Decode(&slip); err != nil || slip.Slip.Advice == "" {
		slog.Warn("Tip response unusable", "error", err)
		return fallback()
	}
	return slip.Slip.Advice
}

func fallback() string {
	return fallbacks[rand.Intn(len(fallbacks))]
}
