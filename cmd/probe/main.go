package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dgnsrekt/quantora_dash/internal/apiclient"
	"github.com/dgnsrekt/quantora_dash/internal/config"
	"github.com/dgnsrekt/quantora_dash/internal/demo"
	"github.com/dgnsrekt/quantora_dash/internal/metrics"
	"github.com/dgnsrekt/quantora_dash/internal/timers"
)

type report struct {
	Connection apiclient.ConnectionState     `json:"connection"`
	Endpoints  map[string]apiclient.Response `json:"endpoints"`
	Metrics    map[string]any                `json:"metrics"`
}

func main() {
	endpoint := flag.String("endpoint", "", "fetch a single endpoint instead of every known endpoint")
	demoOnly := flag.Bool("demo", false, "skip the health probe and print demo data")
	pretty := flag.Bool("pretty", true, "indent JSON output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	surfaces, err := config.LoadSurfaces(cfg.SurfacesFile)
	if err != nil {
		slog.Error("failed to load surfaces", "path", cfg.SurfacesFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m := metrics.New(time.Now())
	httpClient := &http.Client{}
	monitor := apiclient.NewMonitor(apiclient.MonitorConfig{
		BaseURL:              cfg.APIBaseURL,
		HealthPath:           cfg.HealthPath,
		Timeout:              cfg.HealthTimeout(),
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	}, httpClient, timers.Real{}, m)
	defer monitor.Stop()
	if !*demoOnly {
		monitor.CheckHealth(ctx)
	}

	registry := demo.NewRegistry()
	client := apiclient.NewClient(apiclient.ClientConfig{
		BaseURL:      cfg.APIBaseURL,
		FetchTimeout: cfg.FetchTimeout(),
	}, monitor, registry, httpClient, m)

	targets := knownEndpoints(registry, surfaces)
	if *endpoint != "" {
		targets = []string{*endpoint}
	}
	out := report{Endpoints: make(map[string]apiclient.Response, len(targets))}
	for _, e := range targets {
		out.Endpoints[e] = client.Get(ctx, e)
	}
	out.Connection = monitor.State()
	out.Metrics = m.Snapshot()

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, "encode report:", err)
		os.Exit(1)
	}
}

// knownEndpoints lists every demo endpoint plus any configured surface
// endpoint the registry does not cover, without duplicates.
func knownEndpoints(registry *demo.Registry, surfaces []config.Surface) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range registry.Endpoints() {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	for _, s := range surfaces {
		if !seen[s.Endpoint] {
			seen[s.Endpoint] = true
			out = append(out, s.Endpoint)
		}
	}
	return out
}
