package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/quantora_dash/internal/api"
	"github.com/dgnsrekt/quantora_dash/internal/apiclient"
	"github.com/dgnsrekt/quantora_dash/internal/config"
	"github.com/dgnsrekt/quantora_dash/internal/demo"
	"github.com/dgnsrekt/quantora_dash/internal/live"
	"github.com/dgnsrekt/quantora_dash/internal/metrics"
	"github.com/dgnsrekt/quantora_dash/internal/netutil"
	"github.com/dgnsrekt/quantora_dash/internal/notify"
	"github.com/dgnsrekt/quantora_dash/internal/poller"
	"github.com/dgnsrekt/quantora_dash/internal/relay"
	"github.com/dgnsrekt/quantora_dash/internal/timers"
	"github.com/dgnsrekt/quantora_dash/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load dashboard config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("dashboard config loaded",
		"api_base_url", cfg.APIBaseURL,
		"ws_url", cfg.WSURL,
		"health_interval_ms", cfg.HealthIntervalMS,
		"max_reconnect_attempts", cfg.MaxReconnectAttempts,
		"fetch_timeout_ms", cfg.FetchTimeoutMS,
		"live_enabled", cfg.LiveEnabled,
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"surfaces_file", cfg.SurfacesFile,
		"notify", cfg.NotifyURL != "",
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	surfaces, err := config.LoadSurfaces(cfg.SurfacesFile)
	if err != nil {
		slog.Error("failed to load surfaces", "path", cfg.SurfacesFile, "error", err)
		os.Exit(1)
	}

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates(), cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to bind gateway", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := timers.Real{}
	m := metrics.New(time.Now())
	httpClient := &http.Client{}
	broker := relay.NewBroker()
	rl := relay.New(broker)

	monitor := apiclient.NewMonitor(apiclient.MonitorConfig{
		BaseURL:              cfg.APIBaseURL,
		HealthPath:           cfg.HealthPath,
		Timeout:              cfg.HealthTimeout(),
		Interval:             cfg.HealthInterval(),
		BackoffStep:          cfg.BackoffStep(),
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	}, httpClient, sched, m)
	rl.AttachMonitor(monitor)

	client := apiclient.NewClient(apiclient.ClientConfig{
		BaseURL:      cfg.APIBaseURL,
		FetchTimeout: cfg.FetchTimeout(),
	}, monitor, demo.NewRegistry(), httpClient, m)

	channel := live.NewChannel(live.Config{
		URL:            cfg.WSURL,
		ReconnectDelay: cfg.LiveReconnectDelay(),
	}, sched, m)
	rl.AttachLive(channel)
	channel.OnConnectionEstablished(func(c types.ConnectionEstablished) {
		slog.Info("live stream greeted",
			"client_id", c.ClientID,
			"patterns_live", c.SystemStatus.PatternsLive,
			"ai_engines_active", c.SystemStatus.AIEnginesActive,
		)
	})
	channel.OnPatternDiscovered(func(p types.PatternDiscovered) {
		slog.Info("pattern discovered",
			"id", p.Pattern.ID,
			"name", p.Pattern.Name,
			"level", p.Pattern.Level,
			"creator", p.Pattern.CreatorAI,
		)
	})

	if cfg.NotifyURL != "" {
		n := &notify.Notifier{Endpoint: cfg.NotifyURL, Client: httpClient, MinLevel: cfg.NotifyMinLevel}
		channel.OnPatternDiscovered(func(p types.PatternDiscovered) {
			go func() {
				if _, err := n.PatternDiscovered(ctx, p); err != nil {
					slog.Warn("pattern notification failed", "id", p.Pattern.ID, "error", err)
				}
			}()
		})
		monitor.OnChange(func(s apiclient.ConnectionStatus) {
			go func() {
				if err := n.BackendChanged(ctx, s); err != nil {
					slog.Warn("backend notification failed", "error", err)
				}
			}()
		})
	}

	surfacePoller := poller.New(client, surfaces, sched)
	rl.AttachPoller(surfacePoller)

	monitor.Start(ctx)
	surfacePoller.Start(ctx)
	if cfg.LiveEnabled {
		go channel.Start(ctx)
	}

	h := api.NewServer(api.Deps{
		Client:   client,
		State:    monitor,
		Live:     channel,
		Surfaces: surfacePoller,
		Broker:   broker,
		Metrics:  m,
	})
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	addr := ln.Addr().String()
	go func() {
		slog.Info("dashboard gateway listening", "addr", addr, "docs", "http://"+addr+"/docs")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("dashboard gateway failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cancel()
	monitor.Stop()
	surfacePoller.Stop()
	channel.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("dashboard shutdown failed", "error", err)
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: parseLevel(level)})
	slog.SetDefault(slog.New(h))
	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
