package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"timeful/internal/config"
	"timeful/internal/ics"
	appLog "timeful/internal/log"
	"timeful/internal/tracing"
)

const (
	version = "0.1.0"

	serviceName = "timeful"

	shutdownTimeout = 10 * time.Second
	fetchTimeout    = 30 * time.Second
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	if level, ok := appLog.ParseLevel(conf.LogLevel); ok {
		appLog.SetLevel(level)
	} else {
		appLog.Warn("unknown log level; keeping default", "log_level", conf.LogLevel)
	}

	appLog.Info("timeful starting", "version", version)

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	week, err := conf.Week()
	if err != nil {
		appLog.Error("invalid canonical week", err)
		os.Exit(1)
	}

	sources := make([]ics.Source, 0, len(conf.Calendars))
	for _, cal := range conf.Calendars {
		sources = append(sources, ics.Source{
			ID:   cal.ID,
			Name: cal.Name,
			URL:  cal.URL,
		})
	}

	calendars, err := ics.NewCalendarSource(
		&ics.ParamsCalendarSource{
			Fetcher: ics.NewFetcher(
				conf.CacheDir,
				&http.Client{
					Timeout:   fetchTimeout,
					Transport: otelhttp.NewTransport(http.DefaultTransport),
				},
			),
			Sources:                sources,
			MaxOccurrencesPerEvent: conf.MaxOccurrencesPerEvent,
		},
	)
	if err != nil {
		appLog.Error("failed to build calendar source", err)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone.Value,
		"refresh", conf.Refresh,
		"cache_dir", conf.CacheDir,
		"calendar_count", len(sources),
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx,
		tracing.Config{
			Enabled:     conf.Tracing.Enabled,
			ServiceName: serviceName,
			Endpoint:    conf.Tracing.Endpoint,
			SampleRatio: conf.Tracing.SampleRatio,
		},
	)
	if err != nil {
		appLog.Error("tracing setup failed", err, "endpoint", conf.Tracing.Endpoint)
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := shutdownTracing(shutdownCtx); err != nil {
			appLog.Error("tracing shutdown failed", err)
		}
	}()

	if flags.once {
		if err := calendars.Warm(ctx); err != nil {
			appLog.Error("calendar warm-up failed", err)
			os.Exit(1)
		}

		appLog.Info("timeful exiting")
		return
	}

	if err := run(ctx, conf, calendars, week); err != nil {
		appLog.Error("timeful stopped with error", err)
		os.Exit(1)
	}

	appLog.Info("timeful exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", config.DefaultPath, "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Warm the calendar cache once and exit")

	flag.Parse()

	return cfg
}
