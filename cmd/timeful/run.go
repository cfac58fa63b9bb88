package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"timeful/internal/config"
	"timeful/internal/dow"
	"timeful/internal/ics"
	appLog "timeful/internal/log"
	"timeful/internal/refresh"
	"timeful/internal/web"
)

// run serves the HTTP API and refreshes the calendar cache until ctx is done.
func run(ctx context.Context, conf *config.Config, calendars *ics.CalendarSource, week *dow.CanonicalWeek) error {
	scheduler, err := refresh.New(conf.Refresh, calendars.Warm)
	if err != nil {
		return err
	}

	go scheduler.RunNow()
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              conf.Listen,
		Handler:           web.NewServer(conf, week, calendars).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errServe := make(chan error, 1)

	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errServe <- server.ListenAndServe()
	}()

	select {
	case err := <-errServe:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err

	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
