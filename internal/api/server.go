package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/orchestree/orchestree/pkg/store"
)

// Server timeouts.
const (
	ShutdownTimeout = 10 * time.Second
	CleanupInterval = 10 * time.Minute
)

// NewServer wraps h in an http.Server with conservative limits. Write
// timeout leaves room for a full layout run.
func NewServer(logger *log.Logger, h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		MaxHeaderBytes:    1 << 18,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Hour,
		ErrorLog:          logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}
}

// Serve runs s on l until ctx is canceled, then shuts down gracefully.
func Serve(ctx context.Context, s *http.Server, l net.Listener) error {
	s.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(l)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// RunCleanup removes expired diagrams from st every interval until ctx is
// canceled.
func RunCleanup(ctx context.Context, st store.Store, interval time.Duration, logger *log.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := st.Cleanup(ctx)
			if err != nil {
				logger.Warn("diagram cleanup failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Debug("removed expired diagrams", "count", n)
			}
		}
	}
}
