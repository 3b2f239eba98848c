// Package lifecycle sequences the teardown of the service's long-lived
// components: the HTTP server stops accepting requests first, then the
// reporter and monitor, and the snapshot store closes last so every
// in-flight mutation still has a place to persist.
package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// StopFunc tears one component down. It must respect ctx cancellation.
type StopFunc func(ctx context.Context) error

type registration struct {
	name string
	stop StopFunc
}

// Manager collects stop callbacks during startup and runs them in reverse
// registration order on shutdown, bounded by a single timeout.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu            sync.Mutex
	registrations []registration
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a named stop callback. Components register in startup
// order; Shutdown unwinds them back to front.
func (m *Manager) Register(name string, stop StopFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations = append(m.registrations, registration{name: name, stop: stop})
}

// Shutdown runs every registered callback in reverse order. A failing
// component is logged and skipped; the rest still get their turn, and the
// joined error is returned at the end.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var result error
	for i := len(m.registrations) - 1; i >= 0; i-- {
		reg := m.registrations[i]
		if err := reg.stop(ctx); err != nil {
			m.logger.Error("component failed to stop", zap.String("component", reg.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", reg.name))
	}
	return result
}

// Listen waits for SIGTERM or SIGINT in the background and fires the
// provided cancel function once, letting main unwind through Shutdown.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
