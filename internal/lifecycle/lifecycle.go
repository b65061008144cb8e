// Package lifecycle runs the simulator's long-lived components and tears
// them down in reverse order on completion, failure, or a termination signal.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a component run under a Lifecycle.
type Service interface {
	// Start runs the service until it finishes or ctx is cancelled.
	Start(ctx context.Context) error
	// Stop releases the service's resources. It is called once, after ctx
	// has been cancelled.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
// StopFn may be nil.
type FuncService struct {
	StartFn func(ctx context.Context) error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start(ctx context.Context) error { return f.StartFn(ctx) }

// Stop calls the underlying stop function, if any.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started in order and stopped in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

type exit struct {
	name string
	err  error
}

// New creates a Lifecycle manager.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Lifecycle {
	if logger == nil {
		panic("lifecycle.New: logger must not be nil")
	}
	return &Lifecycle{logger: logger}
}

// Add registers a named service. Services are started in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	if name == "" || svc == nil {
		panic("lifecycle.Add: name and service are required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts all services and blocks until the first one returns, ctx is
// cancelled, or SIGINT/SIGTERM arrives. It then cancels the rest, stops
// every service in reverse order, and waits for all Start calls to return.
//
// Postcondition: All services are stopped when this method returns.
// Postcondition: the error is the first non-cancellation failure, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan exit, len(services))
	for _, ns := range services {
		l.logger.Info("starting service", zap.String("service", ns.name))
		go func() {
			exits <- exit{name: ns.name, err: ns.service.Start(ctx)}
		}()
	}
	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	var firstErr error
	record := func(e exit) {
		if e.err == nil || errors.Is(e.err, context.Canceled) {
			l.logger.Info("service finished", zap.String("service", e.name))
			return
		}
		l.logger.Error("service failed", zap.String("service", e.name), zap.Error(e.err))
		if firstErr == nil {
			firstErr = fmt.Errorf("service %s: %w", e.name, e.err)
		}
	}

	pending := len(services)
	if pending > 0 {
		select {
		case e := <-exits:
			pending--
			record(e)
		case <-ctx.Done():
			l.logger.Info("context cancelled, shutting down", zap.Error(context.Cause(ctx)))
		}
	}
	cancel()
	l.shutdown(services)
	for ; pending > 0; pending-- {
		record(<-exits)
	}

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return firstErr
}

func (l *Lifecycle) shutdown(services []namedService) {
	shutdownStart := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped", zap.Duration("shutdown_elapsed", time.Since(shutdownStart)))
}
