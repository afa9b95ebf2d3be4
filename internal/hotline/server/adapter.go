// Package server wires the wire codec, session registry, and handler
// dispatch table into a running TCP listener: the accept loop, the
// per-connection reader/writer tasks, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rhxd/rhxd/internal/hotline/broadcast"
	"github.com/rhxd/rhxd/internal/hotline/handlers"
	"github.com/rhxd/rhxd/internal/hotline/session"
	"github.com/rhxd/rhxd/internal/logger"
	"github.com/rhxd/rhxd/pkg/accounts"
	"github.com/rhxd/rhxd/pkg/metrics"
)

// Config is the subset of the ambient configuration the listener needs.
type Config struct {
	ListenAddr      string
	ListenPort      int
	MaxConnections  int
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Handlers handlers.Config
}

// Adapter owns the Hotline TCP listener and the process-wide session
// registry and broadcast hub it feeds. Each accepted connection runs as an
// independent reader/writer pair under the Adapter's wait group, so Serve
// can wait for every in-flight session to drain before returning.
type Adapter struct {
	config   Config
	accounts accounts.Store
	metrics  metrics.HotlineMetrics

	registry *session.Manager
	hub      *broadcast.Hub

	listener   net.Listener
	listenerMu sync.RWMutex

	activeConns  sync.WaitGroup
	connCount    atomic.Int32
	connSem      chan struct{}

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// New constructs an Adapter. The returned Adapter accepts no connections
// until Serve is called.
func New(cfg Config, store accounts.Store, hmetrics metrics.HotlineMetrics) *Adapter {
	registry := session.NewManager(cfg.MaxConnections)
	hub := broadcast.NewHub(registry, metricsAdapter{hmetrics})
	registry.AttachHub(hub)

	var connSem chan struct{}
	if cfg.MaxConnections > 0 {
		connSem = make(chan struct{}, cfg.MaxConnections)
	}

	return &Adapter{
		config:   cfg,
		accounts: store,
		metrics:  hmetrics,
		registry: registry,
		hub:      hub,
		connSem:  connSem,
		shutdown: make(chan struct{}),
	}
}

// Serve binds the listener and accepts connections until ctx is cancelled,
// at which point it closes the listener and waits (up to ShutdownTimeout)
// for active sessions to finish before returning.
func (a *Adapter) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.config.ListenAddr, a.config.ListenPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("hotline: listen %s: %w", addr, err)
	}

	a.listenerMu.Lock()
	a.listener = ln
	a.listenerMu.Unlock()

	logger.Info("hotline server listening", "addr", addr)

	go func() {
		<-ctx.Done()
		a.initiateShutdown()
	}()

	for {
		if a.connSem != nil {
			select {
			case a.connSem <- struct{}{}:
			case <-a.shutdown:
				return a.gracefulShutdown()
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if a.connSem != nil {
				<-a.connSem
			}
			select {
			case <-a.shutdown:
				return a.gracefulShutdown()
			default:
				logger.Warn("hotline: accept error", "error", err)
				continue
			}
		}

		a.activeConns.Add(1)
		a.connCount.Add(1)
		if a.metrics != nil {
			a.metrics.SetActiveSessions(a.connCount.Load())
		}

		c := newConnection(a, conn)
		go func() {
			defer a.releaseConn()
			c.serve(ctx)
		}()
	}
}

func (a *Adapter) releaseConn() {
	a.activeConns.Done()
	a.connCount.Add(-1)
	if a.connSem != nil {
		<-a.connSem
	}
	if a.metrics != nil {
		a.metrics.SetActiveSessions(a.connCount.Load())
	}
}

func (a *Adapter) initiateShutdown() {
	a.shutdownOnce.Do(func() {
		close(a.shutdown)
		a.listenerMu.RLock()
		ln := a.listener
		a.listenerMu.RUnlock()
		if ln != nil {
			_ = ln.Close()
		}
	})
}

func (a *Adapter) gracefulShutdown() error {
	done := make(chan struct{})
	go func() {
		a.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("hotline server shutdown complete")
		return nil
	case <-time.After(a.config.ShutdownTimeout):
		remaining := a.connCount.Load()
		logger.Warn("hotline server shutdown timeout exceeded", "active", remaining)
		return fmt.Errorf("hotline: shutdown timeout with %d sessions still active", remaining)
	}
}

// Stop initiates graceful shutdown; it is safe to call concurrently with
// Serve and more than once.
func (a *Adapter) Stop() {
	a.initiateShutdown()
}

// Registry exposes the session registry, chiefly for rhxdctl-style
// introspection and tests.
func (a *Adapter) Registry() *session.Manager {
	return a.registry
}

// metricsAdapter adapts the optional metrics.HotlineMetrics collaborator to
// broadcast.Metrics so the broadcast package stays free of a dependency on
// the ambient metrics stack.
type metricsAdapter struct {
	m metrics.HotlineMetrics
}

func (a metricsAdapter) EventPublished(kind string) {
	if a.m != nil {
		a.m.RecordEventPublished(kind)
	}
}

func (a metricsAdapter) EventDropped(kind string) {
	if a.m != nil {
		a.m.RecordEventDropped(kind)
	}
}
