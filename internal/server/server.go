package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sirosfoundation/simple-api-demo/internal/apperror"
	"github.com/sirosfoundation/simple-api-demo/pkg/config"
	"github.com/sirosfoundation/simple-api-demo/pkg/middleware"
)

// Role identifies one of the two listeners
type Role string

const (
	// RoleMain is the plain-text server bound to PORT
	RoleMain Role = "main"
	// RoleApp is the JSON application server bound to PORT_APP
	RoleApp Role = "app"
)

// Roles lists the roles in startup order
var Roles = []Role{RoleMain, RoleApp}

// State is the lifecycle state of a single listener
type State int32

const (
	StateNotStarted State = iota
	StateBinding
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateBinding:
		return "binding"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// RouteProvider contributes routes to the server of its role
type RouteProvider interface {
	// Name returns the provider name for logging
	Name() string

	// Role selects the server the routes are registered on
	Role() Role

	// RegisterRoutes adds the provider's routes to the router
	RegisterRoutes(router *gin.Engine)
}

type instance struct {
	role  Role
	addr  string
	state atomic.Int32

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func (i *instance) setState(s State) {
	i.state.Store(int32(s))
}

// Manager owns the lifecycle of the main and application servers
type Manager struct {
	cfg    config.ServerConfig
	logger *zap.Logger

	providers []RouteProvider
	instances map[Role]*instance

	started atomic.Bool
	ready   chan struct{}
}

// NewManager creates a new server manager. The configuration is copied and
// never modified.
func NewManager(cfg config.ServerConfig, logger *zap.Logger, providers ...RouteProvider) *Manager {
	m := &Manager{
		cfg:       cfg,
		logger:    logger,
		providers: providers,
		instances: make(map[Role]*instance, len(Roles)),
		ready:     make(chan struct{}),
	}
	m.instances[RoleMain] = &instance{role: RoleMain, addr: cfg.MainAddress()}
	m.instances[RoleApp] = &instance{role: RoleApp, addr: cfg.AppAddress()}
	return m
}

// Ready is closed once both listeners are bound and serving
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// State returns the lifecycle state of the listener for role
func (m *Manager) State(role Role) State {
	inst, ok := m.instances[role]
	if !ok {
		return StateNotStarted
	}
	return State(inst.state.Load())
}

// Addr returns the bound address for role, or nil if it is not bound
func (m *Manager) Addr(role Role) net.Addr {
	inst, ok := m.instances[role]
	if !ok {
		return nil
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.listener == nil {
		return nil
	}
	return inst.listener.Addr()
}

// Run binds both listeners, serves them, and blocks until both have
// terminated. It returns nil when ctx is cancelled and both servers shut down,
// and a server error if either listener fails to bind or fails while serving.
// Run may only be called once.
func (m *Manager) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return apperror.Internal("server manager already started")
	}

	m.logger.Info("Starting servers", zap.Stringer("config", m.cfg))

	for _, role := range Roles {
		inst := m.instances[role]
		inst.server = &http.Server{
			Handler:      m.buildRouter(role),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
	}

	if err := m.bindAll(ctx); err != nil {
		return err
	}

	close(m.ready)
	return m.serveAll(ctx)
}

// bindAll acquires both listen sockets concurrently. If either fails, any
// socket that was acquired is closed again before returning.
func (m *Manager) bindAll(ctx context.Context) error {
	var lc net.ListenConfig
	errs := make([]error, len(Roles))

	var g errgroup.Group
	for idx, role := range Roles {
		inst := m.instances[role]
		g.Go(func() error {
			inst.setState(StateBinding)
			ln, err := lc.Listen(ctx, "tcp", inst.addr)
			if err != nil {
				inst.setState(StateTerminated)
				errs[idx] = apperror.Server(err, "%s server failed to bind %s", inst.role, inst.addr)
				return errs[idx]
			}
			inst.mu.Lock()
			inst.listener = ln
			inst.mu.Unlock()
			return nil
		})
	}

	if g.Wait() == nil {
		for _, role := range Roles {
			inst := m.instances[role]
			inst.setState(StateRunning)
			m.logger.Info("Server listening",
				zap.String("role", string(role)),
				zap.Stringer("address", inst.listener.Addr()))
		}
		return nil
	}

	for _, role := range Roles {
		inst := m.instances[role]
		inst.mu.Lock()
		if inst.listener != nil {
			_ = inst.listener.Close()
			inst.listener = nil
		}
		inst.mu.Unlock()
		inst.setState(StateTerminated)
	}

	err := errors.Join(errs...)
	m.logger.Error("Failed to bind servers", zap.Error(err))
	return err
}

// serveAll serves both bound listeners until ctx is cancelled or one of them
// fails, then shuts the remaining server down within the configured grace period.
func (m *Manager) serveAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, role := range Roles {
		inst := m.instances[role]
		g.Go(func() error {
			err := inst.server.Serve(inst.listener)
			inst.setState(StateTerminated)
			if err == nil || errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			m.logger.Error("Server error", zap.String("role", string(inst.role)), zap.Error(err))
			return apperror.Server(err, "%s server on %s terminated", inst.role, inst.addr)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		m.shutdown()
		return nil
	})

	err := g.Wait()
	if err == nil {
		m.logger.Info("Both servers shut down gracefully")
	}
	return err
}

func (m *Manager) shutdown() {
	m.logger.Info("Shutting down servers", zap.Duration("timeout", m.cfg.ShutdownTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ShutdownTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, role := range Roles {
		inst := m.instances[role]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := inst.server.Shutdown(ctx); err != nil {
				m.logger.Warn("Server forced to shutdown",
					zap.String("role", string(inst.role)), zap.Error(err))
				_ = inst.server.Close()
			}
		}()
	}
	wg.Wait()
}

// buildRouter creates the router for role with the common middleware and
// the routes of every provider registered for that role
func (m *Manager) buildRouter(role Role) *gin.Engine {
	router := gin.New()
	router.Use(apperror.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(m.logger.Named(string(role))))
	router.Use(middleware.CORS())
	if m.cfg.RateLimit.Enabled() {
		router.Use(middleware.RateLimit(middleware.NewRateLimiter(m.cfg.RateLimit, m.logger.Named(string(role)))))
	}

	for _, p := range m.providers {
		if p.Role() != role {
			continue
		}
		m.logger.Debug("Registering routes",
			zap.String("provider", p.Name()),
			zap.String("role", string(role)))
		p.RegisterRoutes(router)
	}
	return router
}
