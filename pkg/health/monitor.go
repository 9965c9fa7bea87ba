package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Status represents health check status
type Status int

const (
	StatusUnknown Status = iota
	StatusHealthy
	StatusUnhealthy
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// CheckResult represents the result of a health check
type CheckResult struct {
	Name         string
	Critical     bool
	Status       Status
	Latency      time.Duration
	LastCheck    time.Time
	LastError    error
	CheckCount   int
	FailureCount int
}

// Checker interface for health checks
type Checker interface {
	Check(ctx context.Context) CheckResult
}

// PingFunc adapts a ping function to a dependency probe
type PingFunc func(ctx context.Context) error

// PingChecker reports healthy when Ping succeeds. A nil Ping means the
// dependency is switched off.
type PingChecker struct {
	Ping PingFunc
}

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{LastCheck: start}

	if c.Ping == nil {
		result.Status = StatusDisabled
		return result
	}

	err := c.Ping(ctx)
	result.Latency = time.Since(start)
	if err != nil {
		result.Status = StatusUnhealthy
		result.LastError = err
		return result
	}

	result.Status = StatusHealthy
	return result
}

type registration struct {
	checker  Checker
	critical bool
}

// Monitor probes the service's dependencies and mirrors the overall state
// into a gRPC health server when one is attached.
type Monitor struct {
	mu       sync.RWMutex
	checkers map[string]registration
	results  map[string]*CheckResult
	interval time.Duration
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool

	server  *health.Server
	service string
}

// NewMonitor creates a new health monitor
func NewMonitor(interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		checkers: make(map[string]registration),
		results:  make(map[string]*CheckResult),
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register adds a named checker. A failing critical checker makes the whole
// service unhealthy.
func (m *Monitor) Register(name string, checker Checker, critical bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkers[name] = registration{checker: checker, critical: critical}

	m.logger.Info("Registered health checker",
		zap.String("name", name),
		zap.Bool("critical", critical),
	)
}

// AttachServer publishes overall status to srv under service and under the
// empty service name.
func (m *Monitor) AttachServer(srv *health.Server, service string) {
	m.mu.Lock()
	m.server = srv
	m.service = service
	m.mu.Unlock()

	m.publish()
}

// Start starts the health monitor
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	go m.runChecks()
}

// Stop stops the health monitor and marks the service as not serving
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	server := m.server
	m.mu.Unlock()

	m.cancel()
	if server != nil {
		server.Shutdown()
	}
}

func (m *Monitor) runChecks() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckAll(m.ctx)

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.CheckAll(m.ctx)
		}
	}
}

// CheckAll runs every checker now and returns the fresh results
func (m *Monitor) CheckAll(ctx context.Context) map[string]CheckResult {
	m.mu.RLock()
	checkers := make(map[string]registration, len(m.checkers))
	for name, reg := range m.checkers {
		checkers[name] = reg
	}
	m.mu.RUnlock()

	fresh := make(map[string]CheckResult, len(checkers))
	for name, reg := range checkers {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		result := reg.checker.Check(checkCtx)
		cancel()

		result.Name = name
		result.Critical = reg.critical

		m.mu.Lock()
		if existing, ok := m.results[name]; ok {
			result.CheckCount = existing.CheckCount + 1
			result.FailureCount = existing.FailureCount
		} else {
			result.CheckCount = 1
		}
		if result.Status == StatusUnhealthy {
			result.FailureCount++
		}
		m.results[name] = &result
		m.mu.Unlock()

		fresh[name] = result

		if result.Status == StatusUnhealthy {
			m.logger.Warn("Health check failed",
				zap.String("name", name),
				zap.Bool("critical", reg.critical),
				zap.Duration("latency", result.Latency),
				zap.Error(result.LastError),
			)
		}
	}

	m.publish()
	return fresh
}

// Healthy reports whether no critical checker is failing
func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, result := range m.results {
		if result.Critical && result.Status == StatusUnhealthy {
			return false
		}
	}
	return true
}

func (m *Monitor) publish() {
	m.mu.RLock()
	server, service := m.server, m.service
	m.mu.RUnlock()

	if server == nil {
		return
	}

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !m.Healthy() {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	server.SetServingStatus("", status)
	if service != "" {
		server.SetServingStatus(service, status)
	}
}
