package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/health"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"go.uber.org/zap"
)

type HealthHandler struct {
	monitor *health.Monitor
	now     func() time.Time
}

type HealthCheckResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Status    string `json:"status"`
	Critical  bool   `json:"critical"`
	LatencyMs int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}

func NewHealthHandler(monitor *health.Monitor) *HealthHandler {
	return &HealthHandler{
		monitor: monitor,
		now:     time.Now,
	}
}

// Liveness answers the fixed body load balancers and the frontend poll
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  constants.MsgServiceStatusOK,
		"service": constants.ServiceName,
	})
}

// HealthCheck probes every registered dependency. Only critical checks can
// turn the response into a 503.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := HealthCheckResponse{
		Status:    "healthy",
		Version:   constants.AppVersion,
		Timestamp: h.now().UTC(),
		Checks:    make(map[string]HealthCheck),
	}

	for name, result := range h.monitor.CheckAll(c.Request.Context()) {
		check := HealthCheck{
			Status:    result.Status.String(),
			Critical:  result.Critical,
			LatencyMs: result.Latency.Milliseconds(),
		}
		if result.LastError != nil {
			check.Message = result.LastError.Error()
		}
		response.Checks[name] = check

		if result.Critical && result.Status == health.StatusUnhealthy {
			response.Status = "unhealthy"
		}
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	logger.GetLogger().Debug("Health check performed",
		zap.String("overall_status", response.Status),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, response)
}
