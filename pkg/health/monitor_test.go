package health

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func TestPingChecker(t *testing.T) {
	tests := []struct {
		name string
		ping PingFunc
		want Status
	}{
		{"healthy", func(context.Context) error { return nil }, StatusHealthy},
		{"unhealthy", func(context.Context) error { return errors.New("down") }, StatusUnhealthy},
		{"disabled", nil, StatusDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&PingChecker{Ping: tt.ping}).Check(context.Background())
			if got.Status != tt.want {
				t.Errorf("Check() status = %v, want %v", got.Status, tt.want)
			}
		})
	}
}

func TestMonitor_CriticalFailures(t *testing.T) {
	m := NewMonitor(time.Minute, zap.NewNop())

	dbUp := true
	m.Register("database", &PingChecker{Ping: func(context.Context) error {
		if dbUp {
			return nil
		}
		return errors.New("db down")
	}}, true)
	m.Register("redis", &PingChecker{Ping: func(context.Context) error { return errors.New("redis down") }}, false)

	results := m.CheckAll(context.Background())
	assert.Equal(t, StatusHealthy, results["database"].Status)
	assert.Equal(t, StatusUnhealthy, results["redis"].Status)
	assert.True(t, m.Healthy(), "non-critical failures keep the service healthy")

	dbUp = false
	results = m.CheckAll(context.Background())
	assert.False(t, m.Healthy())
	assert.Equal(t, 2, results["database"].CheckCount)
	assert.Equal(t, 1, results["database"].FailureCount)
	assert.Equal(t, 2, results["redis"].FailureCount)
}

func TestGRPCServer_TracksMonitor(t *testing.T) {
	m := NewMonitor(time.Minute, zap.NewNop())
	dbUp := true
	m.Register("database", &PingChecker{Ping: func(context.Context) error {
		if dbUp {
			return nil
		}
		return errors.New("db down")
	}}, true)

	srv := NewGRPCServer(m, "auth-microservice")
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := grpc_health_v1.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m.CheckAll(ctx)
	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: "auth-microservice"})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	dbUp = false
	m.CheckAll(ctx)
	resp, err = client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}
