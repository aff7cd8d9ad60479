package procedure

import (
	"context"
	"time"

	"github.com/krakosik/userhub/internal/service"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Health mirrors the HTTP health check onto grpc.health.v1. The empty service
// name reports the aggregate; each indicator is reported under its own name.
type Health interface {
	Refresh(ctx context.Context)
	Run(ctx context.Context, interval time.Duration)
	Shutdown()
}

type healthProcedure struct {
	healthService service.HealthService
	server        *health.Server
}

func newHealthProcedure(healthService service.HealthService, server *health.Server) Health {
	return &healthProcedure{
		healthService: healthService,
		server:        server,
	}
}

func servingStatus(up bool) healthpb.HealthCheckResponse_ServingStatus {
	if up {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

func (h *healthProcedure) Refresh(ctx context.Context) {
	result := h.healthService.Check(ctx)

	h.server.SetServingStatus("", servingStatus(result.IsHealthy()))
	for name := range result.Info {
		h.server.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	for name, indicator := range result.Error {
		logrus.WithField("indicator", name).Debugf("gRPC health not serving: %s", indicator.Message)
		h.server.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

// Run refreshes immediately and then on every tick until ctx is done.
func (h *healthProcedure) Run(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

func (h *healthProcedure) Shutdown() {
	h.server.Shutdown()
}
