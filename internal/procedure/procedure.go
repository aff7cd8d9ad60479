package procedure

import (
	"context"
	"fmt"
	"net"

	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/service"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Procedures interface {
	Health() Health
	Serve(listener net.Listener) error
	Stop(ctx context.Context)
}

type procedures struct {
	healthProcedure Health
	grpcServer      *grpc.Server
}

func NewProcedures(services service.Services, config dto.Config) (Procedures, error) {
	options := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(LoggingInterceptor()),
		grpc.ChainStreamInterceptor(StreamLoggingInterceptor()),
	}

	if config.GRPCTLSCert != "" {
		grpcCredentials, err := credentials.NewServerTLSFromFile(config.GRPCTLSCert, config.GRPCTLSKey)
		if err != nil {
			return nil, fmt.Errorf("%w: grpc tls: %v", dto.ErrValidation, err)
		}
		options = append(options, grpc.Creds(grpcCredentials))
	} else {
		logrus.Warn("gRPC server is running without TLS")
	}

	grpcServer := grpc.NewServer(options...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	return &procedures{
		healthProcedure: newHealthProcedure(services.Health(), healthServer),
		grpcServer:      grpcServer,
	}, nil
}

func (p *procedures) Health() Health {
	return p.healthProcedure
}

func (p *procedures) Serve(listener net.Listener) error {
	return p.grpcServer.Serve(listener)
}

// Stop drains in-flight calls and falls back to a hard stop when ctx expires.
func (p *procedures) Stop(ctx context.Context) {
	p.healthProcedure.Shutdown()

	stopped := make(chan struct{})
	go func() {
		p.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		p.grpcServer.Stop()
	}
}
