// Package app wires configuration, storage, clients and both servers into a
// running process and tears them down on shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/krakosik/userhub/internal/client"
	"github.com/krakosik/userhub/internal/controller"
	"github.com/krakosik/userhub/internal/database"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/procedure"
	"github.com/krakosik/userhub/internal/repository"
	"github.com/krakosik/userhub/internal/service"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// ConfigureLogging applies the configured level. Production logs are JSON so
// that the collector can index fields.
func ConfigureLogging(config dto.Config) {
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(config.LogLevel)
	if config.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

type App struct {
	config     dto.Config
	db         *gorm.DB
	clients    client.Clients
	procedures procedure.Procedures
	httpServer *http.Server
}

func NewApp(ctx context.Context, config dto.Config) (*App, error) {
	db, err := database.Open(config)
	if err != nil {
		return nil, err
	}

	if config.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}

	clients, err := client.NewClients(ctx, config)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	repositories := repository.NewRepositories(db)
	services := service.NewServices(repositories, config, clients)
	controllers := controller.NewControllers(services, config)

	procedures, err := procedure.NewProcedures(services, config)
	if err != nil {
		_ = clients.Close()
		_ = database.Close(db)
		return nil, err
	}

	return &App{
		config:     config,
		db:         db,
		clients:    clients,
		procedures: procedures,
		httpServer: &http.Server{
			Addr:              config.HTTPAddr,
			Handler:           controller.NewEcho(controllers),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// Run serves HTTP and gRPC until ctx is cancelled or either server fails.
func (a *App) Run(ctx context.Context) error {
	grpcListener, err := net.Listen("tcp", a.config.GRPCAddr)
	if err != nil {
		return fmt.Errorf("%w: grpc listen on %s: %v", dto.ErrUpstream, a.config.GRPCAddr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Infof("gRPC server listening on %s", a.config.GRPCAddr)
		if err := a.procedures.Serve(grpcListener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Infof("HTTP server listening on %s", a.config.HTTPAddr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.procedures.Health().Run(ctx, a.config.HealthInterval)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logrus.Info("Shutting down...")
	case runErr = <-errCh:
		logrus.Errorf("Server failed, shutting down: %v", runErr)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("HTTP shutdown: %v", err)
	}
	a.procedures.Stop(shutdownCtx)
	wg.Wait()

	return runErr
}

func (a *App) Close() error {
	return errors.Join(a.clients.Close(), database.Close(a.db))
}
