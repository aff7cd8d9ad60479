package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/krakosik/userhub/internal/app"
	"github.com/krakosik/userhub/internal/database"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/repository"
	"github.com/krakosik/userhub/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	cliApp := &cli.App{
		Name:    "userhub",
		Usage:   "user directory service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP and gRPC servers",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "skip-migrations", Usage: "do not apply pending migrations on start"},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations and exit",
				Action: migrate,
			},
			{
				Name:   "seed",
				Usage:  "insert the default admin and user accounts",
				Action: seed,
			},
		},
		DefaultCommand: "serve",
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func loadConfig() (dto.Config, error) {
	config, err := dto.LoadConfig()
	if err != nil {
		return dto.Config{}, err
	}
	config.Version = version
	app.ConfigureLogging(config)
	return config, nil
}

func serve(c *cli.Context) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Bool("skip-migrations") {
		config.AutoMigrate = false
	}

	application, err := app.NewApp(c.Context, config)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logrus.Errorf("Error closing resources: %v", err)
		}
	}()

	logrus.Infof("Starting %s %s in %s mode", config.AppName, version, config.Env)
	return application.Run(c.Context)
}

func migrate(c *cli.Context) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(config)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(c.Context, db); err != nil {
		return err
	}
	logrus.Info("Migrations applied")
	return nil
}

func seed(c *cli.Context) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(config)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(c.Context, db); err != nil {
		return err
	}

	created, err := service.NewSeedServices(repository.NewRepositories(db)).Seed(c.Context, service.DefaultSeedUsers)
	if err != nil {
		return err
	}
	logrus.Infof("Seeded %d users", created)
	return nil
}
