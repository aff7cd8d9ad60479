package service

import (
	authV4 "firebase.google.com/go/v4/auth"
	"github.com/krakosik/userhub/internal/client"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/repository"
)

type Services interface {
	User() UserService
	Auth() AuthService
	Health() HealthService
	Seed() SeedService
}

type services struct {
	userService   UserService
	authService   AuthService
	healthService HealthService
	seedService   SeedService
}

func NewServices(repositories repository.Repositories, config dto.Config, clients client.Clients) Services {
	events := newEventPublisher(clients.RabbitMQClient())
	authService := newAuthService(repositories, clients.AuthClient(), IsTokenRejected, config)
	return &services{
		userService:   newUserService(repositories, clients.AuthClient(), events),
		authService:   authService,
		healthService: newHealthService(defaultIndicators(repositories, clients, authService, config), config),
		seedService:   newSeedService(repositories),
	}
}

// NewSeedServices builds only what the seed command needs, without
// connecting to the identity provider or the broker.
func NewSeedServices(repositories repository.Repositories) SeedService {
	return newSeedService(repositories)
}

// IsTokenRejected reports whether a verification error was caused by the
// token itself rather than by the identity provider being unreachable.
func IsTokenRejected(err error) bool {
	return authV4.IsIDTokenExpired(err) || authV4.IsIDTokenInvalid(err) || authV4.IsIDTokenRevoked(err)
}

func (s services) User() UserService {
	return s.userService
}

func (s services) Auth() AuthService {
	return s.authService
}

func (s services) Health() HealthService {
	return s.healthService
}

func (s services) Seed() SeedService {
	return s.seedService
}
