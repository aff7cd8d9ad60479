package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/model"
	"github.com/krakosik/userhub/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const seedPasswordCost = 10

type SeedUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      model.Role
}

var DefaultSeedUsers = []SeedUser{
	{
		Username:  "admin",
		Email:     "admin@nestjs-boilerplate.com",
		Password:  "admin123!@#",
		FirstName: "Admin",
		LastName:  "User",
		Role:      model.RoleAdmin,
	},
	{
		Username:  "testuser",
		Email:     "user@nestjs-boilerplate.com",
		Password:  "user123!@#",
		FirstName: "Test",
		LastName:  "User",
		Role:      model.RoleUser,
	},
}

type SeedService interface {
	// Seed inserts the given users with credential accounts. Users whose
	// email already exists, deleted or not, are left alone.
	Seed(ctx context.Context, users []SeedUser) (int, error)
}

type seedService struct {
	repositories repository.Repositories
}

func newSeedService(repositories repository.Repositories) SeedService {
	return &seedService{repositories: repositories}
}

func (s *seedService) Seed(ctx context.Context, users []SeedUser) (int, error) {
	created := 0
	for _, seed := range users {
		inserted, err := s.seedOne(ctx, seed)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

func (s *seedService) seedOne(ctx context.Context, seed SeedUser) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), seedPasswordCost)
	if err != nil {
		return false, fmt.Errorf("%w: hash password: %v", dto.ErrInternalFailure, err)
	}
	password := string(hash)

	inserted := false
	err = s.repositories.Transaction(ctx, func(tx repository.Repositories) error {
		_, err := tx.User().GetByEmailUnscoped(ctx, seed.Email)
		if err == nil {
			logrus.Infof("Seed user %s already exists, skipping", seed.Email)
			return nil
		}
		if !errors.Is(err, dto.ErrNotFound) {
			return err
		}

		user, err := tx.User().Create(ctx, model.User{
			Username:        seed.Username,
			DisplayUsername: optional(seed.Username),
			Email:           seed.Email,
			IsEmailVerified: true,
			FirstName:       optional(seed.FirstName),
			LastName:        optional(seed.LastName),
			Role:            seed.Role,
		})
		if err != nil {
			return err
		}

		_, err = tx.Account().Create(ctx, model.Account{
			UserID:     user.ID,
			AccountID:  user.ID,
			ProviderID: model.ProviderCredential,
			Password:   &password,
		})
		if err != nil {
			return err
		}

		inserted = true
		logrus.Infof("Seeded %s user %s", seed.Role, seed.Email)
		return nil
	})
	return inserted, err
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
