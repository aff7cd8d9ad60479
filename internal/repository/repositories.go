package repository

import (
	"context"
	"fmt"

	"github.com/krakosik/userhub/internal/dto"
	"gorm.io/gorm"
)

type Repositories interface {
	User() UserRepository
	Account() AccountRepository

	// Ping performs one round trip to the database.
	Ping(ctx context.Context) error
	// Transaction runs fn against repositories bound to a single transaction.
	Transaction(ctx context.Context, fn func(Repositories) error) error
}

type repositories struct {
	db                *gorm.DB
	userRepository    UserRepository
	accountRepository AccountRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return &repositories{
		db:                db,
		userRepository:    newUserRepository(db),
		accountRepository: newAccountRepository(db),
	}
}

func (r repositories) User() UserRepository {
	return r.userRepository
}

func (r repositories) Account() AccountRepository {
	return r.accountRepository
}

func (r repositories) Ping(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("%w: database ping: %v", dto.ErrUpstream, err)
	}
	return nil
}

func (r repositories) Transaction(ctx context.Context, fn func(Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
