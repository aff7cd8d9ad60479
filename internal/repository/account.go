package repository

import (
	"context"

	"github.com/krakosik/userhub/internal/model"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(ctx context.Context, account model.Account) (model.Account, error)
	// GetByProvider finds the account a provider knows as accountID.
	GetByProvider(ctx context.Context, providerID, accountID string) (model.Account, error)
}

type account struct {
	db *gorm.DB
}

func newAccountRepository(db *gorm.DB) AccountRepository {
	return &account{
		db: db,
	}
}

func (a *account) Create(ctx context.Context, account model.Account) (model.Account, error) {
	result := a.db.WithContext(ctx).Create(&account)
	if result.Error != nil {
		return model.Account{}, translate(result.Error)
	}

	return account, nil
}

func (a *account) GetByProvider(ctx context.Context, providerID, accountID string) (model.Account, error) {
	var account model.Account
	result := a.db.WithContext(ctx).
		Where("provider_id = ? AND account_id = ?", providerID, accountID).
		Take(&account)
	if result.Error != nil {
		return model.Account{}, translate(result.Error)
	}

	return account, nil
}
