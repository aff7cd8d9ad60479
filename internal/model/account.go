package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProviderCredential = "credential"
	ProviderFirebase   = "firebase"
)

// Account links a user to a sign-in method. Credential accounts carry a bcrypt
// hash; firebase accounts carry the firebase uid in AccountID.
type Account struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"index;not null"`
	AccountID  string `gorm:"index;uniqueIndex:idx_accounts_provider_account,priority:2;not null"`
	ProviderID string `gorm:"uniqueIndex:idx_accounts_provider_account,priority:1;not null;default:credential"`
	Password   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.ProviderID == "" {
		a.ProviderID = ProviderCredential
	}
	return nil
}
