package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

type User struct {
	ID               string `gorm:"primaryKey;index:idx_users_created_at_id,priority:2"`
	Username         string `gorm:"uniqueIndex;not null"`
	DisplayUsername  *string
	Email            string `gorm:"uniqueIndex;not null"`
	IsEmailVerified  bool   `gorm:"not null;default:false"`
	Role             Role   `gorm:"not null;default:User"`
	FirstName        *string
	LastName         *string
	Image            *string
	Bio              *string
	TwoFactorEnabled bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"index:idx_users_created_at_id,priority:1"`
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u User) IsDeleted() bool {
	return u.DeletedAt.Valid
}
