package dto

import "time"

type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	DisplayUsername  *string   `json:"displayUsername"`
	Email            string    `json:"email"`
	IsEmailVerified  bool      `json:"isEmailVerified"`
	Role             string    `json:"role"`
	FirstName        *string   `json:"firstName"`
	LastName         *string   `json:"lastName"`
	Image            *string   `json:"image"`
	Bio              *string   `json:"bio"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UpdateProfileRequest uses pointers so that an absent field is left untouched.
type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=32,alphanumunicode"`
	Image     *string `json:"image" validate:"omitempty,url"`
	FirstName *string `json:"firstName" validate:"omitempty,max=64"`
	LastName  *string `json:"lastName" validate:"omitempty,max=64"`
	Bio       *string `json:"bio" validate:"omitempty,max=512"`
}

type StatusResponse struct {
	StatusCode int `json:"statusCode"`
}

type UserEventType string

const (
	UserEventDeleted  UserEventType = "user.deleted"
	UserEventRestored UserEventType = "user.restored"
	UserEventUpdated  UserEventType = "user.updated"
)

type UserEvent struct {
	Type       UserEventType `json:"type"`
	UserID     string        `json:"userId"`
	ActorID    string        `json:"actorId,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}
