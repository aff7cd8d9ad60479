package client

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// AuthClient is the subset of the Firebase auth client the services use.
type AuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
}

type TokenExpireVerifier func(err error) bool
