package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/krakosik/userhub/internal/client"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/model"
	"github.com/krakosik/userhub/internal/repository"
	"github.com/sirupsen/logrus"
)

type AuthService interface {
	ValidateToken(ctx context.Context, token string, headers http.Header) (dto.Session, error)
	BasicAuthHeaders() http.Header
}

type authService struct {
	repositories        repository.Repositories
	authClient          client.AuthClient
	tokenExpireVerifier client.TokenExpireVerifier
	config              dto.Config
}

func newAuthService(repositories repository.Repositories, authClient client.AuthClient, verifier client.TokenExpireVerifier, config dto.Config) AuthService {
	return &authService{
		repositories:        repositories,
		authClient:          authClient,
		tokenExpireVerifier: verifier,
		config:              config,
	}
}

func (a *authService) ValidateToken(ctx context.Context, token string, headers http.Header) (dto.Session, error) {
	if strings.TrimSpace(token) == "" {
		return dto.Session{}, fmt.Errorf("%w: missing bearer token", dto.ErrNotAuthorized)
	}

	response, err := a.authClient.VerifyIDToken(ctx, token)
	if err != nil {
		if a.tokenExpireVerifier(err) {
			return dto.Session{}, fmt.Errorf("%w: %v", dto.ErrNotAuthorized, err)
		}
		return dto.Session{}, fmt.Errorf("%w: %v", dto.ErrUpstream, err)
	}

	userEmail, ok := response.Claims["email"].(string)
	if !ok || userEmail == "" {
		return dto.Session{}, fmt.Errorf("%w: email claim missing or not a string", dto.ErrNotAuthorized)
	}
	emailVerified, _ := response.Claims["email_verified"].(bool)

	user, err := a.findOrProvision(ctx, response.UID, userEmail, emailVerified)
	if err != nil {
		return dto.Session{}, err
	}

	if user.IsDeleted() {
		return dto.Session{}, fmt.Errorf("%w: user %s is deleted", dto.ErrNotAuthorized, user.ID)
	}

	if user.Email != userEmail || user.IsEmailVerified != emailVerified {
		user.Email = userEmail
		user.IsEmailVerified = emailVerified

		user, err = a.repositories.User().Save(ctx, user)
		if err != nil {
			return dto.Session{}, err
		}
	}

	return dto.Session{
		User:    toUserDTO(user),
		UID:     response.UID,
		Claims:  response.Claims,
		Headers: headers,
	}, nil
}

// findOrProvision resolves the firebase uid to a user, including soft-deleted
// rows. On first sign-in it links an existing user with the same verified
// email or creates a new one. A concurrent first sign-in that loses the
// insert race reads the winner's row.
func (a *authService) findOrProvision(ctx context.Context, uid, email string, emailVerified bool) (model.User, error) {
	user, err := a.resolve(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, dto.ErrNotFound) {
		return model.User{}, err
	}

	user, err = a.linkOrCreate(ctx, uid, email, emailVerified)
	if errors.Is(err, dto.ErrConflict) {
		user, err = a.resolve(ctx, uid)
	}
	if errors.Is(err, dto.ErrNotFound) {
		return model.User{}, fmt.Errorf("%w: no user for firebase uid %s", dto.ErrNotAuthorized, uid)
	}
	return user, err
}

// resolve follows the firebase account link. Users provisioned before links
// existed are keyed by the uid itself.
func (a *authService) resolve(ctx context.Context, uid string) (model.User, error) {
	account, err := a.repositories.Account().GetByProvider(ctx, model.ProviderFirebase, uid)
	if err == nil {
		return a.repositories.User().GetByIDUnscoped(ctx, account.UserID)
	}
	if !errors.Is(err, dto.ErrNotFound) {
		return model.User{}, err
	}
	return a.repositories.User().GetByIDUnscoped(ctx, uid)
}

func (a *authService) linkOrCreate(ctx context.Context, uid, email string, emailVerified bool) (model.User, error) {
	var user model.User
	created := false
	err := a.repositories.Transaction(ctx, func(tx repository.Repositories) error {
		existing, err := tx.User().GetByEmailUnscoped(ctx, email)
		switch {
		case err == nil:
			if !emailVerified {
				return fmt.Errorf("%w: email %s is taken and not verified by the provider", dto.ErrNotAuthorized, email)
			}
			user = existing
		case errors.Is(err, dto.ErrNotFound):
			user, err = tx.User().Create(ctx, model.User{
				ID:              uid,
				Username:        email,
				Email:           email,
				IsEmailVerified: emailVerified,
				Role:            model.RoleUser,
			})
			if err != nil {
				return err
			}
			created = true
		default:
			return err
		}

		_, err = tx.Account().Create(ctx, model.Account{
			UserID:     user.ID,
			AccountID:  uid,
			ProviderID: model.ProviderFirebase,
		})
		return err
	})
	if err != nil {
		return model.User{}, err
	}

	if created {
		logrus.Infof("Provisioned user %s on first sign-in", uid)
	} else {
		logrus.Infof("Linked firebase uid %s to user %s", uid, user.ID)
	}
	return user, nil
}

func (a *authService) BasicAuthHeaders() http.Header {
	credentials := a.config.DocsUsername + ":" + a.config.DocsPassword
	headers := http.Header{}
	headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(credentials)))
	return headers
}
