package service

import (
	"context"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/krakosik/userhub/internal/client"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/model"
	"github.com/krakosik/userhub/internal/repository"
	"github.com/sirupsen/logrus"
)

type UserService interface {
	ListUsers(ctx context.Context, query dto.OffsetQuery) (dto.OffsetPage[dto.User], error)
	ListUsersCursor(ctx context.Context, query dto.CursorQuery) (dto.CursorPage[dto.User], error)
	GetUser(ctx context.Context, id string) (dto.User, error)
	DeleteUser(ctx context.Context, session dto.Session, id string) error
	RestoreUser(ctx context.Context, session dto.Session, id string) (dto.User, error)
	UpdateProfile(ctx context.Context, session dto.Session, request dto.UpdateProfileRequest) (dto.User, error)
	Me(session dto.Session) dto.User
}

type userService struct {
	repositories   repository.Repositories
	userRepository repository.UserRepository
	authClient     client.AuthClient
	events         EventPublisher
}

func newUserService(repositories repository.Repositories, authClient client.AuthClient, events EventPublisher) UserService {
	return &userService{
		repositories:   repositories,
		userRepository: repositories.User(),
		authClient:     authClient,
		events:         events,
	}
}

func validateLimit(limit int) error {
	if limit < 1 || limit > dto.MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", dto.ErrValidation, dto.MaxLimit)
	}
	return nil
}

func (u *userService) ListUsers(ctx context.Context, query dto.OffsetQuery) (dto.OffsetPage[dto.User], error) {
	if query.Page < 1 || query.Page > dto.MaxPage {
		return dto.OffsetPage[dto.User]{}, fmt.Errorf("%w: page must be between 1 and %d", dto.ErrValidation, dto.MaxPage)
	}
	if err := validateLimit(query.Limit); err != nil {
		return dto.OffsetPage[dto.User]{}, err
	}

	users, total, err := u.userRepository.ListOffset(ctx, repository.OffsetListOptions{
		Page:  query.Page,
		Limit: query.Limit,
	})
	if err != nil {
		return dto.OffsetPage[dto.User]{}, err
	}

	return dto.OffsetPage[dto.User]{
		Data: toUserDTOs(users),
		Pagination: dto.OffsetPagination{
			PageNumber: query.Page,
			PageSize:   query.Limit,
			TotalCount: total,
			HasNext:    int64(query.Page)*int64(query.Limit) < total,
		},
	}, nil
}

// ListUsersCursor fetches one row beyond the limit to learn whether another
// page exists without a second query.
func (u *userService) ListUsersCursor(ctx context.Context, query dto.CursorQuery) (dto.CursorPage[dto.User], error) {
	if query.BeforeCursor != "" {
		if query.AfterCursor != "" {
			return dto.CursorPage[dto.User]{}, fmt.Errorf("%w: afterCursor and beforeCursor are mutually exclusive", dto.ErrValidation)
		}
		return dto.CursorPage[dto.User]{}, fmt.Errorf("%w: backward pagination with beforeCursor is not supported", dto.ErrValidation)
	}
	if err := validateLimit(query.Limit); err != nil {
		return dto.CursorPage[dto.User]{}, err
	}

	users, err := u.userRepository.ListAfter(ctx, repository.CursorListOptions{
		AfterID: query.AfterCursor,
		Limit:   query.Limit + 1,
	})
	if err != nil {
		return dto.CursorPage[dto.User]{}, err
	}

	hasMore := len(users) > query.Limit
	if hasMore {
		users = users[:query.Limit]
	}

	pagination := dto.CursorPagination{
		Limit:   query.Limit,
		Count:   len(users),
		HasMore: hasMore,
	}
	if len(users) > 0 {
		start, end := users[0].ID, users[len(users)-1].ID
		pagination.StartCursor = &start
		pagination.EndCursor = &end
	}

	return dto.CursorPage[dto.User]{
		Data:       toUserDTOs(users),
		Pagination: pagination,
	}, nil
}

func (u *userService) GetUser(ctx context.Context, id string) (dto.User, error) {
	user, err := u.userRepository.GetByID(ctx, id)
	if err != nil {
		return dto.User{}, err
	}
	return toUserDTO(user), nil
}

func (u *userService) DeleteUser(ctx context.Context, session dto.Session, id string) error {
	deleted, err := u.userRepository.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		logrus.Debugf("User %s already deleted", id)
		return nil
	}

	logrus.Infof("User %s deleted user %s", session.User.ID, id)
	u.events.Publish(ctx, dto.UserEventDeleted, id, session.User.ID)
	return nil
}

func (u *userService) RestoreUser(ctx context.Context, session dto.Session, id string) (dto.User, error) {
	restored, err := u.userRepository.Restore(ctx, id)
	if err != nil {
		return dto.User{}, err
	}

	user, err := u.userRepository.GetByID(ctx, id)
	if err != nil {
		return dto.User{}, err
	}
	if !restored {
		logrus.Debugf("User %s is not deleted", id)
		return toUserDTO(user), nil
	}

	logrus.Infof("User %s restored user %s", session.User.ID, id)
	u.events.Publish(ctx, dto.UserEventRestored, id, session.User.ID)
	return toUserDTO(user), nil
}

// UpdateProfile persists every provided field and pushes a changed username
// or image to the identity provider inside the same transaction, so a
// provider failure rolls the local write back and a local failure never
// reaches the provider.
func (u *userService) UpdateProfile(ctx context.Context, session dto.Session, request dto.UpdateProfileRequest) (dto.User, error) {
	current := session.User

	params := &auth.UserToUpdate{}
	providerChanged := false
	if request.Username != nil && *request.Username != current.Username {
		params = params.DisplayName(*request.Username)
		providerChanged = true
	}
	if request.Image != nil && strings.TrimSpace(*request.Image) != "" &&
		(current.Image == nil || *current.Image != *request.Image) {
		params = params.PhotoURL(*request.Image)
		providerChanged = true
	}

	var user model.User
	err := u.repositories.Transaction(ctx, func(tx repository.Repositories) error {
		err := tx.User().UpdateProfile(ctx, current.ID, repository.ProfileUpdate{
			Username:        request.Username,
			DisplayUsername: request.Username,
			Image:           request.Image,
			FirstName:       request.FirstName,
			LastName:        request.LastName,
			Bio:             request.Bio,
		})
		if err != nil {
			return err
		}

		user, err = tx.User().GetByID(ctx, current.ID)
		if err != nil {
			return err
		}

		if providerChanged {
			uid := session.UID
			if uid == "" {
				uid = current.ID
			}
			if _, err := u.authClient.UpdateUser(ctx, uid, params); err != nil {
				return fmt.Errorf("%w: identity provider update: %v", dto.ErrUpstream, err)
			}
		}
		return nil
	})
	if err != nil {
		return dto.User{}, err
	}

	u.events.Publish(ctx, dto.UserEventUpdated, current.ID, current.ID)
	return toUserDTO(user), nil
}

func (u *userService) Me(session dto.Session) dto.User {
	return session.User
}
