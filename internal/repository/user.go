package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/model"
	"gorm.io/gorm"
)

// OffsetListOptions selects rows [(Page-1)*Limit, Page*Limit).
type OffsetListOptions struct {
	Page  int
	Limit int
}

// CursorListOptions selects at most Limit rows strictly after the row AfterID
// in (created_at DESC, id DESC) order.
type CursorListOptions struct {
	AfterID string
	Limit   int
}

// ProfileUpdate lists the columns a profile edit may touch. Nil fields are skipped.
type ProfileUpdate struct {
	Username        *string
	DisplayUsername *string
	Image           *string
	FirstName       *string
	LastName        *string
	Bio             *string
}

type UserRepository interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByIDUnscoped(ctx context.Context, id string) (model.User, error)
	GetByEmailUnscoped(ctx context.Context, email string) (model.User, error)
	Save(ctx context.Context, user model.User) (model.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error
	ListOffset(ctx context.Context, opts OffsetListOptions) ([]model.User, int64, error)
	ListAfter(ctx context.Context, opts CursorListOptions) ([]model.User, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
	Restore(ctx context.Context, id string) (bool, error)
}

type user struct {
	db *gorm.DB
}

func newUserRepository(db *gorm.DB) UserRepository {
	return &user{
		db: db,
	}
}

func (u *user) Create(ctx context.Context, user model.User) (model.User, error) {
	result := u.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		return model.User{}, translate(result.Error)
	}

	return user, nil
}

func (u *user) GetByID(ctx context.Context, id string) (model.User, error) {
	var user model.User
	result := u.db.WithContext(ctx).Where("id = ?", id).Take(&user)
	if result.Error != nil {
		return model.User{}, translate(result.Error)
	}

	return user, nil
}

func (u *user) GetByIDUnscoped(ctx context.Context, id string) (model.User, error) {
	var user model.User
	result := u.db.WithContext(ctx).Unscoped().Where("id = ?", id).Take(&user)
	if result.Error != nil {
		return model.User{}, translate(result.Error)
	}

	return user, nil
}

func (u *user) GetByEmailUnscoped(ctx context.Context, email string) (model.User, error) {
	var user model.User
	result := u.db.WithContext(ctx).Unscoped().Where("email = ?", email).Take(&user)
	if result.Error != nil {
		return model.User{}, translate(result.Error)
	}

	return user, nil
}

func (u *user) Save(ctx context.Context, user model.User) (model.User, error) {
	result := u.db.WithContext(ctx).Save(&user)
	if result.Error != nil {
		return model.User{}, translate(result.Error)
	}

	return user, nil
}

func (u *user) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error {
	columns := map[string]interface{}{}
	set := func(column string, value *string) {
		if value != nil {
			columns[column] = *value
		}
	}
	set("username", update.Username)
	set("display_username", update.DisplayUsername)
	set("image", update.Image)
	set("first_name", update.FirstName)
	set("last_name", update.LastName)
	set("bio", update.Bio)

	if len(columns) == 0 {
		return nil
	}

	result := u.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", dto.ErrNotFound, id)
	}

	return nil
}

// ListOffset runs the count and the page query independently; under
// concurrent writes the count may be off by the rows written in between.
func (u *user) ListOffset(ctx context.Context, opts OffsetListOptions) ([]model.User, int64, error) {
	var total int64
	result := u.db.WithContext(ctx).Model(&model.User{}).Count(&total)
	if result.Error != nil {
		return nil, 0, translate(result.Error)
	}

	var users []model.User
	result = u.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&users)
	if result.Error != nil {
		return nil, 0, translate(result.Error)
	}

	return users, total, nil
}

func (u *user) ListAfter(ctx context.Context, opts CursorListOptions) ([]model.User, error) {
	query := u.db.WithContext(ctx).Model(&model.User{})

	if opts.AfterID != "" {
		// The anchor is resolved without the soft-delete filter so that a
		// client can keep paging after the row it holds was deleted.
		var anchor model.User
		result := u.db.WithContext(ctx).Unscoped().
			Select("id", "created_at").
			Where("id = ?", opts.AfterID).
			Take(&anchor)
		switch {
		case result.Error == nil:
			// created_at is not unique; id breaks ties so the order is total.
			query = query.Where(
				"(created_at < ? OR (created_at = ? AND id < ?))",
				anchor.CreatedAt, anchor.CreatedAt, anchor.ID,
			)
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			// unknown anchor degrades to the first page
		default:
			return nil, translate(result.Error)
		}
	}

	var users []model.User
	result := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(opts.Limit).
		Find(&users)
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return users, nil
}

// SoftDelete marks the row deleted. It reports false without writing when
// the row was already deleted.
func (u *user) SoftDelete(ctx context.Context, id string) (bool, error) {
	existing, err := u.GetByIDUnscoped(ctx, id)
	if err != nil {
		return false, err
	}
	if existing.IsDeleted() {
		return false, nil
	}

	result := u.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if result.Error != nil {
		return false, translate(result.Error)
	}

	return result.RowsAffected > 0, nil
}

// Restore clears the deletion mark. It reports false without writing when
// the row is not deleted.
func (u *user) Restore(ctx context.Context, id string) (bool, error) {
	existing, err := u.GetByIDUnscoped(ctx, id)
	if err != nil {
		return false, err
	}
	if !existing.IsDeleted() {
		return false, nil
	}

	result := u.db.WithContext(ctx).Unscoped().
		Model(&model.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if result.Error != nil {
		return false, translate(result.Error)
	}

	return result.RowsAffected > 0, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", dto.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", dto.ErrConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", dto.ErrUpstream, err)
	default:
		return fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}
}
