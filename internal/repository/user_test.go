package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepositories(t *testing.T) (Repositories, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to ":memory:" would otherwise get its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Account{}))
	return NewRepositories(db), db
}

func insertUser(t *testing.T, repos Repositories, id string, createdAt time.Time) model.User {
	t.Helper()
	u, err := repos.User().Create(context.Background(), model.User{
		ID:        id,
		Username:  "user-" + id,
		Email:     id + "@example.com",
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	return u
}

func ids(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

// seedSequential inserts n users, u1 oldest ... un newest.
func seedSequential(t *testing.T, repos Repositories, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		insertUser(t, repos, fmt.Sprintf("u%d", i), baseTime.Add(time.Duration(i)*time.Minute))
	}
}

func TestListOffset_ReturnsRequestedSlice(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedSequential(t, repos, 5)
	ctx := context.Background()

	cases := []struct {
		page, limit int
		want        []string
	}{
		{1, 2, []string{"u5", "u4"}},
		{2, 2, []string{"u3", "u2"}},
		{3, 2, []string{"u1"}},
		{4, 2, []string{}},
		{1, 10, []string{"u5", "u4", "u3", "u2", "u1"}},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("page=%d,limit=%d", tc.page, tc.limit), func(t *testing.T) {
			users, total, err := repos.User().ListOffset(ctx, OffsetListOptions{Page: tc.page, Limit: tc.limit})
			require.NoError(t, err)
			assert.Equal(t, int64(5), total)
			assert.Equal(t, tc.want, ids(users))
		})
	}
}

func TestListOffset_ExcludesSoftDeleted(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedSequential(t, repos, 4)
	ctx := context.Background()

	_, err := repos.User().SoftDelete(ctx, "u3")
	require.NoError(t, err)

	users, total, err := repos.User().ListOffset(ctx, OffsetListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"u4", "u2", "u1"}, ids(users))
}

func TestListAfter_TieBreakOnDuplicateTimestamps(t *testing.T) {
	repos, _ := newTestRepositories(t)
	t1 := baseTime
	t2 := baseTime.Add(time.Hour)
	insertUser(t, repos, "b", t2)
	insertUser(t, repos, "a", t2)
	insertUser(t, repos, "c", t1)
	ctx := context.Background()

	all, err := repos.User().ListAfter(ctx, CursorListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(all))

	after, err := repos.User().ListAfter(ctx, CursorListOptions{AfterID: "b", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(after))

	afterA, err := repos.User().ListAfter(ctx, CursorListOptions{AfterID: "a", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(afterA))
}

func TestListAfter_OnlyRowsStrictlyAfterAnchor(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedSequential(t, repos, 6)
	ctx := context.Background()

	users, err := repos.User().ListAfter(ctx, CursorListOptions{AfterID: "u4", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u2", "u1"}, ids(users))

	limited, err := repos.User().ListAfter(ctx, CursorListOptions{AfterID: "u4", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u2"}, ids(limited))
}

func TestListAfter_UnknownAnchorDegradesToFirstPage(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedSequential(t, repos, 3)

	users, err := repos.User().ListAfter(context.Background(), CursorListOptions{AfterID: "missing", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u2"}, ids(users))
}

func TestListAfter_DeletedAnchorStillPositions(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedSequential(t, repos, 4)
	ctx := context.Background()

	_, err := repos.User().SoftDelete(ctx, "u3")
	require.NoError(t, err)

	users, err := repos.User().ListAfter(ctx, CursorListOptions{AfterID: "u3", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1"}, ids(users))
}

func TestListAfter_ExcludesSoftDeleted(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedSequential(t, repos, 4)
	ctx := context.Background()

	_, err := repos.User().SoftDelete(ctx, "u2")
	require.NoError(t, err)

	users, err := repos.User().ListAfter(ctx, CursorListOptions{AfterID: "u4", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u1"}, ids(users))
}

func TestListQueries_AreRepeatable(t *testing.T) {
	repos, _ := newTestRepositories(t)
	insertUser(t, repos, "x", baseTime)
	insertUser(t, repos, "y", baseTime)
	insertUser(t, repos, "z", baseTime)
	ctx := context.Background()

	first, err := repos.User().ListAfter(ctx, CursorListOptions{AfterID: "z", Limit: 5})
	require.NoError(t, err)
	second, err := repos.User().ListAfter(ctx, CursorListOptions{AfterID: "z", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, []string{"y", "x"}, ids(first))

	p1, _, err := repos.User().ListOffset(ctx, OffsetListOptions{Page: 1, Limit: 2})
	require.NoError(t, err)
	p2, _, err := repos.User().ListOffset(ctx, OffsetListOptions{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, ids(p1), ids(p2))
}

func TestSoftDelete_IsIdempotent(t *testing.T) {
	repos, db := newTestRepositories(t)
	insertUser(t, repos, "u1", baseTime)
	ctx := context.Background()

	deleted, err := repos.User().SoftDelete(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, deleted)

	var first model.User
	require.NoError(t, db.Unscoped().Where("id = ?", "u1").Take(&first).Error)
	require.True(t, first.DeletedAt.Valid)

	deleted, err = repos.User().SoftDelete(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, deleted)

	var second model.User
	require.NoError(t, db.Unscoped().Where("id = ?", "u1").Take(&second).Error)
	assert.True(t, first.DeletedAt.Time.Equal(second.DeletedAt.Time))

	_, err = repos.User().GetByID(ctx, "u1")
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestSoftDelete_UnknownUser(t *testing.T) {
	repos, _ := newTestRepositories(t)

	_, err := repos.User().SoftDelete(context.Background(), "ghost")
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestRestore(t *testing.T) {
	repos, _ := newTestRepositories(t)
	insertUser(t, repos, "u1", baseTime)
	ctx := context.Background()

	_, err := repos.User().SoftDelete(ctx, "u1")
	require.NoError(t, err)
	restored, err := repos.User().Restore(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, restored)

	got, err := repos.User().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, got.IsDeleted())

	_, err = repos.User().Restore(ctx, "ghost")
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestRestore_ActiveUserIsNoop(t *testing.T) {
	repos, _ := newTestRepositories(t)
	insertUser(t, repos, "u1", baseTime)

	restored, err := repos.User().Restore(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestUpdateProfile(t *testing.T) {
	repos, _ := newTestRepositories(t)
	insertUser(t, repos, "u1", baseTime)
	ctx := context.Background()

	first := "Ada"
	bio := "mathematician"
	require.NoError(t, repos.User().UpdateProfile(ctx, "u1", ProfileUpdate{FirstName: &first, Bio: &bio}))

	got, err := repos.User().GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Ada", *got.FirstName)
	assert.Equal(t, "mathematician", *got.Bio)
	assert.Nil(t, got.LastName)

	require.NoError(t, repos.User().UpdateProfile(ctx, "u1", ProfileUpdate{}))
	assert.ErrorIs(t, repos.User().UpdateProfile(ctx, "ghost", ProfileUpdate{FirstName: &first}), dto.ErrNotFound)
}

func TestUpdateProfile_DuplicateUsername(t *testing.T) {
	repos, _ := newTestRepositories(t)
	insertUser(t, repos, "u1", baseTime)
	insertUser(t, repos, "u2", baseTime.Add(time.Minute))

	taken := "user-u1"
	err := repos.User().UpdateProfile(context.Background(), "u2", ProfileUpdate{Username: &taken})
	assert.Error(t, err)
}

func TestGetByEmailUnscoped_FindsDeleted(t *testing.T) {
	repos, _ := newTestRepositories(t)
	insertUser(t, repos, "u1", baseTime)
	ctx := context.Background()

	_, err := repos.User().SoftDelete(ctx, "u1")
	require.NoError(t, err)

	got, err := repos.User().GetByEmailUnscoped(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	repos, _ := newTestRepositories(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.Transaction(ctx, func(tx Repositories) error {
		u, err := tx.User().Create(ctx, model.User{Username: "tmp", Email: "tmp@example.com"})
		if err != nil {
			return err
		}
		if _, err := tx.Account().Create(ctx, model.Account{UserID: u.ID, AccountID: "tmp"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repos.User().GetByEmailUnscoped(ctx, "tmp@example.com")
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestTransaction_Commits(t *testing.T) {
	repos, _ := newTestRepositories(t)
	ctx := context.Background()

	var userID string
	err := repos.Transaction(ctx, func(tx Repositories) error {
		u, err := tx.User().Create(ctx, model.User{Username: "kept", Email: "kept@example.com"})
		if err != nil {
			return err
		}
		userID = u.ID
		_, err = tx.Account().Create(ctx, model.Account{UserID: u.ID, AccountID: "kept"})
		return err
	})
	require.NoError(t, err)

	account, err := repos.Account().GetByProvider(ctx, model.ProviderCredential, "kept")
	require.NoError(t, err)
	assert.Equal(t, userID, account.UserID)
	assert.Equal(t, model.ProviderCredential, account.ProviderID)
	assert.Equal(t, model.RoleUser, mustGet(t, repos, userID).Role)
}

func TestAccount_GetByProvider(t *testing.T) {
	repos, _ := newTestRepositories(t)
	insertUser(t, repos, "u1", baseTime)
	ctx := context.Background()

	_, err := repos.Account().Create(ctx, model.Account{UserID: "u1", AccountID: "fb-1", ProviderID: model.ProviderFirebase})
	require.NoError(t, err)

	got, err := repos.Account().GetByProvider(ctx, model.ProviderFirebase, "fb-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = repos.Account().GetByProvider(ctx, model.ProviderCredential, "fb-1")
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestAccount_ProviderAccountIsUnique(t *testing.T) {
	repos, _ := newTestRepositories(t)
	insertUser(t, repos, "u1", baseTime)
	insertUser(t, repos, "u2", baseTime.Add(time.Minute))
	ctx := context.Background()

	_, err := repos.Account().Create(ctx, model.Account{UserID: "u1", AccountID: "fb-1", ProviderID: model.ProviderFirebase})
	require.NoError(t, err)

	_, err = repos.Account().Create(ctx, model.Account{UserID: "u2", AccountID: "fb-1", ProviderID: model.ProviderFirebase})
	assert.ErrorIs(t, err, dto.ErrConflict)
}

func TestPing(t *testing.T) {
	repos, _ := newTestRepositories(t)
	assert.NoError(t, repos.Ping(context.Background()))
}

func mustGet(t *testing.T, repos Repositories, id string) model.User {
	t.Helper()
	u, err := repos.User().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
