package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/glebarez/sqlite"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/model"
	"github.com/krakosik/userhub/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepositories(t *testing.T) repository.Repositories {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Account{}))
	return repository.NewRepositories(db)
}

// seedUsers inserts u1 (oldest) through un (newest).
func seedUsers(t *testing.T, repos repository.Repositories, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("u%d", i)
		_, err := repos.User().Create(context.Background(), model.User{
			ID:        id,
			Username:  "user-" + id,
			Email:     id + "@example.com",
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
}

type fakeAuthClient struct {
	mu sync.Mutex

	token     *auth.Token
	verifyErr error

	updateErr error
	updates   []string
}

func (f *fakeAuthClient) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.token, nil
}

func (f *fakeAuthClient) UpdateUser(_ context.Context, uid string, _ *auth.UserToUpdate) (*auth.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, uid)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &auth.UserRecord{}, nil
}

type publishedMessage struct {
	routingKey string
	body       []byte
}

type fakeRabbitClient struct {
	mu         sync.Mutex
	published  []publishedMessage
	publishErr error
	pingErr    error
}

func (f *fakeRabbitClient) PublishMessage(_ context.Context, routingKey string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishedMessage{routingKey: routingKey, body: message})
	return nil
}

func (f *fakeRabbitClient) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeRabbitClient) Close() error {
	return nil
}

func (f *fakeRabbitClient) routingKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.published))
	for _, m := range f.published {
		keys = append(keys, m.routingKey)
	}
	return keys
}

var errTokenExpired = errors.New("id token has expired")

func fakeTokenVerifier(err error) bool {
	return errors.Is(err, errTokenExpired)
}

func adminSession() dto.Session {
	return dto.Session{
		UID:  "admin-uid",
		User: dto.User{ID: "admin-uid", Role: dto.RoleAdmin},
	}
}

func userIDs(users []dto.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}
