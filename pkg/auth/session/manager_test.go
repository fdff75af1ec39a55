package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{
		store: store,
		keyer: store,
		ttl:   time.Hour,
	}
}

func TestManagerGenerateAndRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	owner := Owner{UserID: uuid.New(), Email: "ada@example.com"}

	ctx := context.Background()
	accessID := "access-123"
	token, err := manager.Generate(ctx, accessID, owner)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	stored := store.data[store.AccessSessionKey(accessID)]
	if stored == "" || strings.Contains(stored, token) {
		t.Fatalf("expected hashed token record, got %q", stored)
	}

	if _, _, _, err := manager.Rotate(ctx, accessID, "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	newAccessID, newToken, gotOwner, err := manager.Rotate(ctx, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if gotOwner != owner {
		t.Fatalf("expected owner %+v, got %+v", owner, gotOwner)
	}
	if _, exists := store.data[store.AccessSessionKey(accessID)]; exists {
		t.Fatalf("old access key left behind")
	}
	if newToken == token {
		t.Fatalf("expected a fresh refresh token")
	}
	if ok, err := manager.HasSession(ctx, newAccessID); err != nil || !ok {
		t.Fatalf("expected new session to exist, ok=%v err=%v", ok, err)
	}

	if _, _, _, err := manager.Rotate(ctx, accessID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("reusing a rotated token must fail, got %v", err)
	}
}

func TestManagerRevoke(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "access-1", Owner{UserID: uuid.New(), Email: "a@b.co"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := manager.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err := manager.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatalf("session should be gone after revoke")
	}
}

func TestManagerGenerateRequiresOwner(t *testing.T) {
	manager := newTestManager(newMockStore())
	if _, err := manager.Generate(context.Background(), "access-1", Owner{}); err == nil {
		t.Fatalf("expected error for missing owner")
	}
}
