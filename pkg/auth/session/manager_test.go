package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
		delete(f.ttls, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "spool:session:access:" + accessID
}

func testManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}, store
}

func TestGenerateStoresToken(t *testing.T) {
	m, store := testManager()

	token, err := m.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	key := fakeKeyer{}.AccessSessionKey("access-1")
	if store.values[key] != token {
		t.Fatalf("stored token mismatch: %q vs %q", store.values[key], token)
	}
	if store.ttls[key] != time.Hour {
		t.Fatalf("expected ttl 1h, got %s", store.ttls[key])
	}
}

func TestRotateIssuesNewSessionAndRevokesOld(t *testing.T) {
	m, store := testManager()
	ctx := context.Background()

	token, err := m.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	newID, newToken, err := m.Rotate(ctx, "access-1", token)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if newID == "" || newID == "access-1" {
		t.Fatalf("expected fresh access id, got %q", newID)
	}
	if newToken == "" || newToken == token {
		t.Fatal("expected a fresh refresh token")
	}

	oldKey := fakeKeyer{}.AccessSessionKey("access-1")
	if _, ok := store.values[oldKey]; ok {
		t.Fatal("expected old session to be deleted")
	}
	if store.values[fakeKeyer{}.AccessSessionKey(newID)] != newToken {
		t.Fatal("expected new session to be stored")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()

	if _, err := m.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, _, err := m.Rotate(ctx, "access-1", "not-the-token"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRotateRejectsUnknownSession(t *testing.T) {
	m, _ := testManager()

	if _, _, err := m.Rotate(context.Background(), "missing", "whatever"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevokeAndHasSession(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()

	if _, err := m.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	active, err := m.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("HasSession error: %v", err)
	}
	if !active {
		t.Fatal("expected active session")
	}

	if err := m.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	active, err = m.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("HasSession error: %v", err)
	}
	if active {
		t.Fatal("expected session to be gone")
	}
}
