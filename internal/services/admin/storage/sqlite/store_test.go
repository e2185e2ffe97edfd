package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/offerboat/admin/internal/services/admin/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPutAndGetSession(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	expiresAt := time.Date(2026, 2, 1, 10, 0, 0, 500, time.UTC)
	createdAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	record := storage.SessionRecord{
		ID:        "session-1",
		Token:     "jwt",
		UserName:  "ops",
		Role:      "Admin",
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}
	if err := store.PutSession(ctx, record); err != nil {
		t.Fatalf("put session: %v", err)
	}

	got, err := store.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != record {
		t.Fatalf("session = %+v, want %+v", got, record)
	}
}

func TestPutSessionValidation(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	cases := []storage.SessionRecord{
		{Token: "t", ExpiresAt: future},
		{ID: "s", ExpiresAt: future},
		{ID: "s", Token: "t"},
	}
	for _, record := range cases {
		if err := store.PutSession(ctx, record); err == nil {
			t.Fatalf("expected validation error for %+v", record)
		}
	}
}

func TestGetSessionNotFound(t *testing.T) {
	store := openTempStore(t)
	_, err := store.GetSession(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteSession(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	putSession(t, store, "session-1", time.Now().Add(time.Hour))

	if err := store.DeleteSession(ctx, "session-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := store.GetSession(ctx, "session-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := store.DeleteSession(ctx, "session-1"); err != nil {
		t.Fatalf("delete missing session: %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	putSession(t, store, "expired", now.Add(-time.Minute))
	putSession(t, store, "boundary", now)
	putSession(t, store, "live", now.Add(time.Millisecond))

	removed, err := store.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if _, err := store.GetSession(ctx, "live"); err != nil {
		t.Fatalf("live session: %v", err)
	}
}

func TestLoginAttemptsRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.GetLoginAttempts(ctx, "device-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	lastFailure := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	attempts := storage.LoginAttempts{ClientKey: "device-1", Failed: 2, LastFailureAt: lastFailure}
	if err := store.PutLoginAttempts(ctx, attempts); err != nil {
		t.Fatalf("put attempts: %v", err)
	}
	got, err := store.GetLoginAttempts(ctx, "device-1")
	if err != nil {
		t.Fatalf("get attempts: %v", err)
	}
	if got != attempts {
		t.Fatalf("attempts = %+v, want %+v", got, attempts)
	}

	attempts.Failed = 3
	attempts.LockedAt = lastFailure.Add(time.Minute)
	if err := store.PutLoginAttempts(ctx, attempts); err != nil {
		t.Fatalf("update attempts: %v", err)
	}
	got, err = store.GetLoginAttempts(ctx, "device-1")
	if err != nil {
		t.Fatalf("get attempts: %v", err)
	}
	if got != attempts {
		t.Fatalf("attempts = %+v, want %+v", got, attempts)
	}

	if err := store.ClearLoginAttempts(ctx, "device-1"); err != nil {
		t.Fatalf("clear attempts: %v", err)
	}
	if _, err := store.GetLoginAttempts(ctx, "device-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreRequiresReceiver(t *testing.T) {
	var store *Store
	if err := store.PutSession(context.Background(), storage.SessionRecord{ID: "s"}); err == nil {
		t.Fatal("expected error for nil store")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func putSession(t *testing.T, store *Store, id string, expiresAt time.Time) {
	t.Helper()
	err := store.PutSession(context.Background(), storage.SessionRecord{
		ID:        id,
		Token:     "token-" + id,
		UserName:  "ops",
		Role:      "Admin",
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("put session %s: %v", id, err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admin.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil && err != sql.ErrConnDone {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
