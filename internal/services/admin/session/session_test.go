package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerboat/admin/internal/services/admin/backend"
	"github.com/offerboat/admin/internal/services/admin/storage"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]storage.SessionRecord
	attempts map[string]storage.LoginAttempts
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: map[string]storage.SessionRecord{},
		attempts: map[string]storage.LoginAttempts{},
	}
}

func (s *memoryStore) PutSession(_ context.Context, record storage.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[record.ID] = record
	return nil
}

func (s *memoryStore) GetSession(_ context.Context, id string) (storage.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.sessions[id]
	if !ok {
		return storage.SessionRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *memoryStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *memoryStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, record := range s.sessions {
		if !record.ExpiresAt.After(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *memoryStore) GetLoginAttempts(_ context.Context, key string) (storage.LoginAttempts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempts, ok := s.attempts[key]
	if !ok {
		return storage.LoginAttempts{}, storage.ErrNotFound
	}
	return attempts, nil
}

func (s *memoryStore) PutLoginAttempts(_ context.Context, attempts storage.LoginAttempts) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempts.ClientKey] = attempts
	return nil
}

func (s *memoryStore) ClearLoginAttempts(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
	return nil
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type fakeAuth struct {
	calls  int
	result backend.SignInResult
	err    error
}

func (f *fakeAuth) SignIn(context.Context, string, string) (backend.SignInResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "staff-1"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTestManager(t *testing.T, auth Authenticator, clock *testClock) (*Manager, *memoryStore, *[]*fakeTimer) {
	t.Helper()
	store := newMemoryStore()
	timers := &[]*fakeTimer{}
	manager, err := NewManager(store, auth,
		WithClock(clock.Now),
		WithIDGenerator(func() string { return "session-1" }),
		WithTimerFunc(func(d time.Duration, fn func()) Stopper {
			timer := &fakeTimer{delay: d, fn: fn}
			*timers = append(*timers, timer)
			return timer
		}),
	)
	require.NoError(t, err)
	return manager, store, timers
}

func TestNewManagerRequiresDependencies(t *testing.T) {
	_, err := NewManager(nil, &fakeAuth{})
	assert.Error(t, err)
	_, err = NewManager(newMemoryStore(), nil)
	assert.Error(t, err)
}

func TestSignInPersistsSessionWithTokenExpiry(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	exp := clock.now.Add(2 * time.Hour)
	auth := &fakeAuth{result: backend.SignInResult{Token: signedToken(t, exp), Role: backend.RoleAdmin}}
	manager, store, timers := newTestManager(t, auth, clock)

	session, err := manager.SignIn(context.Background(), "device-1", " alice ", "secret")
	require.NoError(t, err)

	assert.Equal(t, "session-1", session.ID)
	assert.Equal(t, "alice", session.UserName)
	assert.True(t, session.IsAdmin())
	assert.Equal(t, "/admin", session.HomePath())
	assert.True(t, session.ExpiresAt.Equal(exp))
	assert.Equal(t, 1, store.sessionCount())
	require.Len(t, *timers, 1)
	assert.Equal(t, 2*time.Hour, (*timers)[0].delay)
}

func TestSignInTeamMemberLandsOnTeam(t *testing.T) {
	clock := &testClock{now: time.Now()}
	auth := &fakeAuth{result: backend.SignInResult{Token: signedToken(t, clock.now.Add(time.Hour)), Role: backend.RoleTeamMember}}
	manager, _, _ := newTestManager(t, auth, clock)

	session, err := manager.SignIn(context.Background(), "device-1", "bob", "secret")
	require.NoError(t, err)
	assert.False(t, session.IsAdmin())
	assert.Equal(t, "/team", session.HomePath())
}

func TestSignInRejectsTokenWithoutExpiry(t *testing.T) {
	clock := &testClock{now: time.Now()}
	auth := &fakeAuth{result: backend.SignInResult{Token: signedToken(t, time.Time{}), Role: backend.RoleAdmin}}
	manager, store, _ := newTestManager(t, auth, clock)

	_, err := manager.SignIn(context.Background(), "device-1", "alice", "secret")
	require.ErrorIs(t, err, ErrTokenExpiry)
	assert.Zero(t, store.sessionCount())

	state, err := manager.Lockout(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Zero(t, state.Failed)
}

func TestLockoutAfterThreeFailures(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	auth := &fakeAuth{err: backend.ErrInvalidCredentials}
	manager, _, _ := newTestManager(t, auth, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := manager.SignIn(ctx, "device-1", "alice", "wrong")
		require.ErrorIs(t, err, backend.ErrInvalidCredentials)
	}

	_, err := manager.SignIn(ctx, "device-1", "alice", "right")
	require.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, 3, auth.calls, "locked attempt must not reach the backend")

	state, err := manager.Lockout(ctx, "device-1")
	require.NoError(t, err)
	assert.True(t, state.Locked)
	assert.Equal(t, clock.now.Add(30*time.Minute), state.Until)

	// Other devices are unaffected.
	_, err = manager.SignIn(ctx, "device-2", "alice", "wrong")
	require.ErrorIs(t, err, backend.ErrInvalidCredentials)
}

type slowFailingAuth struct {
	calls atomic.Int32
}

func (a *slowFailingAuth) SignIn(context.Context, string, string) (backend.SignInResult, error) {
	a.calls.Add(1)
	time.Sleep(5 * time.Millisecond)
	return backend.SignInResult{}, backend.ErrInvalidCredentials
}

func TestConcurrentFailuresStillLockAfterThree(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	auth := &slowFailingAuth{}
	manager, _, _ := newTestManager(t, auth, clock)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		locked int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.SignIn(context.Background(), "device-1", "alice", "wrong")
			if errors.Is(err, ErrLocked) {
				mu.Lock()
				locked++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), auth.calls.Load())
	assert.Equal(t, 3, locked)
	manager.mu.Lock()
	assert.Empty(t, manager.clients)
	manager.mu.Unlock()
}

func TestLockoutExpiresAfterThirtyMinutes(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &testClock{now: start}
	auth := &fakeAuth{err: errors.New("backend unavailable")}
	manager, _, _ := newTestManager(t, auth, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = manager.SignIn(ctx, "device-1", "alice", "wrong")
	}

	clock.now = start.Add(29 * time.Minute)
	_, err := manager.SignIn(ctx, "device-1", "alice", "secret")
	require.ErrorIs(t, err, ErrLocked)

	clock.now = start.Add(30 * time.Minute)
	auth.err = nil
	auth.result = backend.SignInResult{Token: signedToken(t, clock.now.Add(time.Hour)), Role: backend.RoleAdmin}
	_, err = manager.SignIn(ctx, "device-1", "alice", "secret")
	require.NoError(t, err)

	state, err := manager.Lockout(ctx, "device-1")
	require.NoError(t, err)
	assert.False(t, state.Locked)
	assert.Equal(t, 3, state.Remaining)
}

func TestSuccessfulSignInClearsFailures(t *testing.T) {
	clock := &testClock{now: time.Now()}
	auth := &fakeAuth{err: backend.ErrInvalidCredentials}
	manager, _, _ := newTestManager(t, auth, clock)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = manager.SignIn(ctx, "device-1", "alice", "wrong")
	}
	auth.err = nil
	auth.result = backend.SignInResult{Token: signedToken(t, clock.now.Add(time.Hour)), Role: backend.RoleAdmin}
	_, err := manager.SignIn(ctx, "device-1", "alice", "secret")
	require.NoError(t, err)

	state, err := manager.Lockout(ctx, "device-1")
	require.NoError(t, err)
	assert.Zero(t, state.Failed)
}

func TestStaleFailuresDoNotAccumulate(t *testing.T) {
	start := time.Now()
	clock := &testClock{now: start}
	auth := &fakeAuth{err: backend.ErrInvalidCredentials}
	manager, _, _ := newTestManager(t, auth, clock)
	ctx := context.Background()

	_, _ = manager.SignIn(ctx, "device-1", "alice", "wrong")
	_, _ = manager.SignIn(ctx, "device-1", "alice", "wrong")
	clock.now = start.Add(31 * time.Minute)
	_, _ = manager.SignIn(ctx, "device-1", "alice", "wrong")

	state, err := manager.Lockout(ctx, "device-1")
	require.NoError(t, err)
	assert.False(t, state.Locked)
	assert.Equal(t, 1, state.Failed)
}

func TestResolveExpiredSessionDeletesIt(t *testing.T) {
	start := time.Now()
	clock := &testClock{now: start}
	auth := &fakeAuth{result: backend.SignInResult{Token: signedToken(t, start.Add(time.Hour)), Role: backend.RoleAdmin}}
	manager, store, _ := newTestManager(t, auth, clock)
	ctx := context.Background()

	session, err := manager.SignIn(ctx, "device-1", "alice", "secret")
	require.NoError(t, err)

	resolved, err := manager.Resolve(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Token, resolved.Token)

	clock.now = start.Add(time.Hour)
	_, err = manager.Resolve(ctx, session.ID)
	require.ErrorIs(t, err, ErrExpired)
	assert.Zero(t, store.sessionCount())
	assert.Zero(t, manager.armed())

	_, err = manager.Resolve(ctx, session.ID)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestResolveMissingSession(t *testing.T) {
	manager, _, _ := newTestManager(t, &fakeAuth{}, &testClock{now: time.Now()})
	_, err := manager.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrNoSession)
	_, err = manager.Resolve(context.Background(), "unknown")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestExpiryTimerDeletesSession(t *testing.T) {
	clock := &testClock{now: time.Now()}
	auth := &fakeAuth{result: backend.SignInResult{Token: signedToken(t, clock.now.Add(time.Minute)), Role: backend.RoleAdmin}}
	manager, store, timers := newTestManager(t, auth, clock)

	_, err := manager.SignIn(context.Background(), "device-1", "alice", "secret")
	require.NoError(t, err)
	require.Len(t, *timers, 1)

	(*timers)[0].fn()
	assert.Zero(t, store.sessionCount())
	assert.Zero(t, manager.armed())
}

func TestSignOutStopsTimer(t *testing.T) {
	clock := &testClock{now: time.Now()}
	auth := &fakeAuth{result: backend.SignInResult{Token: signedToken(t, clock.now.Add(time.Hour)), Role: backend.RoleAdmin}}
	manager, store, timers := newTestManager(t, auth, clock)
	ctx := context.Background()

	session, err := manager.SignIn(ctx, "device-1", "alice", "secret")
	require.NoError(t, err)
	require.NoError(t, manager.SignOut(ctx, session.ID))

	assert.True(t, (*timers)[0].stopped)
	assert.Zero(t, store.sessionCount())
	require.NoError(t, manager.SignOut(ctx, ""))
}

func TestCloseStopsTimersAndRefusesNewOnes(t *testing.T) {
	clock := &testClock{now: time.Now()}
	auth := &fakeAuth{result: backend.SignInResult{Token: signedToken(t, clock.now.Add(time.Hour)), Role: backend.RoleAdmin}}
	manager, _, timers := newTestManager(t, auth, clock)

	_, err := manager.SignIn(context.Background(), "device-1", "alice", "secret")
	require.NoError(t, err)
	manager.Close()

	assert.True(t, (*timers)[0].stopped)
	assert.Zero(t, manager.armed())
}

func TestSweepRemovesExpired(t *testing.T) {
	start := time.Now()
	clock := &testClock{now: start}
	auth := &fakeAuth{result: backend.SignInResult{Token: signedToken(t, start.Add(time.Minute)), Role: backend.RoleAdmin}}
	manager, _, _ := newTestManager(t, auth, clock)

	_, err := manager.SignIn(context.Background(), "device-1", "alice", "secret")
	require.NoError(t, err)

	clock.now = start.Add(2 * time.Minute)
	removed, err := manager.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
