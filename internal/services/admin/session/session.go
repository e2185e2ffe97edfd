package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/offerboat/admin/internal/services/admin/backend"
	"github.com/offerboat/admin/internal/services/admin/storage"
)

var (
	// ErrLocked is returned while a client is inside its lockout window.
	ErrLocked = errors.New("too many failed attempts")
	// ErrNoSession is returned when no session exists for an id.
	ErrNoSession = errors.New("session not found")
	// ErrExpired is returned when the session token has passed its expiry.
	ErrExpired = errors.New("session expired")
	// ErrTokenExpiry is returned when an issued token carries no usable exp claim.
	ErrTokenExpiry = errors.New("token expiry unavailable")
)

// Authenticator exchanges staff credentials for a bearer token.
type Authenticator interface {
	SignIn(ctx context.Context, userName, password string) (backend.SignInResult, error)
}

// Policy controls the failed sign-in lockout.
type Policy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// DefaultPolicy locks a client for 30 minutes after 3 failures.
var DefaultPolicy = Policy{MaxAttempts: 3, LockDuration: 30 * time.Minute}

// Session is the principal attached to authenticated requests.
type Session struct {
	ID        string
	Token     string
	UserName  string
	Role      string
	ExpiresAt time.Time
}

// IsAdmin reports whether the session may use admin-only screens.
func (s Session) IsAdmin() bool {
	return s.Role == backend.RoleAdmin
}

// HomePath is the landing page for the session role.
func (s Session) HomePath() string {
	if s.IsAdmin() {
		return "/admin"
	}
	return "/team"
}

// Lockout describes the lock state of a client.
type Lockout struct {
	Locked    bool
	Failed    int
	Remaining int
	Until     time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithPolicy overrides the lockout policy.
func WithPolicy(policy Policy) Option {
	return func(m *Manager) {
		if policy.MaxAttempts > 0 {
			m.policy.MaxAttempts = policy.MaxAttempts
		}
		if policy.LockDuration > 0 {
			m.policy.LockDuration = policy.LockDuration
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// WithTimerFunc overrides how expiry timers are armed.
func WithTimerFunc(afterFunc func(time.Duration, func()) Stopper) Option {
	return func(m *Manager) {
		if afterFunc != nil {
			m.afterFunc = afterFunc
		}
	}
}

// Stopper is the subset of *time.Timer the manager needs.
type Stopper interface {
	Stop() bool
}

// Manager issues, resolves, and expires staff sessions.
type Manager struct {
	store     storage.Store
	auth      Authenticator
	policy    Policy
	now       func() time.Time
	newID     func() string
	afterFunc func(time.Duration, func()) Stopper

	mu     sync.Mutex
	timers map[string]Stopper
	closed bool

	// clients serializes sign-in attempts per client key.
	clients map[string]*clientLock
}

type clientLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager builds a session manager over store and auth.
func NewManager(store storage.Store, auth Authenticator, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if auth == nil {
		return nil, errors.New("authenticator is required")
	}
	m := &Manager{
		store:  store,
		auth:   auth,
		policy: DefaultPolicy,
		now:    time.Now,
		newID:  uuid.NewString,
		afterFunc: func(d time.Duration, fn func()) Stopper {
			return time.AfterFunc(d, fn)
		},
		timers:  make(map[string]Stopper),
		clients: make(map[string]*clientLock),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Policy returns the active lockout policy.
func (m *Manager) Policy() Policy {
	return m.policy
}

// SignIn authenticates credentials for clientKey and persists a session.
func (m *Manager) SignIn(ctx context.Context, clientKey, userName, password string) (Session, error) {
	clientKey = strings.TrimSpace(clientKey)
	userName = strings.TrimSpace(userName)

	unlock := m.lockClient(clientKey)
	defer unlock()

	attempts, err := m.attempts(ctx, clientKey)
	if err != nil {
		return Session{}, err
	}
	if m.isLocked(attempts) {
		return Session{}, ErrLocked
	}

	result, err := m.auth.SignIn(ctx, userName, password)
	if err != nil {
		if recordErr := m.recordFailure(ctx, attempts); recordErr != nil {
			log.Ctx(ctx).Warn().Err(recordErr).Msg("record failed sign-in")
		}
		return Session{}, err
	}

	expiresAt, err := tokenExpiry(result.Token)
	if err != nil {
		return Session{}, err
	}
	now := m.now()
	if !expiresAt.After(now) {
		return Session{}, ErrExpired
	}

	session := Session{
		ID:        m.newID(),
		Token:     result.Token,
		UserName:  userName,
		Role:      result.Role,
		ExpiresAt: expiresAt,
	}
	if err := m.store.PutSession(ctx, storage.SessionRecord{
		ID:        session.ID,
		Token:     session.Token,
		UserName:  session.UserName,
		Role:      session.Role,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: now,
	}); err != nil {
		return Session{}, fmt.Errorf("put session: %w", err)
	}
	if clientKey != "" {
		if err := m.store.ClearLoginAttempts(ctx, clientKey); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("clear login attempts")
		}
	}
	m.arm(session)
	return session, nil
}

// Lockout reports the lock state for clientKey.
func (m *Manager) Lockout(ctx context.Context, clientKey string) (Lockout, error) {
	attempts, err := m.attempts(ctx, strings.TrimSpace(clientKey))
	if err != nil {
		return Lockout{}, err
	}
	state := Lockout{Failed: attempts.Failed}
	if m.isLocked(attempts) {
		state.Locked = true
		state.Until = attempts.LockedAt.Add(m.policy.LockDuration)
		return state, nil
	}
	state.Remaining = max(m.policy.MaxAttempts-attempts.Failed, 0)
	return state, nil
}

// Resolve loads a live session. Expired sessions are deleted.
func (m *Manager) Resolve(ctx context.Context, sessionID string) (Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Session{}, ErrNoSession
	}
	record, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	session := Session{
		ID:        record.ID,
		Token:     record.Token,
		UserName:  record.UserName,
		Role:      record.Role,
		ExpiresAt: record.ExpiresAt,
	}
	if !session.ExpiresAt.After(m.now()) {
		m.disarm(session.ID)
		if err := m.store.DeleteSession(ctx, session.ID); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("session", session.ID).Msg("delete expired session")
		}
		return Session{}, ErrExpired
	}
	m.arm(session)
	return session, nil
}

// SignOut removes a session and its expiry timer.
func (m *Manager) SignOut(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	m.disarm(sessionID)
	if err := m.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Sweep deletes every expired session record.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	removed, err := m.store.DeleteExpiredSessions(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return removed, nil
}

// Close stops all pending expiry timers.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
	m.closed = true
}

// lockClient holds the attempt counter of clientKey until the returned func runs.
func (m *Manager) lockClient(clientKey string) func() {
	if clientKey == "" {
		return func() {}
	}
	m.mu.Lock()
	lock, ok := m.clients[clientKey]
	if !ok {
		lock = &clientLock{}
		m.clients[clientKey] = lock
	}
	lock.refs++
	m.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		m.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(m.clients, clientKey)
		}
		m.mu.Unlock()
	}
}

func (m *Manager) attempts(ctx context.Context, clientKey string) (storage.LoginAttempts, error) {
	if clientKey == "" {
		return storage.LoginAttempts{}, nil
	}
	attempts, err := m.store.GetLoginAttempts(ctx, clientKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.LoginAttempts{ClientKey: clientKey}, nil
		}
		return storage.LoginAttempts{}, fmt.Errorf("get login attempts: %w", err)
	}
	if !attempts.LockedAt.IsZero() && !m.now().Before(attempts.LockedAt.Add(m.policy.LockDuration)) {
		// Lock elapsed; the counter starts over.
		if err := m.store.ClearLoginAttempts(ctx, clientKey); err != nil {
			return storage.LoginAttempts{}, fmt.Errorf("clear login attempts: %w", err)
		}
		return storage.LoginAttempts{ClientKey: clientKey}, nil
	}
	return attempts, nil
}

func (m *Manager) isLocked(attempts storage.LoginAttempts) bool {
	if attempts.LockedAt.IsZero() {
		return false
	}
	return m.now().Before(attempts.LockedAt.Add(m.policy.LockDuration))
}

func (m *Manager) recordFailure(ctx context.Context, attempts storage.LoginAttempts) error {
	if attempts.ClientKey == "" {
		return nil
	}
	now := m.now()
	if !attempts.LastFailureAt.IsZero() && now.Sub(attempts.LastFailureAt) > m.policy.LockDuration {
		attempts.Failed = 0
	}
	attempts.Failed++
	attempts.LastFailureAt = now
	if attempts.Failed >= m.policy.MaxAttempts {
		attempts.LockedAt = now
	}
	return m.store.PutLoginAttempts(ctx, attempts)
}

func (m *Manager) arm(session Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if _, ok := m.timers[session.ID]; ok {
		return
	}
	id := session.ID
	m.timers[id] = m.afterFunc(session.ExpiresAt.Sub(m.now()), func() {
		m.mu.Lock()
		delete(m.timers, id)
		m.mu.Unlock()
		if err := m.store.DeleteSession(context.Background(), id); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("expire session")
		}
	})
}

func (m *Manager) disarm(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if timer, ok := m.timers[sessionID]; ok {
		timer.Stop()
		delete(m.timers, sessionID)
	}
}

// armed reports how many expiry timers are pending.
func (m *Manager) armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend is the verifier.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenExpiry, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenExpiry, err)
	}
	if exp == nil {
		return time.Time{}, ErrTokenExpiry
	}
	return exp.Time, nil
}
