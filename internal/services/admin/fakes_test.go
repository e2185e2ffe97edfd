package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/offerboat/admin/internal/services/admin/backend"
	"github.com/offerboat/admin/internal/services/admin/session"
)

const (
	testAdminSession = "session-admin"
	testTeamSession  = "session-team"
	testOrigin       = "http://example.com"
)

type sentRequest struct {
	method string
	path   string
	body   string
	form   *backend.Form
	token  string
}

// fakeBackend serves canned collections and records every write.
type fakeBackend struct {
	mu          sync.Mutex
	collections map[string][]backend.Item
	records     map[string]backend.Item
	errs        map[string]error
	fetches     map[string]int
	sent        []sentRequest
	pushTokens  []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		collections: map[string][]backend.Item{},
		records:     map[string]backend.Item{},
		errs:        map[string]error{},
		fetches:     map[string]int{},
	}
}

func (f *fakeBackend) withCollection(endpoint backend.Endpoint, raw ...string) *fakeBackend {
	items := make([]backend.Item, 0, len(raw))
	for _, value := range raw {
		items = append(items, backend.MustItem(value))
	}
	f.collections[endpoint.Key()] = items
	return f
}

func (f *fakeBackend) withRecord(path string, raw string) *fakeBackend {
	f.records[path] = backend.MustItem(raw)
	return f
}

func (f *fakeBackend) failing(key string, err error) *fakeBackend {
	f.errs[key] = err
	return f
}

func (f *fakeBackend) FetchCollection(_ context.Context, endpoint backend.Endpoint, _ string) ([]backend.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[endpoint.Key()]++
	if err := f.errs[endpoint.Key()]; err != nil {
		return nil, err
	}
	return f.collections[endpoint.Key()], nil
}

func (f *fakeBackend) FetchItem(_ context.Context, path string, _ string) (backend.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[path]++
	if err := f.errs[path]; err != nil {
		return backend.Item{}, err
	}
	record, ok := f.records[path]
	if !ok {
		return backend.Item{}, backend.ErrNotFound
	}
	return record, nil
}

func (f *fakeBackend) Send(_ context.Context, method string, path string, body []byte, token string) (backend.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentRequest{method: method, path: path, body: string(body), token: token})
	if err := f.errs[method+" "+path]; err != nil {
		return backend.Item{}, err
	}
	return backend.MustItem(`{"success":true}`), nil
}

func (f *fakeBackend) SendForm(_ context.Context, method string, path string, form *backend.Form, token string) (backend.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentRequest{method: method, path: path, form: form, token: token})
	if err := f.errs[method+" "+path]; err != nil {
		return backend.Item{}, err
	}
	return backend.MustItem(`{"success":true}`), nil
}

func (f *fakeBackend) UpdatePushToken(_ context.Context, userName, pushToken, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushTokens = append(f.pushTokens, userName+":"+pushToken)
	return f.errs[backend.PathUpdateFCMToken]
}

func (f *fakeBackend) fetchCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[key]
}

func (f *fakeBackend) requests() []sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentRequest(nil), f.sent...)
}

// fakeSessions resolves two fixed sessions and scripts sign-in outcomes.
type fakeSessions struct {
	mu        sync.Mutex
	sessions  map[string]session.Session
	signInErr error
	lockout   session.Lockout
	signedOut []string
}

func newFakeSessions() *fakeSessions {
	expires := time.Now().Add(time.Hour)
	return &fakeSessions{sessions: map[string]session.Session{
		testAdminSession: {ID: testAdminSession, Token: "admin-token", UserName: "captain", Role: backend.RoleAdmin, ExpiresAt: expires},
		testTeamSession:  {ID: testTeamSession, Token: "team-token", UserName: "deckhand", Role: backend.RoleTeamMember, ExpiresAt: expires},
	}}
}

func (f *fakeSessions) SignIn(_ context.Context, _ string, userName, _ string) (session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return session.Session{}, f.signInErr
	}
	current := session.Session{ID: "session-new", Token: "new-token", UserName: userName, Role: backend.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}
	f.sessions[current.ID] = current
	return current, nil
}

func (f *fakeSessions) Lockout(context.Context, string) (session.Lockout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lockout, nil
}

func (f *fakeSessions) Resolve(_ context.Context, sessionID string) (session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sessionID == "expired" {
		return session.Session{}, session.ErrExpired
	}
	current, ok := f.sessions[sessionID]
	if !ok {
		return session.Session{}, session.ErrNoSession
	}
	return current, nil
}

func (f *fakeSessions) SignOut(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[sessionID]; !ok {
		return session.ErrNoSession
	}
	delete(f.sessions, sessionID)
	f.signedOut = append(f.signedOut, sessionID)
	return nil
}

func newTestHandler(t *testing.T, api *fakeBackend, sessions *fakeSessions) http.Handler {
	t.Helper()
	return NewHandler(HandlerConfig{Backend: api, Sessions: sessions})
}

// serve runs one request with the given session cookie.
func serve(handler http.Handler, sessionID string, req *http.Request) *httptest.ResponseRecorder {
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func newGet(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func newHTMXGet(target string) *http.Request {
	req := newGet(target)
	req.Header.Set("HX-Request", "true")
	return req
}

// newPost builds a same-origin form post.
func newPost(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", testOrigin)
	return req
}
