package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/offerboat/admin/internal/platform/timeouts"
	"github.com/offerboat/admin/internal/services/admin/backend"
	"github.com/offerboat/admin/internal/services/admin/collectioncache"
	"github.com/offerboat/admin/internal/services/admin/session"
	adminsqlite "github.com/offerboat/admin/internal/services/admin/storage/sqlite"
)

// Config defines the inputs for the dashboard process.
type Config struct {
	HTTPAddr   string
	BackendURL string
	DBPath     string
	// CacheTTL expires cached collections. Zero keeps them until a mutation
	// invalidates them.
	CacheTTL time.Duration
	// SecureCookies forces the Secure cookie attribute behind TLS-terminating proxies.
	SecureCookies bool
	// HTTPClient overrides the client used for backend calls.
	HTTPClient *http.Client
}

// Server hosts the dashboard and owns its session store and collection cache.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      *adminsqlite.Store
	sessions   *session.Manager
	cache      *collectioncache.Cache[[]backend.Item]
}

// NewServer builds a configured dashboard server.
func NewServer(_ context.Context, config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if strings.TrimSpace(config.BackendURL) == "" {
		config.BackendURL = backend.DefaultBaseURL
	}
	if strings.TrimSpace(config.DBPath) == "" {
		config.DBPath = filepath.Join("data", "admin.db")
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.BackendRequest}
	}

	client, err := backend.NewClient(config.BackendURL, httpClient)
	if err != nil {
		return nil, err
	}
	store, err := openAdminStore(config.DBPath)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewManager(store, client)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create session manager: %w", err)
	}
	cache := collectioncache.New[[]backend.Item](
		collectioncache.WithTTL(config.CacheTTL),
		collectioncache.WithRefreshTimeout(timeouts.CacheRefresh),
	)

	handler := NewHandler(HandlerConfig{
		Backend:       client,
		Sessions:      sessions,
		Cache:         cache,
		SecureCookies: config.SecureCookies,
		Health:        store.Ping,
	})
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
		store:      store,
		sessions:   sessions,
		cache:      cache,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("admin server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Info().Str("addr", s.httpAddr).Msg("admin listening")
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	sweep := time.NewTicker(timeouts.SessionSweep)
	defer sweep.Stop()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			err := s.httpServer.Shutdown(shutdownCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("shutdown http server: %w", err)
			}
			return nil
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve http: %w", err)
		case <-sweep.C:
			s.sweepSessions(ctx)
		}
	}
}

// sweepSessions deletes sessions whose tokens expired while nobody used them.
func (s *Server) sweepSessions(ctx context.Context) {
	removed, err := s.sessions.Sweep(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("sweep expired sessions")
		return
	}
	if removed > 0 {
		log.Debug().Int64("removed", removed).Msg("swept expired sessions")
	}
}

// Close stops session timers, waits for cache refreshes, and closes the store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.sessions != nil {
		s.sessions.Close()
	}
	if s.cache != nil {
		s.cache.Wait()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Error().Err(err).Msg("close admin store")
		}
	}
}

func openAdminStore(path string) (*adminsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := adminsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open admin sqlite store: %w", err)
	}
	return store, nil
}
