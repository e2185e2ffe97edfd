package admin

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenAndServeNilServer(t *testing.T) {
	var s *Server
	require.Error(t, s.ListenAndServe(context.Background()))
}

func TestNewServerRequiresHTTPAddr(t *testing.T) {
	_, err := NewServer(context.Background(), Config{})
	require.Error(t, err)
}

func TestNewServerRejectsRelativeBackendURL(t *testing.T) {
	_, err := NewServer(context.Background(), Config{
		HTTPAddr:   "127.0.0.1:0",
		BackendURL: "offerboats.local",
		DBPath:     filepath.Join(t.TempDir(), "admin.db"),
	})
	require.Error(t, err)
}

func TestCloseNilServer(t *testing.T) {
	var s *Server
	assert.NotPanics(t, s.Close)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := NewServer(ctx, Config{
		HTTPAddr:   "127.0.0.1:0",
		BackendURL: "http://127.0.0.1:1",
		DBPath:     filepath.Join(t.TempDir(), "nested", "admin.db"),
		CacheTTL:   time.Minute,
	})
	require.NoError(t, err)
	defer server.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe(ctx)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-serveErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop on cancel")
	}
}
