package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeService struct {
	lastCall string
}

func (f *fakeService) HandleLogin(http.ResponseWriter, *http.Request) {
	f.lastCall = "login"
}

func (f *fakeService) HandleLogout(http.ResponseWriter, *http.Request) {
	f.lastCall = "logout"
}

func (f *fakeService) HandlePushToken(http.ResponseWriter, *http.Request) {
	f.lastCall = "push_token"
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc)

	tests := []struct {
		path     string
		method   string
		wantCall string
	}{
		{path: "/login", method: http.MethodGet, wantCall: "login"},
		{path: "/login", method: http.MethodPost, wantCall: "login"},
		{path: "/logout", method: http.MethodGet, wantCall: "logout"},
		{path: "/push-token", method: http.MethodPost, wantCall: "push_token"},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			svc.lastCall = ""

			mux.ServeHTTP(rec, req)

			if svc.lastCall != tc.wantCall {
				t.Fatalf("lastCall = %q, want %q", svc.lastCall, tc.wantCall)
			}
		})
	}
}
