package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeService struct {
	lastCall string
}

func (f *fakeService) HandleRoot(http.ResponseWriter, *http.Request) {
	f.lastCall = "root"
}

func (f *fakeService) HandleAdminDashboard(http.ResponseWriter, *http.Request) {
	f.lastCall = "admin"
}

func (f *fakeService) HandleTeamDashboard(http.ResponseWriter, *http.Request) {
	f.lastCall = "team"
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc)

	tests := []struct {
		path     string
		wantCall string
	}{
		{path: "/", wantCall: "root"},
		{path: "/admin", wantCall: "admin"},
		{path: "/team", wantCall: "team"},
		{path: "/unknown", wantCall: "root"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			svc.lastCall = ""

			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if svc.lastCall != tc.wantCall {
				t.Fatalf("lastCall = %q, want %q", svc.lastCall, tc.wantCall)
			}
		})
	}
}

func TestRegisterRoutesIgnoresNilInputs(t *testing.T) {
	t.Parallel()

	RegisterRoutes(nil, &fakeService{})
	RegisterRoutes(http.NewServeMux(), nil)
}
