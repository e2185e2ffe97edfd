package notifications

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeService struct {
	lastCall string
	lastID   string
}

func (f *fakeService) HandleNotifications(http.ResponseWriter, *http.Request) {
	f.lastCall = "feed"
}

func (f *fakeService) HandleNotificationsClear(http.ResponseWriter, *http.Request) {
	f.lastCall = "clear"
}

func (f *fakeService) HandleNotificationRead(_ http.ResponseWriter, _ *http.Request, notificationID string) {
	f.lastCall = "read"
	f.lastID = notificationID
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc)

	tests := []struct {
		path     string
		method   string
		wantCode int
		wantCall string
		wantID   string
	}{
		{path: "/notifications", method: http.MethodGet, wantCode: http.StatusOK, wantCall: "feed"},
		{path: "/notifications/clear", method: http.MethodPost, wantCode: http.StatusOK, wantCall: "clear"},
		{path: "/notifications/n-1/read", method: http.MethodPost, wantCode: http.StatusOK, wantCall: "read", wantID: "n-1"},
		{path: "/notifications/n-1", method: http.MethodGet, wantCode: http.StatusNotFound},
		{path: "/notifications/n-1/read/", method: http.MethodPost, wantCode: http.StatusPermanentRedirect},
		{path: "/notifications/", method: http.MethodGet, wantCode: http.StatusMovedPermanently},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			svc.lastCall = ""
			svc.lastID = ""

			mux.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			if svc.lastCall != tc.wantCall {
				t.Fatalf("lastCall = %q, want %q", svc.lastCall, tc.wantCall)
			}
			if svc.lastID != tc.wantID {
				t.Fatalf("lastID = %q, want %q", svc.lastID, tc.wantID)
			}
		})
	}
}

func TestHandleNotificationPathNilService(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	HandleNotificationPath(rec, httptest.NewRequest(http.MethodPost, "/notifications/n-1/read", nil), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
