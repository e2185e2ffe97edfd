package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL, server.Client())
	require.NoError(t, err)
	return client
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := NewClient("", nil)
	assert.Error(t, err)

	_, err = NewClient("/relative", nil)
	assert.Error(t, err)

	client, err := NewClient("https://api.example.com/", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", client.BaseURL())
}

func TestFetchCollectionSendsBearerAndQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/booking/userUpcomingBookings", r.URL.Path)
		assert.Equal(t, "u-1", r.URL.Query().Get("userId"))
		assert.Equal(t, "15-09-2024", r.URL.Query().Get("date"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"_id":"b-1"}]`))
	})

	items, err := client.FetchCollection(context.Background(), UserUpcomingBookings("u-1", "15-09-2024", "BoatOwner"), "tok")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b-1", items[0].ID())
}

func TestDoClassifiesStatusErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"gone"}`))
	})

	_, err := client.FetchItem(context.Background(), BookingPath("b-1"), "")
	require.Error(t, err)
	assert.Equal(t, KindStatus, KindOf(err))
	assert.True(t, errors.Is(err, ErrNotFound))

	var backendErr *Error
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, http.StatusNotFound, backendErr.Status)
	assert.Equal(t, "/booking/bookings/b-1", backendErr.Endpoint)
	assert.EqualError(t, backendErr.Unwrap(), "gone")
}

func TestDoClassifiesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client, err := NewClient(server.URL, server.Client())
	require.NoError(t, err)
	server.Close()

	_, err = client.FetchCollection(context.Background(), Users, "")
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestFetchCollectionDecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":true}`))
	})

	_, err := client.FetchCollection(context.Background(), Users, "")
	assert.Equal(t, KindDecode, KindOf(err))
	var backendErr *Error
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "/user/users", backendErr.Endpoint)
}

func TestSignIn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathSignIn, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"userName":"ops","password":"secret"}`, string(body))
		_, _ = w.Write([]byte(`{"token":"jwt","type":"Admin"}`))
	})

	result, err := client.SignIn(context.Background(), "ops", "secret")
	require.NoError(t, err)
	assert.Equal(t, SignInResult{Token: "jwt", Role: RoleAdmin}, result)
}

func TestSignInRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.SignIn(context.Background(), "ops", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInRequiresToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"Admin"}`))
	})

	_, err := client.SignIn(context.Background(), "ops", "secret")
	assert.Equal(t, KindDecode, KindOf(err))
}

func TestSendIgnoresNonObjectBodies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/listing/delete-listing/l%201", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`"deleted"`))
	})

	_, err := client.Send(context.Background(), http.MethodDelete, DeleteListingPath("l 1"), nil, "")
	assert.NoError(t, err)
}

func TestEndpointKey(t *testing.T) {
	assert.Equal(t, "/user/users", Users.Key())
	assert.Equal(t, "/booking/userUpcomingBookings?date=01-02-2025&userId=u&userType=BoatRenter",
		UserUpcomingBookings("u", "01-02-2025", "BoatRenter").Key())
}
