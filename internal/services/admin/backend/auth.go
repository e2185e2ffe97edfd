package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Staff roles returned by sign-in.
const (
	RoleAdmin      = "Admin"
	RoleTeamMember = "Team member"
)

// SignInResult is the credential issued for a staff account.
type SignInResult struct {
	Token string
	Role  string
}

// SignIn exchanges a user name and password for a bearer token.
//
// Any 4xx answer is reported as ErrInvalidCredentials.
func (c *Client) SignIn(ctx context.Context, userName, password string) (SignInResult, error) {
	body, err := NewPayload().Set("userName", userName).Set("password", password).Bytes()
	if err != nil {
		return SignInResult{}, err
	}
	payload, err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathSignIn, Body: body})
	if err != nil {
		var backendErr *Error
		if errors.As(err, &backendErr) && backendErr.Kind == KindStatus && backendErr.Status >= 400 && backendErr.Status < 500 {
			return SignInResult{}, errors.Join(ErrInvalidCredentials, err)
		}
		return SignInResult{}, err
	}
	item, err := ParseItem(payload)
	if err != nil {
		return SignInResult{}, withEndpoint(err, http.MethodPost, PathSignIn)
	}
	result := SignInResult{
		Token: strings.TrimSpace(item.Text("token")),
		Role:  strings.TrimSpace(item.Text("type")),
	}
	if result.Token == "" {
		return SignInResult{}, &Error{Kind: KindDecode, Method: http.MethodPost, Endpoint: PathSignIn, Err: malformedError("token missing")}
	}
	return result, nil
}

// UpdatePushToken registers a browser push token for a staff account.
func (c *Client) UpdatePushToken(ctx context.Context, userName, pushToken, bearer string) error {
	body, err := NewPayload().Set("userName", userName).Set("fcmToken", pushToken).Bytes()
	if err != nil {
		return err
	}
	_, err = c.Send(ctx, http.MethodPost, PathUpdateFCMToken, body, bearer)
	return err
}
