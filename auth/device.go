package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// A DeviceCode is returned by the server in response to a device
// authorization request. See
// https://www.rfc-editor.org/rfc/rfc8628#section-3.2
type DeviceCode struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int64  `json:"expires_in"`
	Interval                int64  `json:"interval"`
}

// An AuthorizationError is the response sent by authorization server. See
// https://www.rfc-editor.org/rfc/rfc6749#section-5.2
type AuthorizationError struct {
	Err         string `json:"error"`
	Description string `json:"error_description"`
	URI         string `json:"error_uri"`
}

// Error implements error
func (e AuthorizationError) Error() string {
	if e.Description == "" && e.URI == "" {
		return e.Err
	}

	if e.URI == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Description)
	}

	return fmt.Sprintf("%s: %s (see %s)", e.Err, e.Description, e.URI)
}

var (
	ErrFetchDeviceCode   = errors.New("error fetching device code")
	ErrInvalidDeviceCode = errors.New("invalid device code")
	ErrFetchToken        = errors.New("error fetching token")
	ErrAccessDenied      = errors.New("access denied by user")
	ErrExpiredToken      = errors.New("device code expired before login completed")
)

const (
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

	// polling interval in seconds when the server sends none, and the
	// increase on slow_down (RFC 8628 sections 3.2 and 3.5)
	defaultInterval  = 5
	slowDownInterval = 5
)

// pollUnit scales Interval. Tests shorten it.
var pollUnit = time.Second

// DeviceCode initiates the device authorization flow. It requests a device
// code and the code and URL to show to the user. Pass the result to Wait.
func (p *Provider) DeviceCode(ctx context.Context) (*DeviceCode, error) {
	resp, err := contextClient(ctx).PostForm(
		p.deviceURL,
		url.Values{
			"client_id": {p.oauth.ClientID},
			"scope":     {strings.Join(p.oauth.Scopes, " ")},
			"audience":  {p.audience},
		},
	)
	if err != nil {
		return nil, ErrFetchDeviceCode
	}
	defer resp.Body.Close()

	var dc struct {
		*DeviceCode
		*AuthorizationError
	}
	if err := json.NewDecoder(resp.Body).Decode(&dc); err != nil {
		return nil, ErrInvalidDeviceCode
	}

	if dc.AuthorizationError != nil {
		return nil, *dc.AuthorizationError
	}

	return dc.DeviceCode, nil
}

// Wait polls the token URL waiting for the user to authorize the app. Upon
// authorization, it returns the new token. If the user explicitly denied
// access the error is ErrAccessDenied.
func (p *Provider) Wait(ctx context.Context, code *DeviceCode) (*oauth2.Token, error) {
	if code.Interval <= 0 {
		code.Interval = defaultInterval
	}

	for {
		tok, err := p.pollToken(ctx, code.DeviceCode)
		if err != nil {
			return nil, err
		}

		if tok.AuthorizationError == nil {
			return tok.Token.WithExtra(map[string]interface{}{
				"id_token": tok.IDToken,
			}), nil
		}

		switch tok.AuthorizationError.Err {
		case "authorization_pending":
			// do nothing; wait for user to authorize
		case "slow_down":
			code.Interval += slowDownInterval
		case "access_denied":
			return nil, ErrAccessDenied
		case "expired_token":
			return nil, ErrExpiredToken
		default:
			return nil, fmt.Errorf("authorization failed: %s", tok.Error())
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(code.Interval) * pollUnit):
		}
	}
}

type pollResponse struct {
	*oauth2.Token
	IDToken string `json:"id_token,omitempty"`
	*AuthorizationError
}

func (p *Provider) pollToken(ctx context.Context, deviceCode string) (*pollResponse, error) {
	resp, err := contextClient(ctx).PostForm(p.oauth.Endpoint.TokenURL,
		url.Values{
			"client_id":   {p.oauth.ClientID},
			"device_code": {deviceCode},
			"grant_type":  {deviceGrantType}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tok pollResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, ErrFetchToken
	}
	if tok.Token == nil && tok.AuthorizationError == nil {
		return nil, ErrFetchToken
	}

	return &tok, nil
}
