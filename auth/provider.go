// Package auth integrates the client with its identity provider: login
// links and the callback redirect, the device flow, token refresh and
// storage, and access token verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/coffeeshop/cli/config"
)

var (
	ErrMissingDomain      = errors.New("identity provider domain is not set")
	ErrRedirectNotAllowed = errors.New("redirect target is not the registered callback url")
)

var defaultScopes = []string{"openid", "profile", "email", "offline_access"}

// Provider is a client of one identity provider tenant, registered with a
// client id, an audience and a callback url.
type Provider struct {
	oauth     *oauth2.Config
	base      string
	audience  string
	deviceURL string
	callback  *url.URL
}

// NewProvider builds a Provider from the auth section of the deployment
// config. The domain may carry a scheme; https is assumed otherwise.
func NewProvider(cfg config.AuthConfig) (*Provider, error) {
	if cfg.ProviderDomain == "" {
		return nil, ErrMissingDomain
	}

	callback, err := url.Parse(cfg.CallbackURL)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid callback url")
	}
	if callback.Scheme == "" || callback.Host == "" {
		return nil, fmt.Errorf("invalid callback url %q: missing scheme or host", cfg.CallbackURL)
	}

	base := cfg.ProviderDomain
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	base = strings.TrimRight(base, "/")

	return &Provider{
		oauth: &oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/authorize",
				TokenURL:  base + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: cfg.CallbackURL,
			Scopes:      defaultScopes,
		},
		base:      base,
		audience:  cfg.Audience,
		deviceURL: base + "/oauth/device/code",
		callback:  callback,
	}, nil
}

// Issuer is the value the provider puts in the iss claim.
func (p *Provider) Issuer() string {
	return p.base + "/"
}

// Callback returns the registered post-login redirect target.
func (p *Provider) Callback() *url.URL {
	u := *p.callback
	return &u
}

// NewState returns a random value for the state parameter of a login.
func NewState() string {
	return shortuuid.New()
}

// NewVerifier returns a PKCE code verifier.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthCodeURL is the login link the user opens in a browser. After login the
// provider redirects to the callback url with a code for Exchange.
func (p *Provider) AuthCodeURL(state, verifier string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("audience", p.audience),
		oauth2.S256ChallengeOption(verifier),
	)
}

// CheckRedirect accepts only the registered callback url, or a path below it.
func (p *Provider) CheckRedirect(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return pkgerrors.Wrap(err, "invalid redirect url")
	}

	if !strings.EqualFold(u.Scheme, p.callback.Scheme) || !strings.EqualFold(u.Host, p.callback.Host) {
		return fmt.Errorf("%w: %s", ErrRedirectNotAllowed, raw)
	}

	prefix := strings.TrimRight(p.callback.Path, "/")
	if u.Path != prefix && !strings.HasPrefix(u.Path, prefix+"/") {
		return fmt.Errorf("%w: %s", ErrRedirectNotAllowed, raw)
	}

	return nil
}

// Exchange trades an authorization code for tokens.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	tok, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to exchange authorization code")
	}
	return tok, nil
}

// Refresh gets a new access token. The refresh token is kept when the
// provider does not rotate it.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	tok, err := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to refresh authentication details")
	}
	return tok, nil
}

// LogoutURL ends the provider session and sends the browser to returnTo, or
// to the callback url when returnTo is empty.
func (p *Provider) LogoutURL(returnTo string) string {
	if returnTo == "" {
		returnTo = p.callback.String()
	}

	q := url.Values{
		"client_id": {p.oauth.ClientID},
		"returnTo":  {returnTo},
	}
	return p.base + "/v2/logout?" + q.Encode()
}

// contextClient returns the oauth2 HTTP client from the context, or the
// default client if one is not present.
func contextClient(ctx context.Context) *http.Client {
	if ctx != nil {
		if hc, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
			return hc
		}
	}
	return http.DefaultClient
}
