package auth

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	pkgerrors "github.com/pkg/errors"
)

const permissionsClaim = "permissions"

// Verifier checks access tokens against the provider's published keys.
type Verifier struct {
	jwksURL  string
	issuer   string
	audience string
}

func (p *Provider) Verifier() *Verifier {
	return &Verifier{
		jwksURL:  p.base + "/.well-known/jwks.json",
		issuer:   p.Issuer(),
		audience: p.audience,
	}
}

// Verify checks the signature, issuer, audience and lifetime of raw.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	set, err := jwk.Fetch(ctx, v.jwksURL, jwk.WithHTTPClient(contextClient(ctx)))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to fetch signing keys")
	}

	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid access token")
	}

	return &Claims{token: tok}, nil
}

// ParseUnverified reads the claims of raw without checking anything. Use it
// for display only.
func ParseUnverified(raw string) (*Claims, error) {
	tok, err := jwt.Parse([]byte(raw), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, err
	}
	return &Claims{token: tok}, nil
}

type Claims struct {
	token jwt.Token
}

func (c *Claims) Subject() string {
	return c.token.Subject()
}

func (c *Claims) Expiration() time.Time {
	return c.token.Expiration()
}

// Permissions returns the RBAC permissions granted to the token, e.g.
// "get:drinks-detail".
func (c *Claims) Permissions() []string {
	v, ok := c.token.Get(permissionsClaim)
	if !ok {
		return nil
	}

	var perms []string
	switch vv := v.(type) {
	case []string:
		perms = append(perms, vv...)
	case []interface{}:
		for _, p := range vv {
			if s, ok := p.(string); ok {
				perms = append(perms, s)
			}
		}
	}
	return perms
}

func (c *Claims) Can(permission string) bool {
	for _, p := range c.Permissions() {
		if p == permission {
			return true
		}
	}
	return false
}
