package config

import "fmt"

// Development defaults. Replace per deployment through the environment or
// a config file rather than editing these.
const (
	DefaultAPIServerURL   = "http://127.0.0.1:5000"
	DefaultProviderDomain = "dev-12hz4kn5.eu.auth0.com"
	DefaultAudience       = "my-app"
	DefaultClientID       = "X6Dv6424VbmwHwKlFkIQfJSsfWZpt8eI"
	DefaultCallbackURL    = "http://localhost:8100"
)

func Default() DeploymentConfig {
	return DeploymentConfig{
		Production:   false,
		APIServerURL: DefaultAPIServerURL,
		Auth: AuthConfig{
			ProviderDomain: DefaultProviderDomain,
			Audience:       DefaultAudience,
			ClientID:       DefaultClientID,
			CallbackURL:    DefaultCallbackURL,
		},
	}
}

// Profile returns the defaults for a named build profile. An empty name
// selects development.
func Profile(name string) (DeploymentConfig, error) {
	cfg := Default()
	switch name {
	case "", ProfileDevelopment:
		return cfg, nil
	case ProfileProduction:
		cfg.Production = true
		return cfg, nil
	}
	return DeploymentConfig{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}
