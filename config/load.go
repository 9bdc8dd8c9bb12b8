package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, so auth.client_id
// is read from COFFEE_AUTH_CLIENT_ID.
const EnvPrefix = "COFFEE"

// Load resolves the deployment record from v. The named profile provides the
// defaults; anything set on v (config file, flags, presets) or in the
// environment overrides them. Values are not validated here.
func Load(v *viper.Viper, profile string) (DeploymentConfig, error) {
	base, err := Profile(profile)
	if err != nil {
		return DeploymentConfig{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("production", base.Production)
	v.SetDefault("api_server_url", base.APIServerURL)
	v.SetDefault("auth.provider_domain", base.Auth.ProviderDomain)
	v.SetDefault("auth.audience", base.Auth.Audience)
	v.SetDefault("auth.client_id", base.Auth.ClientID)
	v.SetDefault("auth.callback_url", base.Auth.CallbackURL)

	for _, key := range Keys() {
		if err := v.BindEnv(key); err != nil {
			return DeploymentConfig{}, err
		}
	}
	v.AutomaticEnv()

	var cfg DeploymentConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return DeploymentConfig{}, err
	}
	return cfg, nil
}
