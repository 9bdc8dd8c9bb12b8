package config

import (
	"github.com/mitchellh/mapstructure"
)

// ToMap converts cfg to the key-value form used by config files. The auth
// section is a nested map.
func ToMap(cfg DeploymentConfig) map[string]interface{} {
	return map[string]interface{}{
		"production":     cfg.Production,
		"api_server_url": cfg.APIServerURL,
		"auth": map[string]interface{}{
			"provider_domain": cfg.Auth.ProviderDomain,
			"audience":        cfg.Auth.Audience,
			"client_id":       cfg.Auth.ClientID,
			"callback_url":    cfg.Auth.CallbackURL,
		},
	}
}

// FromMap decodes a map produced by ToMap, a parsed config file or viper's
// AllSettings. Unknown keys are an error.
func FromMap(m map[string]interface{}) (DeploymentConfig, error) {
	var cfg DeploymentConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return DeploymentConfig{}, err
	}
	if err := dec.Decode(m); err != nil {
		return DeploymentConfig{}, err
	}
	return cfg, nil
}

// Keys lists every setting in dotted form, e.g. "auth.client_id".
func Keys() []string {
	return []string{
		"production",
		"api_server_url",
		"auth.provider_domain",
		"auth.audience",
		"auth.client_id",
		"auth.callback_url",
	}
}
