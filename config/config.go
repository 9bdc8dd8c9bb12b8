// Package config holds the deployment settings the coffee shop client is
// started with: where the backend API lives and how to reach the identity
// provider.
package config

import (
	"errors"
	"sync"
)

// DeploymentConfig is fixed at startup and read-only afterwards.
type DeploymentConfig struct {
	Production   bool       `mapstructure:"production" json:"production" yaml:"production"`
	APIServerURL string     `mapstructure:"api_server_url" json:"api_server_url" yaml:"api_server_url"`
	Auth         AuthConfig `mapstructure:"auth" json:"auth" yaml:"auth"`
}

// AuthConfig describes the application registration at the identity provider.
type AuthConfig struct {
	ProviderDomain string `mapstructure:"provider_domain" json:"provider_domain" yaml:"provider_domain"`
	Audience       string `mapstructure:"audience" json:"audience" yaml:"audience"`
	ClientID       string `mapstructure:"client_id" json:"client_id" yaml:"client_id"`
	CallbackURL    string `mapstructure:"callback_url" json:"callback_url" yaml:"callback_url"`
}

const (
	ProfileDevelopment = "development"
	ProfileProduction  = "production"
)

var ErrUnknownProfile = errors.New("unknown profile")

// Environment reports the build mode the record was created for.
func (c DeploymentConfig) Environment() string {
	if c.Production {
		return ProfileProduction
	}
	return ProfileDevelopment
}

var (
	once    sync.Once
	current DeploymentConfig
)

// Init fixes the process-wide configuration. Only the first call (or the
// first Get) has any effect; the fixed record is returned either way.
func Init(cfg DeploymentConfig) DeploymentConfig {
	once.Do(func() {
		current = cfg
	})
	return current
}

// Get returns the process-wide configuration. If Init was never called the
// development defaults are used.
func Get() DeploymentConfig {
	once.Do(func() {
		current = Default()
	})
	return current
}
