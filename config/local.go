package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Local is where the CLI keeps its own state on this machine. It is not part
// of the deployment record.
type Local struct {
	ConfigDir       string `envconfig:"CONFIG_DIR"`
	AuthFileName    string `envconfig:"AUTH_FILE_NAME" default:"auth"`
	PresetsFileName string `envconfig:"PRESETS_FILE_NAME" default:"presets.json"`

	// Dev only
	Insecure bool `envconfig:"DEV_DISABLE_SSL" default:"false"`
}

// LoadLocal reads COFFEE_* variables. ConfigDir falls back to
// $HOME/.config/coffee.
func LoadLocal() (Local, error) {
	var l Local
	if err := envconfig.Process(EnvPrefix, &l); err != nil {
		return Local{}, err
	}

	if l.ConfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Local{}, err
		}
		l.ConfigDir = filepath.Join(home, ".config", "coffee")
	}

	return l, nil
}

func (l Local) AuthFile() string {
	return filepath.Join(l.ConfigDir, l.AuthFileName)
}

func (l Local) PresetsFile() string {
	return filepath.Join(l.ConfigDir, l.PresetsFileName)
}
