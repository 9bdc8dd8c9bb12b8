package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/coffeeshop/cli/config"
)

// getCmd returns the root command writing to fresh buffers, with state from
// earlier executions cleared and a temporary config dir.
func getCmd(t *testing.T) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	L = config.Local{ConfigDir: dir, AuthFileName: "auth", PresetsFileName: "presets.json"}
	C = config.DeploymentConfig{}
	cfgFile = ""
	viper.Reset()
	fixConfig = func(cfg config.DeploymentConfig) config.DeploymentConfig { return cfg }
	openBrowser = func(string) error { return nil }
	resetFlags(rootCmd)

	stderr := new(bytes.Buffer)
	stdout := new(bytes.Buffer)
	cmd := rootCmd
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd, stdout, stderr
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)

	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
