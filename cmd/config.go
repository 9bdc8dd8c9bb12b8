package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/coffeeshop/cli/config"
)

var configCmd = &cobra.Command{
	Use:   "config <key> <value>",
	Short: "Configure and save persistent parameters for the coffee shop client",
	Long: `Configure and save persistent parameters for the coffee shop client.

Use the configure option to set global parameters and save to a json file for later use.
Values saved here are overridden by COFFEE_* environment variables and flags.`,
	Args: cobra.ArbitraryArgs,
	RunE: silenceUsage(Config),
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective deployment configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output(cmd, configView(C))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func Config(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		// No args, so print current config options
		cmd.Println("Here are the configurable options:")
		cmd.Println(strings.Join(config.Keys(), ", "))
		return nil
	}

	if len(args) != 2 {
		return cmd.Usage()
	}
	key := args[0]
	value := args[1]
	if !checkValidKey(key, config.Keys()) {
		return UserError{
			Msg: fmt.Sprintf("not a valid key: %s", key),
			Err: fmt.Errorf("valid keys are: %+v", config.Keys()),
		}
	}

	configFile := L.PresetsFile()

	if !fileExists(configFile) {
		if err := ensureDir(configFile); err != nil {
			return err
		}
		if err := os.WriteFile(configFile, []byte("{}"), 0600); err != nil {
			return err
		}
	}
	return UpdateConfigFileJSON(configFile, key, value)
}

func UpdateConfigFileJSON(jsonFile string, key string, value string) error {
	// Read json buffer from jsonFile
	var presets map[string]interface{}

	readBytes, err := os.ReadFile(jsonFile)
	if err != nil {
		return err
	}

	err = json.Unmarshal(readBytes, &presets)
	if err != nil {
		return err
	}
	if presets == nil {
		presets = map[string]interface{}{}
	}

	presets[key] = value

	writeBytes, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(jsonFile, writeBytes, 0600)
}

func checkValidKey(key string, keys []string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// configView renders as key/value rows in a table and as the nested
// config-file shape in JSON.
type configView config.DeploymentConfig

func (c configView) Header() table.Row {
	return table.Row{"Key", "Value"}
}

func (c configView) Rows() []table.Row {
	cfg := config.DeploymentConfig(c)
	return []table.Row{
		{"environment", cfg.Environment()},
		{"production", cfg.Production},
		{"api_server_url", cfg.APIServerURL},
		{"auth.provider_domain", cfg.Auth.ProviderDomain},
		{"auth.audience", cfg.Auth.Audience},
		{"auth.client_id", cfg.Auth.ClientID},
		{"auth.callback_url", cfg.Auth.CallbackURL},
	}
}

func (c configView) MarshalJSON() ([]byte, error) {
	return json.Marshal(config.ToMap(config.DeploymentConfig(c)))
}
