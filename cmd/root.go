package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coffeeshop/cli/config"
	"github.com/coffeeshop/cli/render"
)

// C is the deployment config the process was started with.
var C config.DeploymentConfig

// L is the local state location, filled from the environment by main.
var L config.Local

var version = "unknown"

var cfgFile string

// fixConfig makes the loaded record the process-wide one.
var fixConfig = config.Init

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coffee",
	Short: "Coffee shop command",
	Long:  `Coffee shop commandline tool`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetOutput(cmd.ErrOrStderr())
		log.SetFormatter(&PlainFormatter{})

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}

		format, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		r, err := render.ForFormat(format)
		if err != nil {
			return UserError{Msg: "invalid --output", Err: err}
		}
		cmd.SetContext(render.WithCtx(cmd.Context(), r))

		return nil
	},
}

// ExecuteCLI adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func ExecuteCLI() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/coffee/coffee.yaml)")
	rootCmd.PersistentFlags().StringP("url", "u", "", "API server URL (overrides api_server_url)")
	rootCmd.PersistentFlags().String("env", "", "build profile: development or production")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringP("output", "o", "plain", "output format: plain, json or template=<go template>")
}

// initConfig reads in config file, presets and ENV variables if set.
func initConfig() {
	if L.ConfigDir == "" {
		l, err := config.LoadLocal()
		cobra.CheckErr(err)
		L = l
	}

	v := viper.GetViper()
	v.SetEnvPrefix(config.EnvPrefix)
	if err := v.BindEnv("env"); err != nil {
		log.Error("failed to bind environment variable: ENV.")
		cobra.CheckErr(err)
	}
	if err := v.BindPFlag("env", rootCmd.PersistentFlags().Lookup("env")); err != nil {
		cobra.CheckErr(err)
	}
	if f := rootCmd.PersistentFlags().Lookup("url"); f.Changed {
		v.Set("api_server_url", f.Value.String())
	}

	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(L.ConfigDir)
		v.SetConfigType("yaml")
		v.SetConfigName("coffee")
	}

	// If a config file is found, read it in.
	if err := v.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", v.ConfigFileUsed())
	} else if cfgFile != "" {
		cobra.CheckErr(err)
	}

	presets, err := getPresets(L.PresetsFile())
	cobra.CheckErr(err)
	if len(presets) > 0 {
		cobra.CheckErr(v.MergeConfigMap(nest(presets)))
	}

	cfg, err := config.Load(v, v.GetString("env"))
	cobra.CheckErr(err)

	C = fixConfig(cfg)
}

// getPresets reads the flat presets file written by `coffee config`. A
// missing file means no presets.
func getPresets(file string) (map[string]interface{}, error) {
	b, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var presets map[string]interface{}
	if err := json.Unmarshal(b, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// nest turns {"auth.client_id": "x"} into {"auth": {"client_id": "x"}}.
func nest(flat map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for k, v := range flat {
		parts := strings.Split(k, ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]interface{})
			if !ok {
				next = map[string]interface{}{}
				m[p] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = v
	}
	return out
}

func ensureDir(file string) error {
	return os.MkdirAll(filepath.Dir(file), 0700)
}

// output writes v to stdout in the format chosen with --output.
func output(cmd *cobra.Command, v any) error {
	return render.Ctx(cmd.Context()).Render(cmd.OutOrStdout(), v)
}
