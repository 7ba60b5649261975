package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/andywolf/langloc/internal/config"
	"github.com/andywolf/langloc/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	configReadErr error
)

var rootCmd = &cobra.Command{
	Use:   "langloc",
	Short: "langloc - language localizer for fMRI and behavioural sessions",
	Long: `langloc runs the Fedorenko et al. (2010) language localizer.

Sentences and pseudo-word sequences are presented one word at a time,
each followed by an attention check, with a fixation block after every
12 sentences. Runs wait for the scanner trigger and log every trial,
phase and key press to a JSONL event file.

Example:
  langloc init
  langloc run --subject 1 --run 1 --set 1`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "settings", "", "settings file (default is ./settings.yml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix("LANGLOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configReadErr = viper.ReadInConfig()
	if configReadErr == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using settings file:", viper.ConfigFileUsed())
	}
}

// loadSettings loads and validates the settings. A settings file named with
// --settings must be readable; without one, validation reports what is
// missing.
func loadSettings() (*config.Config, error) {
	if configReadErr != nil && cfgFile != "" {
		return nil, fmt.Errorf("failed to read settings file: %w", configReadErr)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		if configReadErr != nil {
			return nil, fmt.Errorf("%w (no settings file found; run 'langloc init' to create one)", err)
		}
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}
