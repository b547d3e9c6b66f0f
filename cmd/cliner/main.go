package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/cliner/pkg/config"
	"github.com/jingkaihe/cliner/pkg/generator"
	"github.com/jingkaihe/cliner/pkg/logger"
	"github.com/jingkaihe/cliner/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("CLINER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.cliner")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()

	config.SetDefaults(viper.GetViper())
}

var rootCmd = &cobra.Command{
	Use:   "cliner",
	Short: "Build .roomodes and .clinerules from a directory of mode and rule documents",
	Long: `cliner reads mode documents from <base-dir>/modes and rule documents from
<base-dir>/rules, and generates the .roomodes and .clinerules files from them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
			return err
		}
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

func main() {
	defaults := config.Default()

	// Add global flags
	rootCmd.PersistentFlags().String("base-dir", defaults.BaseDir, "Directory holding the modes/ and rules/ subdirectories")
	rootCmd.PersistentFlags().String("log-level", defaults.LogLevel, "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", defaults.LogFormat, "Log format (fmt, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output")

	// Bind flags to viper
	viper.BindPFlag("base_dir", rootCmd.PersistentFlags().Lookup("base-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		presenter.Error(err, "")
		if errors.Is(err, generator.ErrBaseDirNotFound) {
			presenter.Info("Run 'cliner init' to create it")
		}
		os.Exit(1)
	}
}
