package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/cliner/pkg/config"
	"github.com/jingkaihe/cliner/pkg/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate .roomodes and .clinerules",
	Long: `Generate the modes and rules artifacts from the base directory.

Mode documents in <base-dir>/modes are parsed and written, in file name order,
to .roomodes. Rule documents in <base-dir>/rules are concatenated into
.clinerules. Invalid mode documents are skipped with a warning.

Example:
  cliner generate
  cliner generate --base-dir ./config/.cline
  cliner generate --watch --debounce 200`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		g, err := generator.New(cfg)
		if err != nil {
			return err
		}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return g.Watch(ctx)
		}
		return g.Run(ctx)
	},
}

func init() {
	defaults := config.Default()
	generateCmd.Flags().BoolP("watch", "w", false, "Regenerate whenever a mode or rule document changes")
	generateCmd.Flags().IntP("debounce", "d", defaults.Watch.DebounceMs, "Debounce time in milliseconds for file change events")
	generateCmd.Flags().String("modes-output", defaults.ModesOutput, "Path of the generated modes file")
	generateCmd.Flags().String("rules-output", defaults.RulesOutput, "Path of the generated rules file")
	generateCmd.Flags().StringSlice("exclude", nil, "Glob patterns of file names to leave out (repeatable)")

	viper.BindPFlag("watch.debounce_ms", generateCmd.Flags().Lookup("debounce"))
	viper.BindPFlag("modes_output", generateCmd.Flags().Lookup("modes-output"))
	viper.BindPFlag("rules_output", generateCmd.Flags().Lookup("rules-output"))
	viper.BindPFlag("exclude", generateCmd.Flags().Lookup("exclude"))
}
