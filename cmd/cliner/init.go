package main

import (
	"github.com/spf13/cobra"

	"github.com/jingkaihe/cliner/pkg/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the base directory and seed it from global config",
	Long: `Create <base-dir>/modes and <base-dir>/rules, then copy mode and rule
documents from the first global config directory that has them.

Global config directories are checked in order: $XDG_CONFIG_HOME/cliner (or
~/.config/cliner), then ~/.cline. Existing files are never overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		initializer := workspace.NewInitializer(
			workspace.NewPaths(cfg.BaseDir),
			workspace.WithGlobalDirs(cfg.GlobalDirs...),
		)
		_, err = initializer.Initialize(cmd.Context())
		return err
	},
}
