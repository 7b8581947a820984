// Package cli wires the taskwiki commands: the two Taskwarrior hooks and
// the helpers around them.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harrisonrobin/taskwiki/pkg/config"
	"github.com/harrisonrobin/taskwiki/pkg/logging"
)

var (
	debug      bool
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "taskwiki",
		Short: "Taskwarrior hooks that keep a notes file for each tagged task",
		Long: `taskwiki is called by Taskwarrior's on-add and on-modify hooks.

When a task gains the notes tag, a notes file is created for it and its path
is annotated on the task. When the tag is removed, the file and the
annotation go away again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/taskwiki/config.yaml)")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(onAddCmd)
	rootCmd.AddCommand(onModifyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(showCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// setup loads the configuration and builds the logger every command uses.
func setup() (*config.Config, *zap.SugaredLogger, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, nil, fmt.Errorf("could not find path to configuration file: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(logging.Options{Debug: debug, File: cfg.LogFile})
	log.Debugw("loaded config", "path", path, "config", cfg)
	return cfg, log, nil
}
