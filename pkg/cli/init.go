package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskwiki/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and create the notes directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		return initConfig(path, cmd.OutOrStdout())
	},
}

// initConfig keeps an existing config file as it is.
func initConfig(path string, out io.Writer) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote default config to %s\n", path)
	} else if err != nil {
		return fmt.Errorf("could not check config file '%s': %w", path, err)
	} else {
		fmt.Fprintf(out, "Using existing config at %s\n", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.NotesDir, 0700); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}
	fmt.Fprintf(out, "Notes for tasks tagged +%s go to %s\n", cfg.NotesTag, cfg.NotesDir)
	return nil
}
