package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskwiki/pkg/hooks"
	"github.com/harrisonrobin/taskwiki/pkg/taskwarrior"
)

var onAddCmd = &cobra.Command{
	Use:   "on-add",
	Short: "Run as Taskwarrior's on-add hook",
	Long: `Reads the added task as one JSON line on stdin and prints the task,
possibly annotated, followed by a feedback line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()
		return runOnAdd(cmd.InOrStdin(), cmd.OutOrStdout(), hooks.New(cfg, log))
	},
}

var onModifyCmd = &cobra.Command{
	Use:   "on-modify",
	Short: "Run as Taskwarrior's on-modify hook",
	Long: `Reads the original and the modified task as two JSON lines on stdin and
prints the modified task, possibly changed, followed by a feedback line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()
		return runOnModify(cmd.InOrStdin(), cmd.OutOrStdout(), hooks.New(cfg, log))
	},
}

func runOnAdd(in io.Reader, out io.Writer, h *hooks.Hooks) error {
	task, err := taskwarrior.NewClient().ParseTask(in)
	if err != nil {
		return err
	}
	task, feedback, err := h.OnAdd(task)
	if err != nil {
		return err
	}
	return writeResult(out, task, feedback)
}

func runOnModify(in io.Reader, out io.Writer, h *hooks.Hooks) error {
	tasks, err := taskwarrior.NewClient().ParseTasks(in)
	if err != nil {
		return err
	}
	if len(tasks) != 2 {
		return fmt.Errorf("on-modify expects 2 tasks on stdin, got %d", len(tasks))
	}
	task, feedback, err := h.OnModify(tasks[0], tasks[1])
	if err != nil {
		return err
	}
	return writeResult(out, task, feedback)
}

// writeResult follows the hook protocol: the task as one JSON line, then
// feedback for the user if there is any.
func writeResult(out io.Writer, task taskwarrior.Task, feedback hooks.Feedback) error {
	b, err := taskwarrior.Encode(task)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "%s\n", b); err != nil {
		return err
	}
	if feedback != "" {
		if _, err := fmt.Fprintln(out, feedback); err != nil {
			return err
		}
	}
	return nil
}
