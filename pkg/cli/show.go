package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskwiki/pkg/hooks"
	"github.com/harrisonrobin/taskwiki/pkg/notes"
	"github.com/harrisonrobin/taskwiki/pkg/taskwarrior"
)

var showCmd = &cobra.Command{
	Use:   "show [filter...]",
	Short: "Print the notes of the tasks matching a Taskwarrior filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()
		return runShow(cmd.OutOrStdout(), taskwarrior.NewClient(), hooks.New(cfg, log), args)
	},
}

func runShow(out io.Writer, client *taskwarrior.Client, h *hooks.Hooks, filter []string) error {
	tasks, err := client.GetTasks(filter)
	if err != nil {
		return err
	}
	for i := range tasks {
		task := &tasks[i]
		doc, err := notes.Open(notesPath(h, task))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		printDocument(out, task, doc)
	}
	return nil
}

// notesPath prefers the path the task was annotated with, which survives a
// later change of notes_dir.
func notesPath(h *hooks.Hooks, task *taskwarrior.Task) string {
	path := h.NoteFilePath(task)
	for _, a := range task.Annotations {
		if p, ok := hooks.NotePath(a); ok {
			path = p
		}
	}
	return path
}

func printDocument(out io.Writer, task *taskwarrior.Task, doc *notes.Document) {
	fmt.Fprintf(out, "== %s\n", doc.Path)
	fmt.Fprintf(out, "Task:     %s (%s)\n", task.Description, task.UUID)
	if h := doc.Header; h != nil {
		fmt.Fprintf(out, "Title:    %s\n", h.Title)
		if !h.Date.IsZero() {
			fmt.Fprintf(out, "Date:     %s\n", h.Date)
		}
		if len(h.Keywords) > 0 {
			fmt.Fprintf(out, "Keywords: %s\n", strings.Join(h.Keywords, ", "))
		}
	}
	fmt.Fprintf(out, "\n%s\n\n", doc.Content)
}
