package taskwarrior

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Client talks to the task binary and reads the task stream a hook receives.
type Client struct {
	// Binary is the Taskwarrior executable, "task" unless overridden.
	Binary string
}

func NewClient() *Client {
	return &Client{Binary: "task"}
}

// GetTasks runs `task <filter> export` with hooks disabled, so calling it
// from inside a hook cannot recurse.
func (c *Client) GetTasks(filter []string) ([]Task, error) {
	args := append(append([]string{}, filter...), "export", "rc.hooks=0")
	cmd := exec.Command(c.Binary, args...)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}

	var tasks []Task
	if err := json.Unmarshal(output, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal taskwarrior output: %w", err)
	}
	return tasks, nil
}

// ParseTask parses exactly one task JSON from an io.Reader.
func (c *Client) ParseTask(r io.Reader) (Task, error) {
	tasks, err := c.ParseTasks(r)
	if err != nil {
		return Task{}, err
	}
	if len(tasks) != 1 {
		return Task{}, fmt.Errorf("expected 1 task on input, got %d", len(tasks))
	}
	return tasks[0], nil
}

// ParseTasks parses consecutive JSON objects from an io.Reader, as sent by
// on-modify which writes the original task line followed by the modified one.
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	var tasks []Task
	decoder := json.NewDecoder(r)
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("task %d: %w", len(tasks)+1, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
