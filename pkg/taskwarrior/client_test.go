package taskwarrior

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestParseTask(t *testing.T) {
	input := `{
		"uuid": "f45a05b3-c12e-42e5-9c9c-333333333333",
		"description": "Buy milk",
		"status": "pending",
		"entry": "20230101T110000Z",
		"due": "20230101T120000Z",
		"project": "Groceries",
		"tags": ["buy", "food"],
		"annotations": [
			{"entry": "20230101T120500Z", "description": "Don't forget almond milk"}
		]
	}`

	client := NewClient()
	task, err := client.ParseTask(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTask failed: %v", err)
	}

	if task.UUID.String() != "f45a05b3-c12e-42e5-9c9c-333333333333" {
		t.Errorf("Expected UUID f45a05b3-c12e-42e5-9c9c-333333333333, got %s", task.UUID)
	}
	if task.Description != "Buy milk" {
		t.Errorf("Expected Description 'Buy milk', got '%s'", task.Description)
	}
	if task.Project == nil || *task.Project != "Groceries" {
		t.Errorf("Expected Project 'Groceries', got %v", task.Project)
	}
	if len(task.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(task.Tags))
	}
	if len(task.Annotations) != 1 {
		t.Errorf("Expected 1 annotation, got %d", len(task.Annotations))
	}
	expectedEntry, _ := time.Parse(time.RFC3339, "2023-01-01T11:00:00Z")
	if !task.Entry.Time.Equal(expectedEntry) {
		t.Errorf("Expected Entry %v, got %v", expectedEntry, task.Entry.Time)
	}
	if string(task.UnknownFields["due"]) != `"20230101T120000Z"` {
		t.Errorf("Expected due to pass through, got %s", task.UnknownFields["due"])
	}
}

func TestParseTasksReadsOriginalAndModifiedLines(t *testing.T) {
	input := `{"uuid":"dde3720b-003f-4776-8e15-61e5d90376af","status":"pending","entry":"20220110T171619Z","description":"a"}
{"uuid":"dde3720b-003f-4776-8e15-61e5d90376af","status":"pending","entry":"20220110T171619Z","description":"a","tags":["wiki"]}
`
	tasks, err := NewClient().ParseTasks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].HasTag("wiki") || !tasks[1].HasTag("wiki") {
		t.Errorf("Expected only the second task to carry wiki, got %v and %v", tasks[0].Tags, tasks[1].Tags)
	}
}

func TestParseTaskRejectsInvalidTask(t *testing.T) {
	input := `{"uuid":"dde3720b-003f-4776-8e15-61e5d90376af","status":"bogus","entry":"20220110T171619Z"}`
	_, err := NewClient().ParseTask(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected error for unknown status")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected a DecodeError, got %T: %v", err, err)
	}
	if decodeErr.Field != "status" {
		t.Errorf("Expected failing field status, got %q", decodeErr.Field)
	}
	if want := `task 1: failed to decode task json: field "status": `; !strings.HasPrefix(err.Error(), want) {
		t.Errorf("Expected error to start with %q, got %q", want, err.Error())
	}
}

func TestParseTaskRequiresExactlyOne(t *testing.T) {
	if _, err := NewClient().ParseTask(strings.NewReader("")); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestGetTasksRunsExport(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for task needs a POSIX shell")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "task")
	body := `#!/bin/sh
echo "$@" > "` + filepath.Join(dir, "args") + `"
echo '[{"uuid":"dde3720b-003f-4776-8e15-61e5d90376af","status":"pending","entry":"20220110T171619Z","description":"Plan trip"}]'
`
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatalf("write stand-in: %v", err)
	}

	client := &Client{Binary: script}
	tasks, err := client.GetTasks([]string{"+wiki"})
	if err != nil {
		t.Fatalf("GetTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "Plan trip" {
		t.Fatalf("Expected one task 'Plan trip', got %v", tasks)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if got := strings.TrimSpace(string(args)); got != "+wiki export rc.hooks=0" {
		t.Errorf("Expected args '+wiki export rc.hooks=0', got %q", got)
	}
}

func TestGetTasksReportsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for task needs a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "task")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho nope >&2\nexit 2\n"), 0755); err != nil {
		t.Fatalf("write stand-in: %v", err)
	}
	_, err := (&Client{Binary: script}).GetTasks(nil)
	if err == nil || !strings.Contains(err.Error(), "exit code 2") {
		t.Errorf("Expected exit code 2 in error, got %v", err)
	}
}
