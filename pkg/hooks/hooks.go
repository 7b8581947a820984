// Package hooks decides, for Taskwarrior's on-add and on-modify events,
// whether a task's notes file should be created or removed, and keeps the
// task's annotations pointing at it.
package hooks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/harrisonrobin/taskwiki/pkg/config"
	"github.com/harrisonrobin/taskwiki/pkg/logging"
	"github.com/harrisonrobin/taskwiki/pkg/notes"
	"github.com/harrisonrobin/taskwiki/pkg/taskwarrior"
)

// Feedback is the message Taskwarrior shows the user after the hook ran.
type Feedback = string

// NoteMarker prefixes the annotations this package owns. The annotation
// text is "<NoteMarker> <path>".
const NoteMarker = "taskw:note"

const placeholderContent = "%% Add your notes here"

type Hooks struct {
	cfg *config.Config
	log *zap.SugaredLogger
}

// New returns hooks bound to cfg. A nil logger discards logs.
func New(cfg *config.Config, log *zap.SugaredLogger) *Hooks {
	if log == nil {
		log = logging.Nop()
	}
	return &Hooks{cfg: cfg, log: log}
}

// NoteFilePath is <notes_dir>/<uuid>.<ext>.
func (h *Hooks) NoteFilePath(task *taskwarrior.Task) string {
	name := task.UUID.String()
	if ext := strings.TrimPrefix(h.cfg.NotesExt, "."); ext != "" {
		name += "." + ext
	}
	return filepath.Join(h.cfg.NotesDir, name)
}

// OnAdd creates a notes file for a task added with the notes tag.
func (h *Hooks) OnAdd(task taskwarrior.Task) (taskwarrior.Task, Feedback, error) {
	h.log.Debugw("on-add", "task", task)

	if !task.HasTag(h.cfg.NotesTag) || h.suppressed(&task) {
		return task, "", nil
	}
	return h.attachNotes(task)
}

// OnModify reacts to the notes tag being added to or removed from a task.
func (h *Hooks) OnModify(original, modified taskwarrior.Task) (taskwarrior.Task, Feedback, error) {
	h.log.Debugw("on-modify", "original", original, "modified", modified)

	if h.suppressed(&modified) {
		return modified, "", nil
	}

	had, has := original.HasTag(h.cfg.NotesTag), modified.HasTag(h.cfg.NotesTag)
	switch {
	case !had && has:
		return h.attachNotes(modified)
	case had && !has:
		return h.detachNotes(modified)
	default:
		return modified, "", nil
	}
}

func (h *Hooks) suppressed(task *taskwarrior.Task) bool {
	if h.cfg.SuppressOnDeleted && task.Status == taskwarrior.StatusDeleted {
		h.log.Debugw("leaving notes of deleted task alone", "uuid", task.UUID)
		return true
	}
	return false
}

// attachNotes writes the notes file first; the annotation is only added
// once the file exists.
func (h *Hooks) attachNotes(task taskwarrior.Task) (taskwarrior.Task, Feedback, error) {
	path, err := h.createNotesFile(&task)
	if err != nil {
		return taskwarrior.Task{}, "", err
	}
	// Clip so the append never writes into an array the caller still holds.
	task.Annotations = append(slices.Clip(task.Annotations), noteAnnotation(path))
	return task, fmt.Sprintf("Created notes file at %s", path), nil
}

// detachNotes drops the path annotations and the notes file. A file that
// cannot be removed is reported, not treated as a failure of the hook.
func (h *Hooks) detachNotes(task taskwarrior.Task) (taskwarrior.Task, Feedback, error) {
	task.Annotations = removeNoteAnnotations(task.Annotations)

	path := h.NoteFilePath(&task)
	if err := h.removeNotesFile(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.log.Errorw("could not remove notes file", "path", path, "error", err)
		}
		return task, fmt.Sprintf("No notes file found at %s", path), nil
	}
	return task, fmt.Sprintf("Removed notes file at %s", path), nil
}

func (h *Hooks) createNotesFile(task *taskwarrior.Task) (string, error) {
	path := h.NoteFilePath(task)

	doc := notes.New(path).
		WithHeader(notes.NewHeader(task.Description, notes.DateOf(task.Entry.Time))).
		WithContent(placeholderContent)

	h.log.Debugw("creating notes file", "path", path)
	if err := doc.Write(); err != nil {
		return "", fmt.Errorf("create notes for task %s: %w", task.UUID, err)
	}
	return path, nil
}

func (h *Hooks) removeNotesFile(path string) error {
	h.log.Debugw("removing notes file", "path", path)
	return os.Remove(path)
}

func noteAnnotation(path string) taskwarrior.Annotation {
	return taskwarrior.NewAnnotation(NoteMarker + " " + path)
}

// NotePath returns the notes file path recorded in a, if a is one of the
// annotations this package creates.
func NotePath(a taskwarrior.Annotation) (string, bool) {
	path, ok := strings.CutPrefix(a.Description, NoteMarker+" ")
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

func removeNoteAnnotations(annotations []taskwarrior.Annotation) []taskwarrior.Annotation {
	var kept []taskwarrior.Annotation
	for _, a := range annotations {
		if _, ok := NotePath(a); ok {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
