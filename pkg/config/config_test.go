package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def := Default()
	if *cfg != *def {
		t.Errorf("Load = %+v, want %+v", cfg, def)
	}
}

func TestLoadReadsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "notes_tag: notes\nnotes_dir: ~/wiki\nnotes_ext: .txt\nsuppress_on_deleted: true\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.NotesTag != "notes" {
		t.Errorf("NotesTag = %q, want notes", cfg.NotesTag)
	}
	if want := filepath.Join(home, "wiki"); cfg.NotesDir != want {
		t.Errorf("NotesDir = %q, want %q", cfg.NotesDir, want)
	}
	if cfg.NotesExt != ".txt" {
		t.Errorf("NotesExt = %q, want .txt", cfg.NotesExt)
	}
	if !cfg.SuppressOnDeleted {
		t.Error("SuppressOnDeleted = false, want true")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("notes_tag: notes\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TASKWIKI_NOTES_TAG", "fromenv")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.NotesTag != "fromenv" {
		t.Errorf("NotesTag = %q, want fromenv", cfg.NotesTag)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("notes_tag: [unclosed\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load succeeded on malformed YAML")
	}
}

func TestLoadRejectsEmptyTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("notes_tag: \"\"\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted an empty notes_tag")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := &Config{
		NotesTag:          "wiki",
		NotesDir:          filepath.Join(t.TempDir(), "notes"),
		NotesExt:          "md",
		SuppressOnDeleted: true,
	}
	if err := Save(want, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config mode = %o, want 600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}
