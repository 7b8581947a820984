package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "taskwiki"
	configFile = "config.yaml"
	envPrefix  = "TASKWIKI"
)

// Config is what the hooks need to know about notes files.
type Config struct {
	// NotesTag marks a task as having a notes file.
	NotesTag string `mapstructure:"notes_tag" yaml:"notes_tag"`
	// NotesDir is where notes files are created, one per task.
	NotesDir string `mapstructure:"notes_dir" yaml:"notes_dir"`
	// NotesExt is the file extension of notes files, with or without the dot.
	NotesExt string `mapstructure:"notes_ext" yaml:"notes_ext"`
	// SuppressOnDeleted leaves notes alone for tasks whose status is deleted.
	SuppressOnDeleted bool `mapstructure:"suppress_on_deleted" yaml:"suppress_on_deleted"`
	// LogFile, when set, receives JSON logs in addition to stderr.
	LogFile string `mapstructure:"log_file" yaml:"log_file,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	notesDir := filepath.Join("~", "vimwiki", "tasks")
	if home, err := os.UserHomeDir(); err == nil {
		notesDir = filepath.Join(home, "vimwiki", "tasks")
	}
	return &Config{
		NotesTag: "wiki",
		NotesDir: notesDir,
		NotesExt: "md",
	}
}

func GetConfigPath() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName, configFile), nil
}

// Load reads the YAML file at path on top of the defaults. A missing file
// is not an error. TASKWIKI_<KEY> environment variables override both.
func Load(path string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("notes_tag", def.NotesTag)
	v.SetDefault("notes_dir", def.NotesDir)
	v.SetDefault("notes_ext", def.NotesExt)
	v.SetDefault("suppress_on_deleted", def.SuppressOnDeleted)
	v.SetDefault("log_file", def.LogFile)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.NotesTag == "" {
		return nil, fmt.Errorf("config %s: notes_tag must not be empty", path)
	}

	var err error
	if cfg.NotesDir, err = expandHome(cfg.NotesDir); err != nil {
		return nil, err
	}
	if cfg.LogFile, err = expandHome(cfg.LogFile); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return encoder.Close()
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
