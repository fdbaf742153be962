package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/aquamarinepk/aqm"
	"gopkg.in/yaml.v3"
)

const DefaultFilePath = "kds-settings.yaml"

type fileSettings struct {
	SoundDisabled bool `yaml:"kds-sound-disabled"`
}

// FileStore keeps preferences in a YAML file on the display host.
type FileStore struct {
	path   string
	logger aqm.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, logger aqm.Logger) *FileStore {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if path == "" {
		path = DefaultFilePath
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) SoundDisabled(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.read()
	if err != nil {
		return false, err
	}
	return cfg.SoundDisabled, nil
}

func (s *FileStore) SetSoundDisabled(ctx context.Context, disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.read()
	if err != nil {
		s.logger.Info("overwriting unreadable settings file", "path", s.path, "error", err)
		cfg = fileSettings{}
	}
	cfg.SoundDisabled = disabled
	return s.write(cfg)
}

func (s *FileStore) read() (fileSettings, error) {
	var cfg fileSettings
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse settings: %w", err)
	}
	return cfg, nil
}

// write replaces the file atomically so a crash never leaves it half written.
func (s *FileStore) write(cfg fileSettings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".kds-settings-*")
	if err != nil {
		return fmt.Errorf("cannot create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("cannot replace settings: %w", err)
	}
	return nil
}
