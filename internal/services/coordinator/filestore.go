package coordinator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"cornerwatch-go/internal/models"
)

// SettingsStore persists the detection configuration
type SettingsStore interface {
	Load() (models.Settings, error)
	Save(models.Settings) error
}

// FileStore keeps settings in a YAML file
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the file over the defaults; a missing file yields the defaults
func (f *FileStore) Load() (models.Settings, error) {
	s := models.DefaultSettings()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings %s: %w", f.path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return models.DefaultSettings(), fmt.Errorf("failed to parse settings %s: %w", f.path, err)
	}
	return s, nil
}

// Save writes the file through a temp file and rename
func (f *FileStore) Save(s models.Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return nil
}
