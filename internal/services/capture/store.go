package capture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"cornerwatch-go/internal/models"
)

const stillTimeLayout = "20060102_150405"

// MotionName formats a burst still name:
// motion_<YYYYMMDD>_<HHMMSS>_burst<N>_<ProfileCode>_L<Luminance>.jpg
func MotionName(t time.Time, n int, profile models.Profile, luminance float64) string {
	return fmt.Sprintf("motion_%s_burst%d_%s_L%.1f.jpg", t.Format(stillTimeLayout), n, profile.Code(), luminance)
}

// CornerName formats a corner-stop still name:
// corner_<YYYYMMDD>_<HHMMSS>_<ProfileCode>_L<Luminance>.jpg
func CornerName(t time.Time, profile models.Profile, luminance float64) string {
	return fmt.Sprintf("corner_%s_%s_L%.1f.jpg", t.Format(stillTimeLayout), profile.Code(), luminance)
}

// KindOf returns the capture kind from a file name, false for foreign files
func KindOf(name string) (models.StillKind, bool) {
	if !strings.HasSuffix(name, ".jpg") {
		return "", false
	}
	switch {
	case strings.HasPrefix(name, string(models.StillKindMotion)+"_"):
		return models.StillKindMotion, true
	case strings.HasPrefix(name, string(models.StillKindCorner)+"_"):
		return models.StillKindCorner, true
	}
	return "", false
}

// Store writes stills to the loose capture directory. Archival into dated
// directories is done elsewhere; the store only sees top-level files.
type Store struct {
	dir string
}

// NewStore creates the capture directory if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create capture dir: %v", models.ErrStorage, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the capture directory
func (s *Store) Dir() string {
	return s.dir
}

// Write stores data under name via a temp file and rename so readers never see partial files
func (s *Store) Write(name string, data []byte) (models.CapturedStill, error) {
	tmp, err := os.CreateTemp(s.dir, ".partial-*")
	if err != nil {
		return models.CapturedStill{}, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return models.CapturedStill{}, fmt.Errorf("%w: write %s: %v", models.ErrStorage, name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return models.CapturedStill{}, fmt.Errorf("%w: sync %s: %v", models.ErrStorage, name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return models.CapturedStill{}, fmt.Errorf("%w: close %s: %v", models.ErrStorage, name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return models.CapturedStill{}, fmt.Errorf("%w: chmod %s: %v", models.ErrStorage, name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		cleanup()
		return models.CapturedStill{}, fmt.Errorf("%w: rename %s: %v", models.ErrStorage, name, err)
	}

	kind, _ := KindOf(name)
	return models.CapturedStill{
		Name:      name,
		Kind:      kind,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}, nil
}

// List returns the stills in the loose location, newest first
func (s *Store) List() ([]models.CapturedStill, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}

	files := lo.Filter(entries, func(e fs.DirEntry, _ int) bool {
		_, ok := KindOf(e.Name())
		return !e.IsDir() && ok
	})
	stills := lo.FilterMap(files, func(e fs.DirEntry, _ int) (models.CapturedStill, bool) {
		info, err := e.Info()
		if err != nil {
			return models.CapturedStill{}, false
		}
		kind, _ := KindOf(e.Name())
		return models.CapturedStill{
			Name:      e.Name(),
			Kind:      kind,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		}, true
	})

	slices.SortFunc(stills, func(a, b models.CapturedStill) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
	return stills, nil
}

// Path resolves a still name to its file, rejecting anything outside the directory
func (s *Store) Path(name string) (string, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", models.ErrCaptureNotFound, name)
	}
	if _, ok := KindOf(name); !ok {
		return "", fmt.Errorf("%w: %q", models.ErrCaptureNotFound, name)
	}

	p := filepath.Join(s.dir, name)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", models.ErrCaptureNotFound, name)
		}
		return "", fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return p, nil
}

// Read returns the bytes of a still
func (s *Store) Read(name string) ([]byte, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return data, nil
}

// Delete removes a still
func (s *Store) Delete(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return nil
}
