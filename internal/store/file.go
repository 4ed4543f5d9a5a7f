package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/trustmind/internal/belief"
	"github.com/Harshitk-cp/trustmind/internal/domain"
)

// FileDatasetStore keeps each network dataset as <dir>/<name>.csv.
type FileDatasetStore struct {
	dir string
}

func NewFileDatasetStore(dir string) *FileDatasetStore {
	return &FileDatasetStore{dir: dir}
}

func (s *FileDatasetStore) Dir() string {
	return s.dir
}

func (s *FileDatasetStore) Save(ctx context.Context, name string, episodes []domain.Episode) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &domain.PersistenceError{Op: "mkdir", Path: s.dir, Err: err}
	}
	return belief.SaveEpisodes(belief.TablePath(s.dir, name), episodes)
}

func (s *FileDatasetStore) Load(ctx context.Context, name string) ([]domain.Episode, error) {
	episodes, err := belief.LoadEpisodes(belief.TablePath(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return episodes, err
}

func (s *FileDatasetStore) Exists(ctx context.Context, name string) (bool, error) {
	path := belief.TablePath(s.dir, name)
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &domain.PersistenceError{Op: "stat", Path: path, Err: err}
}

// Names lists the datasets present in the directory, sorted by file name.
func (s *FileDatasetStore) Names() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.csv"))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "glob", Path: s.dir, Err: err}
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".csv"))
	}
	return names, nil
}

// FileClockStore keeps the logical time counter as a single integer in a text file.
type FileClockStore struct {
	path string
}

func NewFileClockStore(path string) *FileClockStore {
	return &FileClockStore{path: path}
}

// Load returns the stored time, or 0 when the file does not exist.
func (s *FileClockStore) Load(ctx context.Context) (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, &domain.PersistenceError{Op: "read", Path: s.path, Err: err}
	}
	line, _, _ := strings.Cut(string(data), "\n")
	t, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, &domain.PersistenceError{Op: "parse", Path: s.path, Err: err}
	}
	return t, nil
}

func (s *FileClockStore) Save(ctx context.Context, t int) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &domain.PersistenceError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	if err := os.WriteFile(s.path, []byte(strconv.Itoa(t)), 0o644); err != nil {
		return &domain.PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}
