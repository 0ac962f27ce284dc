package videostore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/videocollect/internal/model"
)

// FileInfo describes a stored video file
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store keeps uploaded video bytes as flat files in one directory
type Store struct {
	dir string
}

// New creates the directory if needed and returns a store rooted at it
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create video directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory
func (s *Store) Dir() string {
	return s.dir
}

// ValidateName rejects names that could escape the video directory
func ValidateName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return model.ErrInvalidFilename
	}
	return nil
}

// ErrExists is returned by Create when name is already taken
var ErrExists = errors.New("video file already exists")

// Save writes r to name, replacing any existing file. Bytes go to a temp
// file that is renamed into place, so a failed write never leaves a partial
// file under name.
func (s *Store) Save(name string, r io.Reader) (int64, error) {
	return s.write(name, r, func(tmpName, final string) error {
		return os.Rename(tmpName, final)
	})
}

// Create writes r to name like Save but fails with ErrExists instead of
// replacing a file that is already there.
func (s *Store) Create(name string, r io.Reader) (int64, error) {
	return s.write(name, r, func(tmpName, final string) error {
		err := os.Link(tmpName, final)
		if errors.Is(err, fs.ErrExist) {
			return ErrExists
		}
		return err
	})
}

func (s *Store) write(name string, r io.Reader, place func(tmpName, final string) error) (int64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once renamed
		_ = os.Remove(tmpName)
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("write video: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("write video: %w", err)
	}
	if err := place(tmpName, filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, ErrExists) {
			return 0, err
		}
		return 0, fmt.Errorf("store video: %w", err)
	}
	return n, nil
}

// Open returns the named file for reading
func (s *Store) Open(name string) (*os.File, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrVideoFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	return f, nil
}

// Exists reports whether the named file is present
func (s *Store) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the named file; a missing file is not an error
func (s *Store) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove video: %w", err)
	}
	return nil
}

// List returns files that follow the upload naming scheme, sorted by name
func (s *Store) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !model.IsVideoFilename(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
