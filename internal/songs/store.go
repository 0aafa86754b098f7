package songs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	audioExt = ".mp3"

	// dirPermissions is the mode for a freshly created songs directory.
	dirPermissions = 0750

	// filePermissions lets the process write and the group read, enough
	// for a reverse proxy serving the files directly.
	filePermissions = 0640
)

// Store keeps song audio on disk, one <id>.mp3 per song.
type Store struct {
	dir string
}

// NewStore creates the songs directory if it does not exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating songs directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the audio files live in.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk path for a song id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+audioExt)
}

// Save streams audio to <id>.mp3 and returns the byte count. A partial
// write is removed rather than left behind.
func (s *Store) Save(id string, r io.Reader) (int64, error) {
	path := s.Path(id)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()           //nolint:errcheck // discarding the file anyway
		_ = os.Remove(path) //nolint:errcheck
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path) //nolint:errcheck
		return 0, fmt.Errorf("closing %s: %w", path, err)
	}
	return n, nil
}

// Remove deletes the audio file for a song id. A missing file is not
// an error; the row may have outlived it.
func (s *Store) Remove(id string) error {
	if err := os.Remove(s.Path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing song %s: %w", id, err)
	}
	return nil
}

// IDs returns the id of every audio file on disk, sorted.
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading songs directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, audioExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, audioExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// ModTime reports when a song's audio file was last written.
func (s *Store) ModTime(id string) (time.Time, error) {
	info, err := os.Stat(s.Path(id))
	if err != nil {
		return time.Time{}, fmt.Errorf("stat song %s: %w", id, err)
	}
	return info.ModTime().UTC(), nil
}
