package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/amishk599/jobwatch/internal/model"
)

// Ensure FileStore implements model.HistoryStore.
var _ model.HistoryStore = (*FileStore)(nil)

// FileStore keeps posting IDs in a text file, one per line. The file is
// rewritten wholesale on Save via a temp file and rename. An exclusive lock on
// "<path>.lock" is held from Open until Close.
type FileStore struct {
	path string
	lock *flock.Flock
}

// OpenFileStore takes the lock for path. It fails if another process holds it.
func OpenFileStore(path string) (*FileStore, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking history %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("locking history %s: held by another run", path)
	}
	return &FileStore{path: path, lock: lock}, nil
}

// Load reads the history file. A missing file is an empty history.
func (s *FileStore) Load(_ context.Context) (*model.History, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewHistory(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", s.path, err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading history %s: %w", s.path, err)
	}
	return model.NewHistory(ids...), nil
}

// Save writes every id in h to the history file, replacing its contents.
func (s *FileStore) Save(_ context.Context, h *model.History) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("saving history %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	w := bufio.NewWriter(tmp)
	for _, id := range h.IDs() {
		w.WriteString(id)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing history %s: %w", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing history %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing history %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing history %s: %w", s.path, err)
	}
	return nil
}

// Close releases the lock.
func (s *FileStore) Close() error {
	return s.lock.Unlock()
}
