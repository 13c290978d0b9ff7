package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

const filePerm = 0o600

// FileStore keeps the record set in a single JSON document on disk.
//
// Other processes (accountctl) may replace the file while a server holds it
// open. All notices that through the file's identity, size and modification
// time and reloads before returning a snapshot.
type FileStore struct {
	path  string
	mu    sync.RWMutex
	users []*models.User
	seen  os.FileInfo // state of the file users was read from or written to
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, users: []*models.User{}}
}

func (s *FileStore) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, info, err := s.read()
	if err != nil {
		return err
	}

	if doc.Users == nil {
		// nothing persisted yet
		s.users = []*models.User{}
		return s.write(s.users)
	}

	s.users = doc.Users
	s.seen = info
	return nil
}

// All returns a snapshot of the latest durable state. If the file changed
// on disk but can't be read, the previous snapshot is returned.
func (s *FileStore) All() []*models.User {
	s.refresh()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAll(s.users)
}

func (s *FileStore) refresh() {
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}

	s.mu.RLock()
	current := sameState(s.seen, info)
	s.mu.RUnlock()
	if current {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sameState(s.seen, info) {
		return
	}
	doc, seen, err := s.read()
	if err != nil || doc.Users == nil {
		return
	}
	s.users = doc.Users
	s.seen = seen
}

// read must be called with s.mu held. A missing file yields an empty
// document and a nil FileInfo.
func (s *FileStore) read() (document, os.FileInfo, error) {
	var doc document

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil, nil
	}
	if err != nil {
		return doc, nil, fmt.Errorf("%w: read %s: %w", common.ErrStorage, s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return doc, nil, fmt.Errorf("%w: stat %s: %w", common.ErrStorage, s.path, err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return doc, nil, fmt.Errorf("%w: read %s: %w", common.ErrStorage, s.path, err)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return doc, nil, fmt.Errorf("%w: decode %s: %w", common.ErrStorage, s.path, err)
		}
	}
	return doc, info, nil
}

func sameState(seen, now os.FileInfo) bool {
	return seen != nil &&
		os.SameFile(seen, now) &&
		seen.Size() == now.Size() &&
		seen.ModTime().Equal(now.ModTime())
}

func (s *FileStore) Persist(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(s.users)
}

func (s *FileStore) Replace(ctx context.Context, users []*models.User) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	next := cloneAll(users)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(next); err != nil {
		return err
	}
	s.users = next
	return nil
}

// write must be called with s.mu held.
func (s *FileStore) write(users []*models.User) error {
	data, err := json.MarshalIndent(document{Users: users}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", common.ErrStorage, err)
	}

	if err := filex.WriteFileAtomic(s.path, data, filePerm); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	// A failed stat only costs one extra reload on the next read.
	s.seen, _ = os.Stat(s.path)
	return nil
}
