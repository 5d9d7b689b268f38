// Package filestore persists key-value pairs in a single JSON document on disk, the command-line
// counterpart of browser local storage.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/hrdash/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ storage.Repo = (*Store)(nil)

// ErrCorrupt is returned by Get when the document cannot be parsed
var ErrCorrupt = errors.New("filestore: corrupt document")

type Store struct {
	path string
	lock sync.Mutex
}

// New prepares a store at path, creating its directory with owner-only permissions
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("[filestore.New] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[filestore.New] create directory")
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values := s.readForWrite()
	values[key] = value
	return s.write(values)
}

func (s *Store) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values := s.readForWrite()
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[filestore] read")
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	return values, nil
}

// readForWrite starts from an empty document when the existing one is unreadable,
// so a damaged file is replaced rather than blocking every write.
func (s *Store) readForWrite() map[string]string {
	values, err := s.read()
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Replacing unreadable session file")
		return map[string]string{}
	}
	return values
}

// write replaces the document atomically via a temp file in the same directory
func (s *Store) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[filestore] marshal")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".hrdash-*.tmp")
	if err != nil {
		return errors.Wrap(err, "[filestore] create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filestore] chmod")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filestore] write")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filestore] sync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[filestore] close")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, "[filestore] rename")
	}
	return nil
}
