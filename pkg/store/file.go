package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/errors"
)

// FileStore keeps charts as files named <id>.json, <id>.toml, <id>.yaml or
// <id>.yml in one directory. Put writes JSON unless a file in another
// format already exists for the id, in which case that format is kept.
type FileStore struct {
	mu   sync.RWMutex
	dir  string
	opts settings
}

var extensions = []string{".json", ".toml", ".yaml", ".yml"}

// NewFileStore opens dir, creating it if needed.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir, opts: resolve(opts)}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// find returns the existing file for id, or "" when there is none.
func (s *FileStore) find(id string) string {
	for _, ext := range extensions {
		path := filepath.Join(s.dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (s *FileStore) Get(ctx context.Context, id string) (*chart.Chart, error) {
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.find(id)
	if path == "" {
		return nil, notFound(id)
	}
	return chart.ReadFile(path)
}

func (s *FileStore) Put(ctx context.Context, id string, c *chart.Chart) error {
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.find(id)
	if path == "" {
		path = filepath.Join(s.dir, id+".json")
	}
	if err := chart.WriteFile(c, path); err != nil {
		return fmt.Errorf("write chart %s: %w", id, err)
	}
	s.opts.logger.Debug("stored chart", "id", id, "path", path)
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	seen := make(map[string]bool)
	var infos []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		id := strings.TrimSuffix(e.Name(), ext)
		if _, err := chart.FormatFromPath(e.Name()); err != nil || seen[id] || errors.ValidateID(id) != nil {
			continue
		}
		seen[id] = true

		path := filepath.Join(s.dir, e.Name())
		c, err := chart.ReadFile(path)
		if err != nil {
			s.opts.logger.Warn("skipping unreadable chart", "path", path, "err", err)
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, infoOf(id, c, info.ModTime()))
	}
	sortInfos(infos)
	return infos, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ext := range extensions {
		err := os.Remove(filepath.Join(s.dir, id+ext))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove chart %s: %w", id, err)
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
