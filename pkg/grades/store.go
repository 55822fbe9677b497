package grades

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileExt = ".txt"

var ErrNotFound = errors.New("grade file not found")

// Store holds one grade file per course offering, addressed by key (the
// file name without extension).
type Store interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, data []byte) error
}

// validKey rejects keys that could escape the store.
func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, `/\`) && !strings.Contains(key, "..")
}

// Load opens the grade file for key and computes its statistics.
func Load(ctx context.Context, s Store, key string) (Stats, error) {
	if !validKey(key) {
		return Stats{}, ErrNotFound
	}
	f, err := s.Open(ctx, key)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()
	return Compute(key, f)
}

type DirStore struct {
	dir string
}

func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

func (d *DirStore) List(_ context.Context) ([]string, error) {
	files, err := os.ReadDir(d.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(f.Name(), fileExt))
	}
	sort.Strings(keys)
	return keys, nil
}

func (d *DirStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(d.dir, key+fileExt))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

func (d *DirStore) Put(_ context.Context, key string, data []byte) error {
	if !validKey(key) {
		return fmt.Errorf("invalid grade key %q", key)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.dir, key+fileExt), data, 0o644)
}
