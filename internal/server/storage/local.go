package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/cryptoestate/internal/filex"
)

// LocalStorage writes files under a root directory. The HTTP layer serves
// that directory at BaseURL.
type LocalStorage struct {
	Root    string
	BaseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStorage{Root: root, BaseURL: baseURL}, nil
}

func (s *LocalStorage) Save(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := s.path(key)
	if err != nil {
		return "", err
	}

	if err := filex.WriteFileAtomic(target, data, 0o640); err != nil {
		return "", fmt.Errorf("save %s: %w", key, err)
	}

	return joinURL(s.BaseURL, key), nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) path(key string) (string, error) {
	target := filepath.Join(s.Root, filepath.FromSlash(key))
	if !strings.HasPrefix(target, s.Root+string(filepath.Separator)) {
		return "", fmt.Errorf("storage key %q escapes upload root", key)
	}
	return target, nil
}
