package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	domainRepo "dental-center/internal/domain/repository"

	"github.com/spf13/afero"
)

type fileSlotRepository struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

// NewFileSlotRepository stores each slot as <dir>/<key>.json on fsys.
// Use afero.NewOsFs() for durable storage and afero.NewMemMapFs() for an in-process slot.
func NewFileSlotRepository(fsys afero.Fs, dir string) domainRepo.SlotRepository {
	if dir == "" {
		dir = "."
	}
	return &fileSlotRepository{fs: fsys, dir: dir}
}

// sanitizeKey rejects keys that would escape the slot directory
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return key, nil
}

func (r *fileSlotRepository) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.dir, k+".json"), nil
}

func (r *fileSlotRepository) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := r.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(r.fs, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domainRepo.ErrSlotNotFound
		}
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}
	return data, nil
}

// Write goes through a temp file and a rename so a failed write never truncates the previous document
func (r *fileSlotRepository) Write(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := r.pathFor(key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fs.MkdirAll(r.dir, 0o750); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}
	tmp, err := afero.TempFile(r.fs, r.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := r.fs.Rename(tmpName, p); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("replace slot %s: %w", key, err)
	}
	return nil
}

func (r *fileSlotRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := r.pathFor(key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}
