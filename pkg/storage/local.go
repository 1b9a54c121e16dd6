package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalArchive implements Archive on the local filesystem.
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates a new local filesystem archive
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

// Save stores a file under <base>/<weekISO>/. An id prefix keeps repeated
// uploads of the same export name from clobbering each other.
func (a *LocalArchive) Save(ctx context.Context, weekISO, filename string, r io.Reader) (*FileInfo, error) {
	weekDir := filepath.Join(a.basePath, weekISO)
	if err := os.MkdirAll(weekDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create week directory: %w", err)
	}

	stored := fmt.Sprintf("%s_%s", uuid.NewString()[:8], sanitizeFilename(filename))
	path := filepath.Join(weekDir, stored)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write archive file: %w", err)
	}

	return &FileInfo{
		Name:    filename,
		Path:    path,
		Size:    size,
		SavedAt: time.Now(),
		WeekISO: weekISO,
	}, nil
}

// List returns the files archived for a week, newest last.
func (a *LocalArchive) List(ctx context.Context, weekISO string) ([]FileInfo, error) {
	weekDir := filepath.Join(a.basePath, weekISO)
	entries, err := os.ReadDir(weekDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var out []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, FileInfo{
			Name:    strippedName(e.Name()),
			Path:    filepath.Join(weekDir, e.Name()),
			Size:    info.Size(),
			SavedAt: info.ModTime(),
			WeekISO: weekISO,
		})
	}
	return out, nil
}

// sanitizeFilename keeps archived names shell and filesystem safe.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// strippedName drops the id prefix added by Save.
func strippedName(stored string) string {
	if i := strings.Index(stored, "_"); i == 8 {
		return stored[i+1:]
	}
	return stored
}
