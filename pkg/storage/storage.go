// Package storage archives ingested workbooks so a week's raw inputs can be
// re-examined after the fact.
package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo describes one archived file.
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	SavedAt time.Time
	WeekISO string
}

// Archive stores raw export files keyed by the ISO week they were ingested
// for.
type Archive interface {
	// Save stores one file under the week's folder and returns its info.
	Save(ctx context.Context, weekISO, filename string, r io.Reader) (*FileInfo, error)

	// List returns the files archived for a week.
	List(ctx context.Context, weekISO string) ([]FileInfo, error)
}
