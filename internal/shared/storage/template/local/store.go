package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cvbuilder-backend/internal/shared/storage/template"
	"cvbuilder-backend/internal/shared/util"
)

// Store serves templates from a directory on the local filesystem.
type Store struct {
	baseDir string
}

// New creates a template store rooted at baseDir.
func New(baseDir string) template.Store {
	return &Store{baseDir: baseDir}
}

// Open opens a template by name. Names are sanitized so a template name can
// never escape the base directory.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sanitized, err := util.SanitizeFileName(name)
	if err != nil {
		return nil, fmt.Errorf("template name %q: %w", name, err)
	}

	clean := filepath.Clean(sanitized)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid template name %q", name)
	}

	f, err := os.Open(filepath.Join(s.baseDir, clean))
	if err != nil {
		return nil, err
	}
	return f, nil
}
