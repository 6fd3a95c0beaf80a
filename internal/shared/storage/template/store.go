package template

import (
	"context"
	"io"
)

// Store provides read-only access to named, versioned document templates.
// Template names are flat identifiers like "cv_classic_v1.html".
type Store interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
