package util

import (
	"errors"
	"strings"
)

// SanitizeFileName normalizes template and output artifact names. Names are
// flat identifiers: path separators are flattened and traversal patterns
// rejected, so a caller-supplied name can never address another file.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
