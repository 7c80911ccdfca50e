package exportsink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"peopledir/internal/domain"
	"peopledir/internal/ports"
)

// Filesystem writes exports under a root directory. Existing files are
// never overwritten; a numeric suffix is added instead.
type Filesystem struct {
	root string
}

var _ ports.ExportSink = (*Filesystem)(nil)

// NewFilesystem returns a sink rooted at root, creating it if needed
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Filesystem{root: abs}, nil
}

// Root returns the directory exports are written to
func (s *Filesystem) Root() string {
	return s.root
}

// Write stores file and returns its path
func (s *Filesystem) Write(ctx context.Context, file domain.ExportFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := sanitizeName(file.Name)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		target := filepath.Join(s.root, candidate)
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create export file: %w", err)
		}
		if _, err := f.Write(file.Data); err != nil {
			f.Close()
			_ = os.Remove(target)
			return "", fmt.Errorf("write export file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(target)
			return "", fmt.Errorf("write export file: %w", err)
		}
		return target, nil
	}
	return "", fmt.Errorf("too many exports named %s", name)
}
