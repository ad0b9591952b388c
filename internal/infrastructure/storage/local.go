package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/seafresh/backend/internal/domain"
)

// ImageStore reads uploaded images below a root directory
type ImageStore struct {
	fs afero.Fs
}

// NewImageStore roots fsys at dir. Paths handed to ReadBytes are relative to dir.
func NewImageStore(fsys afero.Fs, dir string) *ImageStore {
	return &ImageStore{fs: afero.NewBasePathFs(fsys, dir)}
}

// NewOSImageStore is NewImageStore over the real filesystem
func NewOSImageStore(dir string) *ImageStore {
	return NewImageStore(afero.NewOsFs(), dir)
}

// ReadBytes returns the content stored at p
func (s *ImageStore) ReadBytes(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean, err := cleanPath(p)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrImageNotFound, p)
		}
		return nil, fmt.Errorf("read image %s: %w", p, err)
	}
	return data, nil
}

// cleanPath rejects empty paths and anything that climbs out of the root
func cleanPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty image path", domain.ErrInvalidRequest)
	}

	normalized := strings.ReplaceAll(p, "\\", "/")
	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: image path escapes storage root", domain.ErrInvalidRequest)
		}
	}
	return path.Clean("/" + normalized), nil
}
