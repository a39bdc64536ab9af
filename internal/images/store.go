package images

import (
	"auction-marketplace/internal/auctionerrors"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// extensions maps accepted content types to file extensions
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Store keeps auction hero images as files under a single directory
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a Store rooted at dir on the given filesystem
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// NewOsStore creates a Store on the local disk, creating dir if needed
func NewOsStore(dir string) (*Store, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", dir, err)
	}
	return NewStore(osFs, dir), nil
}

// Extension returns the file extension for a supported image content type
func Extension(contentType string) (string, error) {
	ext, ok := extensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("content type %q: %w", contentType, auctionerrors.ErrInvalidImageType)
	}
	return ext, nil
}

// ContentType returns the content type for a stored filename
func ContentType(filename string) string {
	ext := path.Ext(filename)
	for ct, e := range extensions {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}

// AuctionFilename returns the filename an auction's image is stored under
func AuctionFilename(auctionID int64, ext string) string {
	return fmt.Sprintf("auction_%d%s", auctionID, ext)
}

// Put writes an auction image and returns the stored filename
func (s *Store) Put(auctionID int64, contentType string, data []byte) (string, error) {
	ext, err := Extension(contentType)
	if err != nil {
		return "", err
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory %s: %w", s.dir, err)
	}

	name := AuctionFilename(auctionID, ext)
	if err := afero.WriteFile(s.fs, path.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", name, err)
	}
	return name, nil
}

// Get reads a stored image by filename
func (s *Store) Get(filename string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path.Join(s.dir, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read image %s: %w", filename, auctionerrors.ErrImageNotFound)
		}
		return nil, fmt.Errorf("failed to read image %s: %w", filename, err)
	}
	return data, nil
}

// RemoveStale deletes stored images for the auction other than keep, such as
// an earlier upload in another format. It reports whether any were removed.
func (s *Store) RemoveStale(auctionID int64, keep string) (bool, error) {
	removed := false
	for _, ext := range []string{".jpg", ".png", ".gif"} {
		filename := AuctionFilename(auctionID, ext)
		if filename == keep {
			continue
		}
		name := path.Join(s.dir, filename)
		exists, err := afero.Exists(s.fs, name)
		if err != nil {
			return removed, fmt.Errorf("failed to stat image %s: %w", name, err)
		}
		if !exists {
			continue
		}
		if err := s.fs.Remove(name); err != nil {
			return removed, fmt.Errorf("failed to remove image %s: %w", name, err)
		}
		removed = true
	}
	return removed, nil
}
