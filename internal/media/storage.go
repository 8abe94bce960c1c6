// Package media stores uploaded images on local disk and turns the stored
// relative paths into public URLs.
package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidFolder   = errors.New("invalid upload folder")
)

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Folders uploads may be written to.
var Folders = map[string]bool{
	"profile_images":     true,
	"homestay_images":    true,
	"homestay_gallery":   true,
	"room_images":        true,
	"cultural_events":    true,
	"food_items":         true,
	"lifestyle_elements": true,
	"ok_baji":            true,
	"gallery":            true,
	"testimonials":       true,
	"highlights":         true,
}

// Storage writes files below Root. Stored paths are slash separated and
// relative to Root, e.g. "profile_images/<uuid>.jpg".
type Storage struct {
	Root     string
	MaxBytes int64
}

func NewStorage(root string, maxBytes int64) *Storage {
	return &Storage{Root: root, MaxBytes: maxBytes}
}

// Save copies the upload into folder under a fresh name and returns the
// stored path.
func (s *Storage) Save(folder string, fh *multipart.FileHeader) (string, error) {
	if !Folders[folder] {
		return "", ErrInvalidFolder
	}
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	rel := path.Join(folder, uuid.NewString()+ext)
	dst := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}

	var r io.Reader = src
	if s.MaxBytes > 0 {
		r = io.LimitReader(src, s.MaxBytes+1)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.MaxBytes > 0 && n > s.MaxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return rel, nil
}

// Delete removes a stored file. Missing files, empty references and paths
// escaping Root are ignored.
func (s *Storage) Delete(rel string) error {
	rel = strings.TrimSpace(rel)
	if rel == "" || strings.Contains(rel, "://") {
		return nil
	}
	clean := path.Clean("/" + rel)[1:]
	if clean == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
