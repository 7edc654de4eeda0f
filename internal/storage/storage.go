package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Upload folders under the storage root.
const (
	ProfilePictures = "profile-pictures"
	FlightImages    = "flights"
)

// ErrNotImage is returned for uploads that are not images.
var ErrNotImage = errors.New("only image files are allowed")

// Sink stores uploaded files and returns the public relative path.
type Sink interface {
	SaveImage(folder, prefix string, file *multipart.FileHeader) (string, error)
	// Remove deletes a stored file. Missing files are not an error; other
	// failures are logged and swallowed.
	Remove(relPath string)
}

// LocalDisk stores files under a root directory served at /<base>.
type LocalDisk struct {
	root string
	base string
	now  func() time.Time
}

// NewLocalDisk creates a sink rooted at dir. Returned paths are prefixed with
// the directory's base name, e.g. "uploads/flights/flight-...png".
func NewLocalDisk(dir string) *LocalDisk {
	return &LocalDisk{root: dir, base: filepath.Base(dir), now: time.Now}
}

// Root returns the directory files are written to.
func (d *LocalDisk) Root() string {
	return d.root
}

func (d *LocalDisk) SaveImage(folder, prefix string, file *multipart.FileHeader) (string, error) {
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return "", ErrNotImage
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(d.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%s-%d-%s%s", prefix, d.now().Unix(), uuid.NewString()[:8], ext)

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path.Join(d.base, folder, name), nil
}

func (d *LocalDisk) Remove(relPath string) {
	if relPath == "" {
		return
	}
	rel := strings.TrimPrefix(path.Clean("/"+relPath), "/")
	rel = strings.TrimPrefix(rel, d.base+"/")
	if rel == "" || strings.HasPrefix(rel, "..") {
		return
	}
	if err := os.Remove(filepath.Join(d.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		log.Printf("remove upload %s: %v", relPath, err)
	}
}
