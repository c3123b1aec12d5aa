package uploads

import (
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidExtension = errors.New("invalid file type")
	ErrInvalidFilename  = errors.New("invalid filename")
)

// allowedExtensions is the fixed allow-set for profile photos (compared lowercase).
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// Store writes and removes uploaded files under a single uploads root and
// builds the public URLs stored on user records.
type Store struct {
	Root    string
	BaseURL string
}

func New(root, baseURL string) *Store {
	return &Store{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Init creates the uploads root if it does not exist.
func (s *Store) Init() error {
	return os.MkdirAll(s.Root, 0o755)
}

// Ext returns the lowercased extension of the declared filename, without the dot.
// Empty when the filename has no extension.
func Ext(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Allowed reports whether the declared filename carries an allowed image extension.
func Allowed(filename string) bool {
	return allowedExtensions[Ext(filename)]
}

// Save writes the uploaded content under a freshly generated name and returns
// that name. The name is a random 128-bit hex identifier plus the original
// extension, so concurrent saves never collide.
func (s *Store) Save(r io.Reader, declaredFilename string) (string, error) {
	if !Allowed(declaredFilename) {
		return "", ErrInvalidExtension
	}

	id := uuid.New()
	filename := hex.EncodeToString(id[:]) + "." + Ext(declaredFilename)

	if err := s.Init(); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(s.Root, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", err
	}

	return filename, nil
}

// URL builds the public URL for a stored filename.
func (s *Store) URL(filename string) string {
	return s.BaseURL + "/uploads/" + filename
}

// Remove deletes a stored file. Removing a file that is already gone is not an error.
func (s *Store) Remove(filename string) error {
	path, err := s.Resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Resolve maps a filename to its on-disk path, rejecting anything that could
// escape the uploads root (path separators, "..", empty names).
func (s *Store) Resolve(filename string) (string, error) {
	if filename == "" ||
		strings.ContainsAny(filename, "/\\") ||
		strings.Contains(filename, "..") {
		return "", ErrInvalidFilename
	}
	return filepath.Join(s.Root, filename), nil
}

// FilenameFromURL returns the trailing path segment of a stored photo URL.
func FilenameFromURL(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
