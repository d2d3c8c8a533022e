package media

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/h2non/filetype"
	"github.com/samborkent/uuidv7"
	"golang.org/x/sync/singleflight"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// UrlPrefix is where the media tree is served.
const UrlPrefix = "/media/"

const (
	cacheDir     = "CACHE"
	originalsDir = "originals"
	derivedDir   = "derived"
)

// sniffing needs at most this many leading bytes
const headerSize = 261

var (
	ErrNotAnImage  = errors.New("file is not a supported image")
	ErrTooLarge    = errors.New("file is too large")
	ErrInvalidPath = errors.New("invalid media path")
	ErrUnknownSpec = errors.New("unknown image spec")
)

// decodable image types accepted for upload
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// URL returns the public URL of a stored file, or "" for an empty path.
func URL(rel string) string {
	if len(rel) == 0 {
		return ""
	}
	return UrlPrefix + strings.TrimLeft(rel, "/")
}

// DerivedURL returns the public URL of the variant spec of a stored original, or "" for an empty path.
func DerivedURL(spec string, rel string) string {
	if len(rel) == 0 {
		return ""
	}
	return UrlPrefix + derivedDir + "/" + spec + "/" + strings.TrimLeft(rel, "/")
}

// Store keeps uploaded originals below Root and memoizes derived variants in Root/CACHE.
type Store struct {
	Root           string
	MaxUploadBytes int64

	// one derivation per cache key at a time
	group singleflight.Group
}

// resolve maps a slash separated path relative to the media root to a file path inside the root.
func (s *Store) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" || strings.ContainsRune(clean, 0) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}

// Save stores an uploaded image for entity under a generated unique name
// and returns its path relative to the media root, e.g. "articles/originals/<uuid>.png".
// The type is taken from the content, never from the client's file name.
func (s *Store) Save(entity string, r io.Reader) (string, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	header = header[:n]

	kind, err := filetype.Match(header)
	if err != nil || kind == filetype.Unknown || !allowedMimeTypes[kind.MIME.Value] {
		return "", ErrNotAnImage
	}

	rel := path.Join(entity, originalsDir, uuidv7.New().String()+"."+kind.Extension)
	target, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	body := io.MultiReader(bytes.NewReader(header), r)
	if s.MaxUploadBytes > 0 {
		body = io.LimitReader(body, s.MaxUploadBytes+1)
	}

	written, err := writeAtomically(target, func(w io.Writer) (int64, error) {
		return io.Copy(w, body)
	})
	if err != nil {
		return "", err
	}
	if s.MaxUploadBytes > 0 && written > s.MaxUploadBytes {
		_ = os.Remove(target)
		return "", ErrTooLarge
	}

	return rel, nil
}

// Remove deletes a stored original together with all of its derived variants.
// Missing files are not an error.
func (s *Store) Remove(rel string) error {
	if len(rel) == 0 {
		return nil
	}
	original, err := s.resolve(rel)
	if err != nil {
		return err
	}

	errs := []error{ignoreMissing(os.Remove(original))}
	for name := range Specs {
		cached, err := s.cachePath(name, rel)
		if err != nil {
			return err
		}
		errs = append(errs, ignoreMissing(os.Remove(cached)))
	}
	return errors.Join(errs...)
}

// Original returns the file path of a stored original if it exists.
func (s *Store) Original(rel string) (string, error) {
	p, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", os.ErrNotExist
	}
	return p, nil
}

func ignoreMissing(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// writeAtomically writes to a temporary file next to target and renames it into place,
// so readers never see a partially written file.
func writeAtomically(target string, write func(w io.Writer) (int64, error)) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return 0, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	written, err := write(tmp)
	if cErr := tmp.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		return 0, fmt.Errorf("writing %s: %w", target, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, err
	}
	return written, nil
}
