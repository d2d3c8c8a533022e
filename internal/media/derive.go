package media

import (
	"context"
	"errors"
	"fmt"
	"github.com/nfnt/resize"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Spec is a fixed image transformation: resize to fill Width x Height, encoded as JPEG with Quality.
type Spec struct {
	Width   uint
	Height  uint
	Quality int
}

// spec names
const (
	ServiceDetail    = "service_detail"
	ServiceThumbnail = "service_thumbnail"
	ArticleThumbnail = "article_thumbnail"
)

var Specs = map[string]Spec{
	ServiceDetail:    {Width: 800, Height: 400, Quality: 85},
	ServiceThumbnail: {Width: 400, Height: 200, Quality: 80},
	ArticleThumbnail: {Width: 400, Height: 250, Quality: 80},
}

// cachePath is the memoized location of the spec variant of rel.
func (s *Store) cachePath(spec string, rel string) (string, error) {
	name := strings.TrimSuffix(rel, path.Ext(rel)) + ".jpg"
	return s.resolve(path.Join(cacheDir, spec, path.Clean("/"+name)))
}

// Derived returns the file path of the spec variant of the original rel.
// The variant is computed on first request and served from the cache afterwards;
// concurrent first requests for the same variant compute it once.
func (s *Store) Derived(ctx context.Context, spec string, rel string) (string, error) {
	sp, ok := Specs[spec]
	if !ok {
		return "", ErrUnknownSpec
	}

	cached, err := s.cachePath(spec, rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}

	original, err := s.Original(rel)
	if err != nil {
		return "", err
	}

	ch := s.group.DoChan(cached, func() (any, error) {
		// another flight may have finished between the stat above and now
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
		return cached, derive(original, cached, sp)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func derive(original string, target string, spec Spec) error {
	f, err := os.Open(original)
	if err != nil {
		return err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", original, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	dst := Fill(src, spec.Width, spec.Height)
	_, err = writeAtomically(target, func(w io.Writer) (int64, error) {
		return 0, jpeg.Encode(w, dst, &jpeg.Options{Quality: spec.Quality})
	})
	return err
}

// Fill scales src to cover width x height and crops the overflow evenly from both sides.
func Fill(src image.Image, width, height uint) image.Image {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || width == 0 || height == 0 {
		return image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	}

	scale := math.Max(float64(width)/float64(b.Dx()), float64(height)/float64(b.Dy()))
	scaledW := uint(math.Max(math.Ceil(float64(b.Dx())*scale), float64(width)))
	scaledH := uint(math.Max(math.Ceil(float64(b.Dy())*scale), float64(height)))

	scaled := resize.Resize(scaledW, scaledH, src, resize.Lanczos3)

	offset := image.Point{
		X: (int(scaledW) - int(width)) / 2,
		Y: (int(scaledH) - int(height)) / 2,
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	draw.Draw(dst, dst.Bounds(), scaled, scaled.Bounds().Min.Add(offset), draw.Src)

	return dst
}

// IsNotFound reports whether err means the requested media does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrUnknownSpec) || errors.Is(err, ErrInvalidPath)
}
