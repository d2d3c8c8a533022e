package media_test

import (
	"bytes"
	"context"
	"errors"
	"github.com/gin-gonic/gin"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/media"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newStore(t *testing.T) *media.Store {
	return &media.Store{Root: t.TempDir(), MaxUploadBytes: 1 << 20}
}

func TestStore_Save(t *testing.T) {
	s := newStore(t)

	rel, err := s.Save("services", bytes.NewReader(pngBytes(t, 20, 10)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(rel, "services/originals/") || !strings.HasSuffix(rel, ".png") {
		t.Errorf("unexpected path %q", rel)
	}
	if _, err := s.Original(rel); err != nil {
		t.Errorf("original not stored: %v", err)
	}

	other, err := s.Save("services", bytes.NewReader(pngBytes(t, 20, 10)))
	if err != nil {
		t.Fatal(err)
	}
	if other == rel {
		t.Error("want a unique name per upload")
	}
}

func TestStore_SaveRejects(t *testing.T) {
	s := newStore(t)
	s.MaxUploadBytes = 100

	tests := []struct {
		name string
		body []byte
		want error
	}{
		{name: "text", body: []byte("definitely not an image, just some text"), want: media.ErrNotAnImage},
		{name: "empty", body: nil, want: media.ErrNotAnImage},
		{name: "too large", body: pngBytes(t, 64, 64), want: media.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Save("articles", bytes.NewReader(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	entries, _ := os.ReadDir(filepath.Join(s.Root, "articles", "originals"))
	if len(entries) != 0 {
		t.Errorf("rejected uploads must not leave files, found %d", len(entries))
	}
}

func TestStore_Derived(t *testing.T) {
	s := newStore(t)
	rel, err := s.Save("services", bytes.NewReader(pngBytes(t, 120, 30)))
	if err != nil {
		t.Fatal(err)
	}

	file, err := s.Derived(context.Background(), media.ServiceThumbnail, rel)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(file, filepath.Join(s.Root, "CACHE", media.ServiceThumbnail)) || filepath.Ext(file) != ".jpg" {
		t.Errorf("unexpected cache location %q", file)
	}

	f, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(f)
	_ = f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 400 || cfg.Height != 200 {
		t.Errorf("got %dx%d, want 400x200", cfg.Width, cfg.Height)
	}

	// a second request is served from the cache without touching the original
	stamp := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(file, stamp, stamp); err != nil {
		t.Fatal(err)
	}
	again, err := s.Derived(context.Background(), media.ServiceThumbnail, rel)
	if err != nil || again != file {
		t.Fatalf("got %q, %v", again, err)
	}
	info, _ := os.Stat(file)
	if !info.ModTime().Equal(stamp) {
		t.Error("want the memoized variant, got a recomputed one")
	}
}

func TestStore_DerivedConcurrent(t *testing.T) {
	s := newStore(t)
	rel, err := s.Save("articles", bytes.NewReader(pngBytes(t, 200, 200)))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	files := make([]string, 8)
	errs := make([]error, 8)
	for i := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			files[i], errs[i] = s.Derived(context.Background(), media.ArticleThumbnail, rel)
		}()
	}
	wg.Wait()

	for i := range files {
		if errs[i] != nil || files[i] != files[0] {
			t.Errorf("request %d: %q, %v", i, files[i], errs[i])
		}
	}

	entries, err := os.ReadDir(filepath.Dir(files[0]))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("want exactly one cached file, got %d", len(entries))
	}
}

func TestStore_DerivedErrors(t *testing.T) {
	s := newStore(t)

	tests := []struct {
		name string
		spec string
		rel  string
	}{
		{name: "unknown spec", spec: "huge", rel: "services/originals/a.png"},
		{name: "missing original", spec: media.ServiceDetail, rel: "services/originals/missing.png"},
		{name: "empty path", spec: media.ServiceDetail, rel: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Derived(context.Background(), tt.spec, tt.rel)
			if !media.IsNotFound(err) {
				t.Errorf("want not found, got %v", err)
			}
		})
	}
}

func TestStore_Remove(t *testing.T) {
	s := newStore(t)
	rel, err := s.Save("services", bytes.NewReader(pngBytes(t, 50, 50)))
	if err != nil {
		t.Fatal(err)
	}
	file, err := s.Derived(context.Background(), media.ServiceDetail, rel)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Remove(rel); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Original(rel); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("original still present: %v", err)
	}
	if _, err := os.Stat(file); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("variant still present: %v", err)
	}

	if err := s.Remove(rel); err != nil {
		t.Errorf("removing twice: %v", err)
	}
}

func TestURLs(t *testing.T) {
	if got := media.URL("services/originals/a.png"); got != "/media/services/originals/a.png" {
		t.Errorf("URL = %q", got)
	}
	if got := media.DerivedURL(media.ServiceDetail, "services/originals/a.png"); got != "/media/derived/service_detail/services/originals/a.png" {
		t.Errorf("DerivedURL = %q", got)
	}
	if media.URL("") != "" || media.DerivedURL(media.ServiceDetail, "") != "" {
		t.Error("want empty URLs for empty paths")
	}
}

func TestController_Serve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newStore(t)
	rel, err := s.Save("services", bytes.NewReader(pngBytes(t, 40, 40)))
	if err != nil {
		t.Fatal(err)
	}

	ctrl := &media.Controller{Env: environment.Null(), Store: s}
	r := gin.New()
	r.GET("/media/*path", ctrl.Serve)

	tests := []struct {
		path       string
		wantStatus int
		wantType   string
	}{
		{path: media.URL(rel), wantStatus: http.StatusOK, wantType: "image/png"},
		{path: media.DerivedURL(media.ServiceDetail, rel), wantStatus: http.StatusOK, wantType: "image/jpeg"},
		{path: media.DerivedURL("unknown", rel), wantStatus: http.StatusNotFound},
		{path: "/media/services/originals/missing.png", wantStatus: http.StatusNotFound},
		{path: "/media/derived/service_detail", wantStatus: http.StatusNotFound},
		{path: "/media/CACHE/service_detail/x.jpg", wantStatus: http.StatusNotFound},
		{path: "/media/services", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

		if w.Code != tt.wantStatus {
			t.Errorf("%s: got status %d, want %d", tt.path, w.Code, tt.wantStatus)
			continue
		}
		if len(tt.wantType) > 0 && w.Header().Get("Content-Type") != tt.wantType {
			t.Errorf("%s: got content type %q, want %q", tt.path, w.Header().Get("Content-Type"), tt.wantType)
		}
	}
}
