package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"image"
	"image/png"
	"it-solutions-hub/internal/admin"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/database/dbtest"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/media"
	"it-solutions-hub/internal/middlewares"
	"it-solutions-hub/internal/models"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
)

type fixture struct {
	router  *gin.Engine
	repo    *database.GormRepository
	store   *media.Store
	content dbtest.Content
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newFixture(t *testing.T) fixture {
	return newFixtureWith(t, func(repo *database.GormRepository) database.Repository { return repo })
}

// newFixtureWith serves the admin handlers over the repository returned by wrap.
func newFixtureWith(t *testing.T, wrap func(*database.GormRepository) database.Repository) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := dbtest.Repository(t)
	content := dbtest.Seed(t, repo.DB)
	store := &media.Store{Root: t.TempDir(), MaxUploadBytes: 1 << 20}

	env := environment.Environment(wrap(repo), nil)
	ctrl := &admin.Controller{Env: env, RecordService: admin.RecordService{Env: env}, Store: store}

	r := gin.New()
	g := r.Group("/admin", func(c *gin.Context) {
		c.Set(constants.ClaimsKey, &middlewares.AdminClaims{UserId: content.Author.ID, Username: content.Author.Username})
	})
	g.GET("/", ctrl.Entities)
	g.GET("/:entity", ctrl.List)
	g.POST("/:entity", ctrl.Create)
	g.GET("/:entity/:id", ctrl.Get)
	g.PUT("/:entity/:id", ctrl.Update)
	g.DELETE("/:entity/:id", ctrl.Delete)
	g.POST("/:entity/:id/image", ctrl.UploadImage)

	return fixture{router: r, repo: repo, store: store, content: content}
}

func (f fixture) do(t *testing.T, method, path string, data any) (int, envelope) {
	t.Helper()

	var body *bytes.Reader
	if data != nil {
		raw, err := json.Marshal(map[string]any{"data": data})
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(method, path, body))

	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("%s %s: invalid response %q", method, path, w.Body.String())
	}
	return w.Code, e
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestCreate_Article(t *testing.T) {
	f := newFixture(t)

	code, e := f.do(t, http.MethodPost, "/admin/articles", map[string]any{
		"title":       "Настройка MikroTik",
		"content":     "## Шаг 1",
		"category_id": f.content.Networking.ID,
		"tag_ids":     []uint{f.content.Mikrotik.ID, f.content.Backup.ID},
	})
	if code != http.StatusCreated {
		t.Fatalf("got status %d: %s", code, e.Message)
	}

	got := decode[models.Article](t, e.Data)
	if got.Slug != "nastrojka-mikrotik" {
		t.Errorf("got slug %q", got.Slug)
	}
	if got.AuthorID == nil || *got.AuthorID != f.content.Author.ID {
		t.Errorf("want the acting admin as author, got %v", got.AuthorID)
	}
	if got.IsPublished {
		t.Error("articles must start unpublished")
	}
	if got.PublishedDate.IsZero() {
		t.Error("want the published date set on creation")
	}

	tags := make([]string, 0, len(got.Tags))
	for _, tag := range got.Tags {
		tags = append(tags, tag.Slug)
	}
	slices.Sort(tags)
	if diff := cmp.Diff([]string{"backup", "mikrotik"}, tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

// brokenTags fails every tag assignment after the article row is written.
type brokenTags struct {
	*database.GormRepository
}

func (brokenTags) ReplaceArticleTags(context.Context, *models.Article, []uint) error {
	return errors.New("connection reset")
}

func TestCreate_TagFailureLeavesNoArticle(t *testing.T) {
	f := newFixtureWith(t, func(repo *database.GormRepository) database.Repository {
		return brokenTags{repo}
	})

	var before int64
	if err := f.repo.DB.Model(&models.Article{}).Count(&before).Error; err != nil {
		t.Fatal(err)
	}

	code, _ := f.do(t, http.MethodPost, "/admin/articles", map[string]any{
		"title":       "Резервное копирование",
		"content":     "text",
		"category_id": f.content.Networking.ID,
		"tag_ids":     []uint{f.content.Backup.ID},
	})
	if code != http.StatusInternalServerError {
		t.Fatalf("want status %d, got %d", http.StatusInternalServerError, code)
	}

	var after int64
	if err := f.repo.DB.Model(&models.Article{}).Count(&after).Error; err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Errorf("want %d articles left, got %d", before, after)
	}
}

func TestCreate_Defaults(t *testing.T) {
	f := newFixture(t)

	code, e := f.do(t, http.MethodPost, "/admin/pages", map[string]any{"title": "Команда"})
	if code != http.StatusCreated {
		t.Fatalf("got status %d: %s", code, e.Message)
	}

	got := decode[models.Page](t, e.Data)
	if got.Slug != "komanda" || !got.IsPublished || got.Template != models.PageTemplateDefault {
		t.Errorf("unexpected page %+v", got)
	}
}

func TestCreate_Rejected(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		entity  string
		payload map[string]any
		wantKey string
	}{
		{name: "duplicate slug", entity: "articles", payload: map[string]any{"title": "x", "slug": "networking-a", "content": "x"}, wantKey: "slug"},
		{name: "missing content", entity: "articles", payload: map[string]any{"title": "x"}, wantKey: "content"},
		{name: "unknown tag", entity: "articles", payload: map[string]any{"title": "x", "content": "x", "tag_ids": []int{999}}, wantKey: "tag_ids"},
		{name: "unknown category", entity: "articles", payload: map[string]any{"title": "x", "content": "x", "category_id": 999}, wantKey: "category_id"},
		{name: "invalid slug", entity: "tags", payload: map[string]any{"name": "Tag", "slug": "a b"}, wantKey: "slug"},
		{name: "duplicate name", entity: "categories", payload: map[string]any{"name": "Networking", "slug": "networking-2"}, wantKey: "name"},
		{name: "unknown template", entity: "pages", payload: map[string]any{"title": "x", "template": "core/pages/x.html"}, wantKey: "template"},
		{name: "read-only field", entity: "services", payload: map[string]any{"title": "x", "short_description": "x", "original_image": "a.png"}, wantKey: "original_image"},
		{name: "slug from symbols only", entity: "categories", payload: map[string]any{"name": "!!!"}, wantKey: "slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, e := f.do(t, http.MethodPost, "/admin/"+tt.entity, tt.payload)
			if code != http.StatusUnprocessableEntity {
				t.Fatalf("got status %d, want 422", code)
			}
			errs := decode[map[string]string](t, e.Data)
			if _, ok := errs[tt.wantKey]; !ok {
				t.Errorf("want an error for %s, got %v", tt.wantKey, errs)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	article := f.content.Articles[0]
	path := fmt.Sprintf("/admin/articles/%d", article.ID)

	code, e := f.do(t, http.MethodPut, path, map[string]any{"title": "VLAN basics, revised", "category_id": nil, "tag_ids": []int{}})
	if code != http.StatusOK {
		t.Fatalf("got status %d: %s", code, e.Message)
	}

	got := decode[models.Article](t, e.Data)
	if got.Title != "VLAN basics, revised" || got.Slug != article.Slug || got.Content != article.Content {
		t.Errorf("only the title should change, got %+v", got)
	}
	if got.CategoryID != nil || len(got.Tags) != 0 {
		t.Errorf("want category and tags cleared, got %v %v", got.CategoryID, got.Tags)
	}
	if !got.PublishedDate.Equal(article.PublishedDate) {
		t.Errorf("published date changed from %v to %v", article.PublishedDate, got.PublishedDate)
	}

	// keeping its own slug is not a conflict
	if code, e := f.do(t, http.MethodPut, path, map[string]any{"slug": article.Slug}); code != http.StatusOK {
		t.Errorf("got status %d: %s", code, e.Message)
	}
	if code, _ := f.do(t, http.MethodPut, path, map[string]any{"slug": "networking-b"}); code != http.StatusUnprocessableEntity {
		t.Errorf("got status %d for a taken slug, want 422", code)
	}
}

func TestUpdate_AssignsAuthor(t *testing.T) {
	f := newFixture(t)
	hardening := f.content.Articles[len(f.content.Articles)-1]

	code, e := f.do(t, http.MethodPut, fmt.Sprintf("/admin/articles/%d", hardening.ID), map[string]any{"is_published": false})
	if code != http.StatusOK {
		t.Fatalf("got status %d: %s", code, e.Message)
	}
	got := decode[models.Article](t, e.Data)
	if got.AuthorID == nil || *got.AuthorID != f.content.Author.ID || got.IsPublished {
		t.Errorf("unexpected article %+v", got)
	}
}

func TestUpdate_PageParent(t *testing.T) {
	f := newFixture(t)
	about := f.content.Pages[1]
	team := models.Page{Title: "Team", Slug: "team", IsPublished: true}
	dbtest.Create(t, f.repo.DB, &team)

	path := fmt.Sprintf("/admin/pages/%d", team.ID)
	if code, e := f.do(t, http.MethodPut, path, map[string]any{"parent_id": about.ID}); code != http.StatusOK {
		t.Fatalf("got status %d: %s", code, e.Message)
	}
	if code, _ := f.do(t, http.MethodPut, path, map[string]any{"parent_id": team.ID}); code != http.StatusUnprocessableEntity {
		t.Errorf("got status %d for a self reference, want 422", code)
	}
}

func TestList(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		query     string
		wantTotal int
		wantPages int
		wantFirst string
	}{
		{name: "all articles newest first", query: "", wantTotal: 8, wantPages: 1, wantFirst: "backup-draft"},
		{name: "unpublished only", query: "?is_published=false", wantTotal: 1, wantPages: 1, wantFirst: "backup-draft"},
		{name: "search title and content", query: "?q=LINUX", wantTotal: 1, wantPages: 1, wantFirst: "server-hardening"},
		{name: "filter by category", query: fmt.Sprintf("?category_id=%d&pageSize=4&page=2", f.content.Networking.ID), wantTotal: 7, wantPages: 2, wantFirst: "networking-c"},
		{name: "without category", query: "?category_id=null", wantTotal: 0, wantPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, e := f.do(t, http.MethodGet, "/admin/articles"+tt.query, nil)
			if code != http.StatusOK {
				t.Fatalf("got status %d: %s", code, e.Message)
			}

			page := decode[struct {
				TotalElements int              `json:"totalElements"`
				TotalPages    int              `json:"totalPages"`
				Content       []models.Article `json:"content"`
			}](t, e.Data)

			if page.TotalElements != tt.wantTotal || page.TotalPages != tt.wantPages {
				t.Errorf("got %d elements on %d pages, want %d on %d", page.TotalElements, page.TotalPages, tt.wantTotal, tt.wantPages)
			}
			if len(tt.wantFirst) > 0 && (len(page.Content) == 0 || page.Content[0].Slug != tt.wantFirst) {
				t.Errorf("want %s first, got %+v", tt.wantFirst, page.Content)
			}
		})
	}

	if code, _ := f.do(t, http.MethodGet, "/admin/articles?is_published=maybe", nil); code != http.StatusBadRequest {
		t.Errorf("got status %d for an invalid filter, want 400", code)
	}
}

func TestUnknownEntity(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/admin/widgets", "/admin/users", "/admin/articles/999", "/admin/articles/abc"} {
		code, _ := f.do(t, http.MethodGet, path, nil)
		if code != http.StatusNotFound && code != http.StatusBadRequest {
			t.Errorf("%s: got status %d", path, code)
		}
	}
}

func TestDelete_Category(t *testing.T) {
	f := newFixture(t)

	code, e := f.do(t, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", f.content.Security.ID), nil)
	if code != http.StatusOK {
		t.Fatalf("got status %d: %s", code, e.Message)
	}

	var article models.Article
	if err := f.repo.DB.Where("slug = ?", "server-hardening").Take(&article).Error; err != nil {
		t.Fatalf("article must survive the deletion of its category: %v", err)
	}
	if article.CategoryID != nil {
		t.Errorf("want category cleared, got %d", *article.CategoryID)
	}
}

func upload(t *testing.T, f fixture, path string, content []byte) (int, envelope) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var e envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("invalid response %q", rec.Body.String())
	}
	return rec.Code, e
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	service := f.content.Services[0]
	path := fmt.Sprintf("/admin/services/%d/image", service.ID)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}

	code, e := upload(t, f, path, img.Bytes())
	if code != http.StatusOK {
		t.Fatalf("got status %d: %s", code, e.Message)
	}
	first := decode[models.Service](t, e.Data).OriginalImage
	if !strings.HasPrefix(first, "services/originals/") {
		t.Fatalf("unexpected image path %q", first)
	}

	code, e = upload(t, f, path, img.Bytes())
	if code != http.StatusOK {
		t.Fatalf("got status %d: %s", code, e.Message)
	}
	if _, err := f.store.Original(first); err == nil {
		t.Error("want the replaced image removed")
	}

	if code, _ := upload(t, f, path, []byte("plain text")); code != http.StatusUnprocessableEntity {
		t.Errorf("got status %d for a text file, want 422", code)
	}
	if code, _ := upload(t, f, fmt.Sprintf("/admin/categories/%d/image", f.content.Networking.ID), img.Bytes()); code != http.StatusBadRequest {
		t.Errorf("got status %d for an entity without image, want 400", code)
	}
}

func TestEntities(t *testing.T) {
	f := newFixture(t)

	code, e := f.do(t, http.MethodGet, "/admin/", nil)
	if code != http.StatusOK {
		t.Fatalf("got status %d", code)
	}

	infos := decode[[]admin.EntityInfo](t, e.Data)
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
		if info.Name == "articles" && info.SlugSource != "title" {
			t.Errorf("want articles slugged from title, got %q", info.SlugSource)
		}
	}
	if diff := cmp.Diff([]string{"services", "pages", "categories", "tags", "articles"}, names); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}
}
