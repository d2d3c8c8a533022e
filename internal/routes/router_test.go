package routes_test

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"it-solutions-hub/internal/admin"
	"it-solutions-hub/internal/auth"
	"it-solutions-hub/internal/config"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/controllers"
	"it-solutions-hub/internal/database/dbtest"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/listing"
	"it-solutions-hub/internal/media"
	"it-solutions-hub/internal/middlewares"
	"it-solutions-hub/internal/navigation"
	"it-solutions-hub/internal/render"
	"it-solutions-hub/internal/routes"
	"it-solutions-hub/internal/site"
	"it-solutions-hub/internal/sitemap"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const signingKey = "test-signing-key"

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := dbtest.Repository(t)
	dbtest.Seed(t, repo.DB)
	env := environment.Environment(repo, nil)

	renderer, err := render.New(gin.H{"site_name": "IT Solutions Hub", "debug": false, "language": "en"})
	if err != nil {
		t.Fatal(err)
	}
	store := &media.Store{Root: t.TempDir()}

	registry := map[int]any{
		constants.Site: &site.Controller{
			Env:        env,
			Listing:    &listing.Engine{Env: env, Language: language.English},
			Navigation: navigation.TreeService{Env: env, Language: language.English},
			Renderer:   renderer,
		},
		constants.Sitemap: &sitemap.Controller{Env: env, Generator: sitemap.Generator{Env: env}, BaseUrl: "https://example.com"},
		constants.Media:   &media.Controller{Env: env, Store: store},
		constants.Admin:   &admin.Controller{Env: env, RecordService: admin.RecordService{Env: env}, Store: store},
		constants.Auth:    &auth.Controller{Env: env, AuthService: &auth.AuthService{Env: env}, SigningKey: signingKey, TokenTtl: time.Hour},
		constants.Status:  &controllers.StatusController{Env: env},
	}

	c := &config.Configuration{}
	c.Admin.SigningKey = signingKey
	c.Admin.AllowedOrigins = []string{"https://admin.example.com"}

	r := gin.New()
	if err := routes.InitRouter(r, registry, c); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestInitRouter(t *testing.T) {
	r := newRouter(t)

	token, _, err := middlewares.GenerateToken([]byte(signingKey), time.Hour, 1, "admin")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		header     map[string]string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "heartbeat", method: http.MethodGet, path: "/heartbeat", wantStatus: http.StatusOK},
		{name: "status", method: http.MethodGet, path: "/status", wantStatus: http.StatusOK, wantBody: "running"},
		{name: "sitemap", method: http.MethodGet, path: "/sitemap.xml", wantStatus: http.StatusOK, wantBody: "https://example.com/articles/server-hardening/"},
		{name: "home", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: "Network setup"},
		{name: "page slug", method: http.MethodGet, path: "/about/", wantStatus: http.StatusOK, wantBody: "About us"},
		{name: "unknown path", method: http.MethodGet, path: "/a/b/c/", wantStatus: http.StatusNotFound},
		{name: "missing media", method: http.MethodGet, path: "/media/services/originals/none.png", wantStatus: http.StatusNotFound},
		{name: "admin without token", method: http.MethodGet, path: "/admin/articles", wantStatus: http.StatusUnauthorized},
		{name: "admin with token", method: http.MethodGet, path: "/admin/articles", header: map[string]string{"Authorization": "Bearer " + token}, wantStatus: http.StatusOK, wantBody: "totalElements"},
		{name: "admin schema", method: http.MethodGet, path: "/admin/", header: map[string]string{"Authorization": "Bearer " + token}, wantStatus: http.StatusOK, wantBody: "slugSource"},
		{name: "login is public", method: http.MethodPost, path: "/admin/login", body: `{"data": {"username": "admin", "password": "wrong"}}`, wantStatus: http.StatusUnauthorized, wantBody: "Login not successful"},
		{name: "preflight", method: http.MethodOptions, path: "/admin/articles/1", header: map[string]string{"Origin": "https://admin.example.com"}, wantStatus: http.StatusNoContent},
		{name: "token refresh", method: http.MethodPost, path: "/admin/token/refresh", header: map[string]string{"Authorization": "Bearer " + token}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("want %q in body %q", tt.wantBody, w.Body.String())
			}
		})
	}
}
