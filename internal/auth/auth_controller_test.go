package auth_test

import (
	"encoding/json"
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/api"
	"it-solutions-hub/internal/auth"
	"it-solutions-hub/internal/database/dbtest"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/middlewares"
	"it-solutions-hub/internal/models"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const signingKey = "test-signing-key"

func newController(t *testing.T) *auth.Controller {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := dbtest.Repository(t)
	user := models.User{Username: "admin", Email: "admin@example.com"}
	if err := user.SetPassword("s3cret"); err != nil {
		t.Fatal(err)
	}
	dbtest.Create(t, repo.DB, &user)

	env := environment.Environment(repo, nil)
	return &auth.Controller{
		Env:         env,
		AuthService: &auth.AuthService{Env: env},
		SigningKey:  signingKey,
		TokenTtl:    time.Hour,
	}
}

func post(handler gin.HandlerFunc, body string, header ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		c.Request.Header.Set(header[i], header[i+1])
	}
	handler(c)
	return w
}

func tokenOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response api.RestJsonResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	token, ok := response.Data.(string)
	if !ok || len(token) == 0 {
		t.Fatalf("no token in %s", w.Body.String())
	}
	return token
}

func TestLogin(t *testing.T) {
	ctrl := newController(t)

	w := post(ctrl.Login, `{"data": {"username": " admin ", "password": "s3cret"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	token, err := middlewares.ValidateToken(tokenOf(t, w), signingKey)
	if err != nil {
		t.Fatal(err)
	}
	claims := token.Claims.(*middlewares.AdminClaims)
	if claims.Username != "admin" || claims.UserId == 0 {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestLogin_Rejected(t *testing.T) {
	ctrl := newController(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "wrong password", body: `{"data": {"username": "admin", "password": "nope"}}`, want: http.StatusUnauthorized},
		{name: "unknown user", body: `{"data": {"username": "root", "password": "s3cret"}}`, want: http.StatusUnauthorized},
		{name: "missing password", body: `{"data": {"username": "admin"}}`, want: http.StatusUnprocessableEntity},
		{name: "no envelope", body: `{"username": "admin"}`, want: http.StatusUnprocessableEntity},
		{name: "not json", body: `username=admin`, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := post(ctrl.Login, tt.body); w.Code != tt.want {
				t.Errorf("got status %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	ctrl := newController(t)

	old, _, err := middlewares.GenerateToken([]byte(signingKey), time.Minute, 7, "admin")
	if err != nil {
		t.Fatal(err)
	}

	w := post(ctrl.RefreshToken, "", "Authorization", "Bearer "+old)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	token, err := middlewares.ValidateToken(tokenOf(t, w), signingKey)
	if err != nil {
		t.Fatal(err)
	}
	claims := token.Claims.(*middlewares.AdminClaims)
	if claims.UserId != 7 || time.Until(time.Unix(claims.ExpiresAt, 0)) < 50*time.Minute {
		t.Errorf("unexpected claims %+v", claims)
	}

	if w := post(ctrl.RefreshToken, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("got status %d without token, want 401", w.Code)
	}

	expired, _, _ := middlewares.GenerateToken([]byte(signingKey), -time.Minute, 7, "admin")
	if w := post(ctrl.RefreshToken, "", "Authorization", "Bearer "+expired); w.Code != http.StatusUnauthorized {
		t.Errorf("got status %d for an expired token, want 401", w.Code)
	}
}
