package render

import (
	"bytes"
	"embed"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"html/template"
	"io"
	"it-solutions-hub/internal/media"
	"it-solutions-hub/internal/navigation"
	"it-solutions-hub/internal/routing"
	"net/http"
	"strings"
)

//go:embed templates
var templatesFS embed.FS

// template names
const (
	Home               = "core/home.html"
	ServiceDetail      = "core/service_detail.html"
	ArticleList        = "core/article_list.html"
	ArticleListPartial = "core/partials/article_list_partial.html"
	ArticleDetail      = "core/article_detail.html"
	NotFound           = "core/404.html"
)

const (
	layout  = "base.html"
	partial = "article_list_partial.html"
)

// pages are rendered inside the layout, the partial on its own.
var pages = []string{
	Home,
	ServiceDetail,
	ArticleList,
	ArticleDetail,
	NotFound,
	"core/pages/default.html",
	"core/pages/about.html",
	"core/pages/contacts.html",
}

type entry struct {
	tmpl *template.Template
	name string
}

// Renderer renders the embedded site templates. It implements gin's render.HTMLRender,
// so handlers call c.HTML with a template name and a gin.H context.
type Renderer struct {
	templates map[string]entry
	// globals are added to every context that does not set them itself.
	globals gin.H
}

// ensure Renderer implements render.HTMLRender
var _ render.HTMLRender = &Renderer{}

var markdownConverter = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown converts markdown to HTML. Raw HTML in the source is not passed through.
func Markdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// IsActiveNav returns "active" when the current route name starts with one of prefixes.
func IsActiveNav(routeName string, prefixes ...string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(routeName, p) {
			return "active"
		}
	}
	return ""
}

// NavEntry pairs a menu item with the request path, for the recursive nav_item template.
type NavEntry struct {
	Item *navigation.Item
	Path string
}

func navEntry(item *navigation.Item, path string) NavEntry {
	return NavEntry{Item: item, Path: path}
}

var funcs = template.FuncMap{
	"navEntry":    navEntry,
	"markdown":    Markdown,
	"isActiveNav": IsActiveNav,
	"url":         routing.URL,
	"derived":     media.DerivedURL,
	"mediaUrl":    media.URL,
}

// New parses all templates. globals (e.g. debug, site_name) are merged into every render context.
func New(globals gin.H) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]entry, len(pages)+1), globals: globals}

	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/"+layout,
			"templates/core/partials/"+partial,
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = entry{tmpl: t, name: layout}
	}

	t, err := template.New(ArticleListPartial).Funcs(funcs).ParseFS(templatesFS, "templates/"+ArticleListPartial)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", ArticleListPartial, err)
	}
	r.templates[ArticleListPartial] = entry{tmpl: t, name: partial}

	return r, nil
}

// Has reports whether name is a known template.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render writes the template name executed with data to w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	e, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return e.tmpl.ExecuteTemplate(w, e.name, r.withGlobals(data))
}

func (r *Renderer) Instance(name string, data any) render.Render {
	e, ok := r.templates[name]
	if !ok {
		return missingTemplate{name: name}
	}
	return render.HTML{Template: e.tmpl, Name: e.name, Data: r.withGlobals(data)}
}

func (r *Renderer) withGlobals(data any) any {
	var h map[string]any
	switch d := data.(type) {
	case gin.H:
		h = d
	case map[string]any:
		h = d
	default:
		return data
	}

	merged := make(gin.H, len(h)+len(r.globals))
	for k, v := range r.globals {
		merged[k] = v
	}
	for k, v := range h {
		merged[k] = v
	}
	return merged
}

type missingTemplate struct {
	name string
}

func (m missingTemplate) Render(w http.ResponseWriter) error {
	return fmt.Errorf("unknown template %q", m.name)
}

func (m missingTemplate) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if len(header.Values("Content-Type")) == 0 {
		header.Set("Content-Type", "text/html; charset=utf-8")
	}
}
