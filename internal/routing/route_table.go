package routing

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/constants"
	"regexp"
	"strings"
)

// route names
const (
	RouteHome            = "home"
	RouteServiceDetail   = "service_detail"
	RouteArticleList     = "article_list"
	RouteArticleDetail   = "article_detail"
	RouteArticleCategory = "article_category"
	RouteArticleTag      = "article_tag"
	RouteArticleSearch   = "api_v1_article_search"
	RoutePageView        = "page_view"
)

// HomePageSlug is the Page slug that reverses to the site root instead of the catch-all route.
const HomePageSlug = "home"

const slugParam = "{slug}"

var slugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Pattern is a named URL pattern made of literal segments and {slug} placeholders.
type Pattern struct {
	Name    string
	Pattern string
}

// SitePatterns is the public route table in priority order.
// The first matching pattern wins, so the catch-all page route must stay last:
// any single-segment path not claimed above it is resolved as a Page slug.
var SitePatterns = []Pattern{
	{Name: RouteHome, Pattern: ""},
	{Name: RouteServiceDetail, Pattern: "service/{slug}"},
	{Name: RouteArticleList, Pattern: "articles"},
	{Name: RouteArticleDetail, Pattern: "articles/{slug}"},
	{Name: RouteArticleCategory, Pattern: "articles/category/{slug}"},
	{Name: RouteArticleTag, Pattern: "articles/tag/{slug}"},
	{Name: RouteArticleSearch, Pattern: "api/v1/articles/search"},
	{Name: RoutePageView, Pattern: "{slug}"},
}

var patternsByName = func() map[string]Pattern {
	m := make(map[string]Pattern, len(SitePatterns))
	for _, p := range SitePatterns {
		m[p.Name] = p
	}
	return m
}()

type route struct {
	name     string
	segments []string
	handler  gin.HandlerFunc
}

// RouteTable dispatches request paths to handlers by trying its routes in order.
// It is immutable once built.
type RouteTable struct {
	routes   []route
	notFound gin.HandlerFunc
}

// NewRouteTable binds a handler to every pattern. Each pattern needs a handler.
func NewRouteTable(patterns []Pattern, handlers map[string]gin.HandlerFunc, notFound gin.HandlerFunc) (*RouteTable, error) {
	routes := make([]route, 0, len(patterns))
	seen := make(map[string]struct{}, len(patterns))

	for _, p := range patterns {
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("duplicate route name %q", p.Name)
		}
		seen[p.Name] = struct{}{}

		h, ok := handlers[p.Name]
		if !ok || h == nil {
			return nil, fmt.Errorf("no handler registered for route %q", p.Name)
		}

		routes = append(routes, route{name: p.Name, segments: splitPath(p.Pattern), handler: h})
	}

	if notFound == nil {
		notFound = func(c *gin.Context) { c.AbortWithStatus(404) }
	}

	return &RouteTable{routes: routes, notFound: notFound}, nil
}

// Match returns the name and slug of the first route matching path.
func (t *RouteTable) Match(path string) (name string, slug string, ok bool) {
	r, slug, ok := t.match(path)
	if !ok {
		return "", "", false
	}
	return r.name, slug, true
}

func (t *RouteTable) match(path string) (route, string, bool) {
	segments := splitPath(path)

	for _, r := range t.routes {
		if len(r.segments) != len(segments) {
			continue
		}

		var slug string
		matched := true
		for i, s := range r.segments {
			if s == slugParam {
				if !slugRegex.MatchString(segments[i]) {
					matched = false
					break
				}
				slug = segments[i]
				continue
			}
			if s != segments[i] {
				matched = false
				break
			}
		}

		if matched {
			return r, slug, true
		}
	}

	return route{}, "", false
}

// Dispatch is a gin handler that resolves the request path against the table.
// Only GET and HEAD requests are dispatched.
func (t *RouteTable) Dispatch(c *gin.Context) {
	if c.Request.Method != "GET" && c.Request.Method != "HEAD" {
		t.notFound(c)
		return
	}

	r, slug, ok := t.match(c.Request.URL.Path)
	if !ok {
		t.notFound(c)
		return
	}

	c.Set(constants.RouteNameKey, r.name)
	if len(slug) > 0 {
		c.Params = append(c.Params, gin.Param{Key: "slug", Value: slug})
	}

	r.handler(c)
}

// Names returns the route names in priority order.
func (t *RouteTable) Names() []string {
	names := make([]string, 0, len(t.routes))
	for _, r := range t.routes {
		names = append(names, r.name)
	}
	return names
}

// URL reverses a route name into its canonical path (always with a trailing slash).
// The Page route reverses the home sentinel slug to the site root.
// An unknown name yields an empty string.
func URL(name string, slug ...string) string {
	p, ok := patternsByName[name]
	if !ok {
		return ""
	}

	if name == RoutePageView && len(slug) > 0 && slug[0] == HomePageSlug {
		return "/"
	}

	if len(p.Pattern) == 0 {
		return "/"
	}

	segments := splitPath(p.Pattern)
	for i, s := range segments {
		if s != slugParam {
			continue
		}
		if len(slug) == 0 {
			return ""
		}
		segments[i] = slug[0]
	}

	return "/" + strings.Join(segments, "/") + "/"
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if len(trimmed) == 0 {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}
