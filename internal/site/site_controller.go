package site

import (
	"errors"
	"github.com/gin-gonic/gin"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/listing"
	"it-solutions-hub/internal/logging"
	"it-solutions-hub/internal/models"
	"it-solutions-hub/internal/navigation"
	"it-solutions-hub/internal/render"
	"it-solutions-hub/internal/routing"
	"net/http"
)

// number of related articles shown below an article
const relatedLimit = 4

// Api defines the public pages of the site. Each handler is bound to one route of the route table.
type Api interface {
	Home(c *gin.Context)
	ServiceDetail(c *gin.Context)
	ArticleList(c *gin.Context)
	ArticleDetail(c *gin.Context)
	ArticleCategory(c *gin.Context)
	ArticleTag(c *gin.Context)
	ArticleSearch(c *gin.Context)
	PageView(c *gin.Context)
	NotFound(c *gin.Context)
	Handlers() map[string]gin.HandlerFunc
}

// Controller renders the public site from the content store.
type Controller struct {
	*environment.Env
	Listing    *listing.Engine
	Navigation navigation.TreeService
	Renderer   *render.Renderer
}

// ensure Controller implements Api
var _ Api = &Controller{}

// Handlers maps every route name of the site table to its handler.
func (sc *Controller) Handlers() map[string]gin.HandlerFunc {
	return map[string]gin.HandlerFunc{
		routing.RouteHome:            sc.Home,
		routing.RouteServiceDetail:   sc.ServiceDetail,
		routing.RouteArticleList:     sc.ArticleList,
		routing.RouteArticleDetail:   sc.ArticleDetail,
		routing.RouteArticleCategory: sc.ArticleCategory,
		routing.RouteArticleTag:      sc.ArticleTag,
		routing.RouteArticleSearch:   sc.ArticleSearch,
		routing.RoutePageView:        sc.PageView,
	}
}

// Home lists all services in display order.
func (sc *Controller) Home(c *gin.Context) {
	var services []models.Service
	if err := sc.FindAllServices(c.Request.Context(), &services); err != nil {
		sc.fail(c, err)
		return
	}
	sc.html(c, http.StatusOK, render.Home, gin.H{"services": services})
}

func (sc *Controller) ServiceDetail(c *gin.Context) {
	var service models.Service
	if err := sc.FindServiceBySlug(c.Request.Context(), c.Param("slug"), &service); err != nil {
		sc.fail(c, err)
		return
	}
	sc.html(c, http.StatusOK, render.ServiceDetail, gin.H{"service": service})
}

// ArticleList lists the published articles, optionally filtered by the query parameter q.
func (sc *Controller) ArticleList(c *gin.Context) {
	result, err := sc.Listing.List(c.Request.Context(), c.Query("q"), c.Query("page"))
	if err != nil {
		sc.fail(c, err)
		return
	}
	sc.list(c, result, nil)
}

// ArticleDetail shows a published article and up to four other articles of its category.
func (sc *Controller) ArticleDetail(c *gin.Context) {
	ctx := c.Request.Context()

	var article models.Article
	if err := sc.FindPublishedArticleBySlug(ctx, c.Param("slug"), &article); err != nil {
		sc.fail(c, err)
		return
	}

	related := make([]models.Article, 0, relatedLimit)
	if err := sc.FindRelatedArticles(ctx, article, relatedLimit, &related); err != nil {
		sc.fail(c, err)
		return
	}

	sc.html(c, http.StatusOK, render.ArticleDetail, gin.H{"post": article, "related_posts": related})
}

func (sc *Controller) ArticleCategory(c *gin.Context) {
	ctx := c.Request.Context()

	var category models.Category
	if err := sc.FindCategoryBySlug(ctx, c.Param("slug"), &category); err != nil {
		sc.fail(c, err)
		return
	}

	result, err := sc.Listing.ByCategory(ctx, category, c.Query("page"))
	if err != nil {
		sc.fail(c, err)
		return
	}
	sc.list(c, result, gin.H{"category": category})
}

func (sc *Controller) ArticleTag(c *gin.Context) {
	ctx := c.Request.Context()

	var tag models.Tag
	if err := sc.FindTagBySlug(ctx, c.Param("slug"), &tag); err != nil {
		sc.fail(c, err)
		return
	}

	result, err := sc.Listing.ByTag(ctx, tag, c.Query("page"))
	if err != nil {
		sc.fail(c, err)
		return
	}
	sc.list(c, result, gin.H{"tag": tag})
}

// ArticleSearch answers the live search box with JSON: {"count": n, "results": [...]}.
func (sc *Controller) ArticleSearch(c *gin.Context) {
	results, err := sc.Listing.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		sc.LogErrorf(logging.GetLogType(constants.LogTypeSite, routing.RouteArticleSearch), "error searching articles: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"count": 0, "results": []listing.SearchResult{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

// PageView shows a published page with its own template.
// Templates that are not installed fall back to the default page template.
func (sc *Controller) PageView(c *gin.Context) {
	ctx := c.Request.Context()

	var page models.Page
	if err := sc.FindPublishedPageBySlug(ctx, c.Param("slug"), &page); err != nil {
		sc.fail(c, err)
		return
	}

	name := page.Template
	if !sc.Renderer.Has(name) {
		sc.LogWarnf(logging.GetLogType(constants.LogTypeSite, page.Slug), "page template %q is not installed, using the default", name)
		name = models.PageTemplateDefault
	}

	data := gin.H{"page": page}
	if name == models.PageTemplateAbout {
		var services []models.Service
		if err := sc.FindAllServices(ctx, &services); err != nil {
			sc.fail(c, err)
			return
		}
		data["services"] = services
	}

	sc.html(c, http.StatusOK, name, data)
}

// NotFound renders the 404 page.
func (sc *Controller) NotFound(c *gin.Context) {
	sc.html(c, http.StatusNotFound, render.NotFound, gin.H{})
}

// list renders a listing: the fragment for XMLHttpRequest callers, otherwise the full page.
func (sc *Controller) list(c *gin.Context, result listing.Result, extra gin.H) {
	data := gin.H{
		"page_obj":   result.Page,
		"page_title": result.Title,
		"all_tags":   result.Tags,
		"query":      result.Query,
	}
	for k, v := range extra {
		data[k] = v
	}

	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		c.Render(http.StatusOK, sc.Renderer.Instance(render.ArticleListPartial, data))
		return
	}
	sc.html(c, http.StatusOK, render.ArticleList, data)
}

// html adds what the layout needs (route name, request path, menu, search query) and renders.
func (sc *Controller) html(c *gin.Context, status int, name string, data gin.H) {
	items, err := sc.Navigation.Menu(c.Request.Context())
	if err != nil {
		sc.LogWarnf(logging.GetLogType(constants.LogTypeSite), "error building the menu: %v", err)
	}

	data["route_name"] = c.GetString(constants.RouteNameKey)
	data["request_path"] = c.Request.URL.Path
	data["nav_items"] = items
	if _, ok := data["query"]; !ok {
		data["query"] = c.Query("q")
	}

	c.Render(status, sc.Renderer.Instance(name, data))
}

// fail renders the 404 page for records that do not exist (or are not published)
// and logs everything else as a server error.
func (sc *Controller) fail(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		sc.NotFound(c)
		return
	}

	sc.LogErrorf(logging.GetLogType(constants.LogTypeSite, c.GetString(constants.RouteNameKey), c.Param("slug")), "error rendering %s: %v", c.Request.URL.Path, err)
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
