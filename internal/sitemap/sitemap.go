package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/models"
	"it-solutions-hub/internal/routing"
	"strings"
	"time"
)

// Namespace is the sitemaps.org protocol namespace of the urlset element.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// change frequencies
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
	Yearly  = "yearly"
)

// Item is one location of the sitemap.
type Item struct {
	Location     string
	LastModified time.Time
	ChangeFreq   string
	Priority     float64
}

// Feed contributes the items of one content type.
type Feed struct {
	Name  string
	Items func(ctx context.Context, now time.Time) ([]Item, error)
}

// Generator collects the feeds of the site in a fixed order: static views, pages, services, articles.
type Generator struct {
	*environment.Env
}

// Feeds returns the feeds in the order they appear in the sitemap.
func (g Generator) Feeds() []Feed {
	return []Feed{
		{Name: "static", Items: g.static},
		{Name: "pages", Items: g.pages},
		{Name: "services", Items: g.services},
		{Name: "articles", Items: g.articles},
	}
}

// Items concatenates the items of all feeds.
func (g Generator) Items(ctx context.Context, now time.Time) ([]Item, error) {
	var all []Item
	for _, f := range g.Feeds() {
		items, err := f.Items(ctx, now)
		if err != nil {
			return nil, fmt.Errorf("building %s feed: %w", f.Name, err)
		}
		all = append(all, items...)
	}
	return all, nil
}

func (g Generator) static(_ context.Context, now time.Time) ([]Item, error) {
	return []Item{
		{Location: routing.URL(routing.RouteHome), LastModified: now, ChangeFreq: Daily, Priority: 1.0},
		{Location: routing.URL(routing.RouteArticleList), LastModified: now, ChangeFreq: Weekly, Priority: 0.9},
	}, nil
}

func (g Generator) pages(ctx context.Context, _ time.Time) ([]Item, error) {
	var pages []models.Page
	if err := g.FindPublishedPages(ctx, &pages); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(pages))
	for _, p := range pages {
		items = append(items, Item{Location: p.AbsoluteURL(), LastModified: p.UpdatedAt, ChangeFreq: Monthly, Priority: 0.8})
	}
	return items, nil
}

func (g Generator) services(ctx context.Context, _ time.Time) ([]Item, error) {
	var services []models.Service
	if err := g.FindAllServices(ctx, &services); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(services))
	for _, s := range services {
		items = append(items, Item{Location: s.AbsoluteURL(), LastModified: s.UpdatedAt, ChangeFreq: Yearly, Priority: 0.8})
	}
	return items, nil
}

func (g Generator) articles(ctx context.Context, _ time.Time) ([]Item, error) {
	var articles []models.Article
	if err := g.FindPublishedArticlesForSitemap(ctx, &articles); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(articles))
	for _, a := range articles {
		items = append(items, Item{Location: a.AbsoluteURL(), LastModified: a.UpdatedAt, ChangeFreq: Weekly, Priority: 0.7})
	}
	return items, nil
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	Urls    []url    `xml:"url"`
}

type url struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority"`
}

// Marshal encodes items as a urlset document with absolute locations below baseUrl.
func Marshal(baseUrl string, items []Item) ([]byte, error) {
	set := urlset{Xmlns: Namespace, Urls: make([]url, 0, len(items))}
	base := strings.TrimSuffix(baseUrl, "/")

	for _, i := range items {
		u := url{
			Loc:        base + i.Location,
			ChangeFreq: i.ChangeFreq,
			Priority:   fmt.Sprintf("%.1f", i.Priority),
		}
		if !i.LastModified.IsZero() {
			u.LastMod = i.LastModified.Format(time.DateOnly)
		}
		set.Urls = append(set.Urls, u)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
