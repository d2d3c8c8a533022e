package listing

import (
	"context"
	"fmt"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/models"
	"it-solutions-hub/internal/utils"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	PageSize = 5

	// search API limits
	SearchMinLength = 3
	SearchLimit     = 5
	ExcerptLength   = 70
)

// Result is what the article listing templates need.
type Result struct {
	Page  Page[models.Article]
	Title string
	Tags  []models.Tag
	Query string
}

// SearchResult is one hit of the live search API.
type SearchResult struct {
	Title   string `json:"title"`
	Url     string `json:"url"`
	Excerpt string `json:"excerpt"`
}

// Engine produces the article listings: the plain list with optional full-text query,
// the category and tag listings and the live search.
type Engine struct {
	*environment.Env
	// Language selects the collation used to sort tag names.
	Language language.Tag
}

// List returns a page of published articles, filtered by q when it is not empty.
// q is a case-insensitive regular expression matched against title and content.
func (e *Engine) List(ctx context.Context, q string, rawPage string) (Result, error) {
	result := Result{Title: "Articles", Query: q}

	var err error
	if len(q) > 0 {
		result.Title = fmt.Sprintf("Search results for \"%s\"", q)
		result.Page, err = e.matching(ctx, q, rawPage)
	} else {
		result.Page, err = e.page(ctx, database.ArticleFilter{Preload: true}, rawPage)
	}
	if err != nil {
		return Result{}, err
	}

	var tags []models.Tag
	if err := e.FindAllTags(ctx, &tags); err != nil {
		return Result{}, fmt.Errorf("reading tags: %w", err)
	}
	result.Tags = e.sortTags(tags)

	return result, nil
}

// ByCategory lists the published articles of category and the tags they use.
func (e *Engine) ByCategory(ctx context.Context, category models.Category, rawPage string) (Result, error) {
	filter := database.ArticleFilter{CategoryID: &category.ID, Preload: true}
	return e.filtered(ctx, filter, fmt.Sprintf("Articles in category: %s", category.Name), rawPage)
}

// ByTag lists the published articles labelled with tag and all tags those articles use.
func (e *Engine) ByTag(ctx context.Context, tag models.Tag, rawPage string) (Result, error) {
	filter := database.ArticleFilter{TagID: &tag.ID, Preload: true}
	return e.filtered(ctx, filter, fmt.Sprintf("Articles by tag: %s", tag.Name), rawPage)
}

func (e *Engine) filtered(ctx context.Context, filter database.ArticleFilter, title string, rawPage string) (Result, error) {
	page, err := e.page(ctx, filter, rawPage)
	if err != nil {
		return Result{}, err
	}

	var tags []models.Tag
	if err := e.FindTagsOfPublishedArticles(ctx, filter, &tags); err != nil {
		return Result{}, fmt.Errorf("reading tags: %w", err)
	}

	return Result{Page: page, Title: title, Tags: e.sortTags(tags)}, nil
}

// page loads only the articles of the requested page.
func (e *Engine) page(ctx context.Context, filter database.ArticleFilter, rawPage string) (Page[models.Article], error) {
	var count int64
	if err := e.CountPublishedArticles(ctx, filter, &count); err != nil {
		return Page[models.Article]{}, fmt.Errorf("counting articles: %w", err)
	}

	p := Paginator{Count: int(count), PerPage: PageSize}
	number := p.Number(rawPage)
	offset, limit := p.Bounds(number)

	articles := make([]models.Article, 0, limit)
	if limit > 0 {
		if err := e.FindPublishedArticles(ctx, filter, offset, limit, &articles); err != nil {
			return Page[models.Article]{}, fmt.Errorf("reading articles: %w", err)
		}
	}

	return Page[models.Article]{
		Items:    articles,
		Number:   number,
		NumPages: p.NumPages(),
		Count:    p.Count,
		PerPage:  PageSize,
	}, nil
}

// matching filters all published articles in memory, so the regular expression
// semantics do not depend on the database dialect.
func (e *Engine) matching(ctx context.Context, q string, rawPage string) (Page[models.Article], error) {
	re, err := compileQuery(q)
	if err != nil {
		return Page[models.Article]{}, err
	}

	var articles []models.Article
	if err := e.FindPublishedArticles(ctx, database.ArticleFilter{Preload: true}, 0, -1, &articles); err != nil {
		return Page[models.Article]{}, fmt.Errorf("reading articles: %w", err)
	}

	matches := slices.DeleteFunc(articles, func(a models.Article) bool {
		return !re.MatchString(a.Title) && !re.MatchString(a.Content)
	})

	return NewPage(matches, PageSize, rawPage), nil
}

// Search answers the live search: up to SearchLimit published articles whose title matches q.
// Queries shorter than SearchMinLength characters find nothing.
func (e *Engine) Search(ctx context.Context, q string) ([]SearchResult, error) {
	results := make([]SearchResult, 0, SearchLimit)
	if utf8.RuneCountInString(q) < SearchMinLength {
		return results, nil
	}

	re, err := compileQuery(q)
	if err != nil {
		return nil, err
	}

	var articles []models.Article
	if err := e.FindPublishedArticles(ctx, database.ArticleFilter{}, 0, -1, &articles); err != nil {
		return nil, fmt.Errorf("reading articles: %w", err)
	}

	matches := slices.DeleteFunc(articles, func(a models.Article) bool { return !re.MatchString(a.Title) })
	for _, a := range utils.UniqueBy(matches, func(a models.Article) uint { return a.ID }) {
		if len(results) == SearchLimit {
			break
		}
		results = append(results, SearchResult{Title: a.Title, Url: a.AbsoluteURL(), Excerpt: Excerpt(a.Content)})
	}

	return results, nil
}

// Excerpt strips markdown heading markers from content and cuts it to ExcerptLength characters.
func Excerpt(content string) string {
	preview := strings.ReplaceAll(content, "##", "")
	preview = strings.ReplaceAll(preview, "###", "")
	preview = strings.TrimSpace(preview)
	return utils.TruncateRunes(preview, ExcerptLength, "...")
}

func compileQuery(q string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + q)
	if err != nil {
		return nil, fmt.Errorf("invalid search expression %q: %w", q, err)
	}
	return re, nil
}

// sortTags orders tags by name the way a reader of the site language expects.
// A collator is not safe for concurrent use, so every call gets its own.
func (e *Engine) sortTags(tags []models.Tag) []models.Tag {
	c := collate.New(e.Language)
	slices.SortStableFunc(tags, func(a, b models.Tag) int {
		return c.CompareString(a.Name, b.Name)
	})
	return tags
}
