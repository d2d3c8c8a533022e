package models

import "it-solutions-hub/internal/routing"

// Category groups articles; an article belongs to at most one category.
type Category struct {
	Model
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug string `gorm:"size:100;not null;uniqueIndex" json:"slug"`
}

func (c Category) AbsoluteURL() string {
	return routing.URL(routing.RouteArticleCategory, c.Slug)
}

// Tag labels articles; the relation is many-to-many through article_tags.
type Tag struct {
	Model
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug string `gorm:"size:100;not null;uniqueIndex" json:"slug"`
}

func (t Tag) AbsoluteURL() string {
	return routing.URL(routing.RouteArticleTag, t.Slug)
}
