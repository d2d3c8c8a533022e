package models

import (
	"it-solutions-hub/internal/routing"
	"time"
)

// Article is a blog post. PublishedDate is set once on creation,
// Model.UpdatedAt is refreshed on every save.
type Article struct {
	Model
	Title           string    `gorm:"size:200;not null" json:"title"`
	Slug            string    `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Content         string    `gorm:"not null" json:"content"`
	PublishedDate   time.Time `gorm:"autoCreateTime;index" json:"published_date"`
	IsPublished     bool      `gorm:"not null;index" json:"is_published"`
	AuthorID        *uint     `gorm:"index" json:"author_id"`
	Author          *User     `gorm:"constraint:OnDelete:SET NULL;" json:"author,omitempty"`
	CategoryID      *uint     `gorm:"index" json:"category_id"`
	Category        *Category `gorm:"constraint:OnDelete:SET NULL;" json:"category,omitempty"`
	Tags            []Tag     `gorm:"many2many:article_tags;" json:"tags,omitempty"`
	TagIDs          []uint    `gorm:"-" json:"tag_ids,omitempty"`
	OriginalImage   string    `gorm:"size:255" json:"original_image"`
	MetaTitle       string    `gorm:"size:200" json:"meta_title"`
	MetaDescription string    `json:"meta_description"`
}

func (a Article) AbsoluteURL() string {
	return routing.URL(routing.RouteArticleDetail, a.Slug)
}

func (a Article) SeoTitle() string {
	return seoFallback(a.MetaTitle, a.Title)
}
