package models

import "it-solutions-hub/internal/routing"

// Service is an entry of the services catalog shown on the home page.
type Service struct {
	Model
	Title            string `gorm:"size:200;not null" json:"title"`
	Slug             string `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	IconClass        string `gorm:"size:100" json:"icon_class"`
	ShortDescription string `gorm:"not null" json:"short_description"`
	FullDescription  string `json:"full_description"`
	OriginalImage    string `gorm:"size:255" json:"original_image"`
	SortOrder        uint   `gorm:"not null;default:0;index" json:"sort_order"`
	MetaTitle        string `gorm:"size:255" json:"meta_title"`
	MetaDescription  string `json:"meta_description"`
}

func (s Service) AbsoluteURL() string {
	return routing.URL(routing.RouteServiceDetail, s.Slug)
}

// SeoTitle falls back to the title when no SEO title is set.
func (s Service) SeoTitle() string {
	return seoFallback(s.MetaTitle, s.Title)
}

// SeoDescription falls back to the short description when no SEO description is set.
func (s Service) SeoDescription() string {
	return seoFallback(s.MetaDescription, s.ShortDescription)
}
