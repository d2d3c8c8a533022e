package models

import (
	"gorm.io/gorm"
	"it-solutions-hub/internal/routing"
)

// page templates selectable in the admin editor
const (
	PageTemplateDefault  = "core/pages/default.html"
	PageTemplateAbout    = "core/pages/about.html"
	PageTemplateContacts = "core/pages/contacts.html"
)

var PageTemplates = []string{PageTemplateDefault, PageTemplateAbout, PageTemplateContacts}

// Page is a free-form page reachable by its bare slug.
type Page struct {
	Model
	Title           string `gorm:"size:200;not null" json:"title"`
	Slug            string `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	ParentID        *uint  `gorm:"index" json:"parent_id"`
	Parent          *Page  `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL;" json:"-"`
	Template        string `gorm:"size:100;not null" json:"template"`
	Content         string `json:"content"`
	IsPublished     bool   `gorm:"not null" json:"is_published"`
	MetaTitle       string `gorm:"size:200" json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

func (p Page) AbsoluteURL() string {
	return routing.URL(routing.RoutePageView, p.Slug)
}

func (p Page) SeoTitle() string {
	return seoFallback(p.MetaTitle, p.Title)
}

// BeforeSave falls back to the default template.
func (p *Page) BeforeSave(_ *gorm.DB) error {
	if len(p.Template) == 0 {
		p.Template = PageTemplateDefault
	}
	return nil
}
