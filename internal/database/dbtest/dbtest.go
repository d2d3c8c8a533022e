// Package dbtest opens migrated in-memory sqlite databases and seeds content for tests.
package dbtest

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/logging"
	"it-solutions-hub/internal/models"
	"testing"
	"time"
)

// Open returns a migrated in-memory database that lives as long as the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("error opening sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("error getting sql.DB: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db, &logging.NullLogger{}); err != nil {
		t.Fatalf("error migrating: %v", err)
	}

	return db
}

// Repository wraps Open in a GormRepository.
func Repository(t testing.TB) *database.GormRepository {
	return &database.GormRepository{DB: Open(t)}
}

// Create inserts records and fails the test on error.
func Create(t testing.TB, db *gorm.DB, records ...any) {
	t.Helper()
	for _, r := range records {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("error creating %T: %v", r, err)
		}
	}
}

// Day returns midnight UTC of the given day in January 2025, handy for ordering articles.
func Day(day int) time.Time {
	return time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Content holds the records created by Seed.
type Content struct {
	Networking models.Category
	Security   models.Category
	Mikrotik   models.Tag
	Linux      models.Tag
	Backup     models.Tag
	Author     models.User
	Articles   []models.Article
	Draft      models.Article
	Services   []models.Service
	Pages      []models.Page
}

// Seed creates a small site: six published networking articles (oldest first in Articles),
// one published security article, one unpublished draft, three services and four pages.
func Seed(t testing.TB, db *gorm.DB) Content {
	t.Helper()

	c := Content{
		Networking: models.Category{Name: "Networking", Slug: "networking"},
		Security:   models.Category{Name: "Security", Slug: "security"},
		Mikrotik:   models.Tag{Name: "MikroTik", Slug: "mikrotik"},
		Linux:      models.Tag{Name: "Linux", Slug: "linux"},
		Backup:     models.Tag{Name: "Backup", Slug: "backup"},
		Author:     models.User{Username: "admin", Email: "admin@example.com", Password: "x"},
	}
	Create(t, db, &c.Networking, &c.Security, &c.Mikrotik, &c.Linux, &c.Backup, &c.Author)

	titles := []string{"VLAN basics", "Router setup", "Firewall rules", "VPN tunnels", "Wi-Fi roaming", "Switch stacking"}
	for i, title := range titles {
		a := models.Article{
			Title:         title,
			Slug:          "networking-" + string(rune('a'+i)),
			Content:       "## " + title + "\nBody of the article number " + string(rune('1'+i)),
			PublishedDate: Day(i + 1),
			IsPublished:   true,
			CategoryID:    &c.Networking.ID,
			AuthorID:      &c.Author.ID,
			Tags:          []models.Tag{c.Mikrotik},
		}
		if i%2 == 0 {
			a.Tags = append(a.Tags, c.Linux)
		}
		Create(t, db, &a)
		c.Articles = append(c.Articles, a)
	}

	hardening := models.Article{
		Title:         "Server hardening",
		Slug:          "server-hardening",
		Content:       "### Checklist\nKeep your Linux servers patched.",
		PublishedDate: Day(10),
		IsPublished:   true,
		CategoryID:    &c.Security.ID,
		Tags:          []models.Tag{c.Linux},
	}
	Create(t, db, &hardening)
	c.Articles = append(c.Articles, hardening)

	c.Draft = models.Article{
		Title:         "Unfinished backup guide",
		Slug:          "backup-draft",
		Content:       "draft",
		PublishedDate: Day(20),
		IsPublished:   false,
		CategoryID:    &c.Networking.ID,
		Tags:          []models.Tag{c.Backup},
	}
	Create(t, db, &c.Draft)

	c.Services = []models.Service{
		{Title: "Web design", Slug: "web-design", ShortDescription: "Sites", SortOrder: 2},
		{Title: "Network setup", Slug: "network-setup", ShortDescription: "Networks", SortOrder: 1},
		{Title: "Support", Slug: "support", ShortDescription: "Help", SortOrder: 3},
	}
	for i := range c.Services {
		Create(t, db, &c.Services[i])
	}

	c.Pages = []models.Page{
		{Title: "Home", Slug: "home", IsPublished: true},
		{Title: "About", Slug: "about", Template: models.PageTemplateAbout, IsPublished: true, Content: "# About us"},
		{Title: "Contacts", Slug: "contacts", Template: models.PageTemplateContacts, IsPublished: true},
		{Title: "Hidden", Slug: "hidden", IsPublished: false},
	}
	for i := range c.Pages {
		Create(t, db, &c.Pages[i])
	}

	return c
}
