package database

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"it-solutions-hub/internal/models"
	"slices"
	"strings"
)

// ErrNotFound is returned by single-record lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// ErrUnknownReference is returned when a write refers to a record that does not exist.
var ErrUnknownReference = errors.New("referenced record does not exist")

// ArticleFilter restricts article queries to the published articles of a category or tag.
// Preload loads author, category and tags of each article.
type ArticleFilter struct {
	CategoryID *uint
	TagID      *uint
	Preload    bool
}

// RecordQuery describes an admin list request.
// Column names must come from the schema registry, never from user input.
type RecordQuery struct {
	Search        string
	SearchColumns []string
	Filters       map[string]any
	Order         string
	Offset        int
	Limit         int
}

// Repository defines data access methods for the site content
// (services, pages, articles and their taxonomy) and the admin users.
type Repository interface {
	Ping(ctx context.Context) error

	// FindAllServices retrieves all services in display order.
	FindAllServices(ctx context.Context, services *[]models.Service) error

	FindServiceBySlug(ctx context.Context, slug string, service *models.Service) error

	// FindPublishedPageBySlug fetches a published page; unpublished pages are reported as ErrNotFound.
	FindPublishedPageBySlug(ctx context.Context, slug string, page *models.Page) error

	FindPublishedPages(ctx context.Context, pages *[]models.Page) error

	FindCategoryBySlug(ctx context.Context, slug string, category *models.Category) error

	FindTagBySlug(ctx context.Context, slug string, tag *models.Tag) error

	FindAllTags(ctx context.Context, tags *[]models.Tag) error

	// FindPublishedArticleBySlug fetches a published article with author, category and tags.
	FindPublishedArticleBySlug(ctx context.Context, slug string, article *models.Article) error

	// FindRelatedArticles fetches up to limit other published articles of the same category.
	FindRelatedArticles(ctx context.Context, article models.Article, limit int, articles *[]models.Article) error

	CountPublishedArticles(ctx context.Context, filter ArticleFilter, count *int64) error

	// FindPublishedArticles fetches published articles, newest first.
	// A negative limit fetches all articles from offset on.
	FindPublishedArticles(ctx context.Context, filter ArticleFilter, offset, limit int, articles *[]models.Article) error

	// FindTagsOfPublishedArticles fetches the distinct tags used by at least one article in the filtered scope.
	FindTagsOfPublishedArticles(ctx context.Context, filter ArticleFilter, tags *[]models.Tag) error

	// FindPublishedArticlesForSitemap fetches published articles, most recently updated first.
	FindPublishedArticlesForSitemap(ctx context.Context, articles *[]models.Article) error

	// FindUserLoginCredentials fetches the user record with the specified username.
	FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error

	// SaveUser inserts the user when it has no id yet, otherwise updates it.
	SaveUser(ctx context.Context, user *models.User) error

	// FindRecords lists records of model's table; total receives the unpaged count.
	FindRecords(ctx context.Context, model any, query RecordQuery, records any, total *int64) error

	// FindRecordByID fetches one record with its associations.
	FindRecordByID(ctx context.Context, id uint, record any) error

	CreateRecord(ctx context.Context, record any) error

	SaveRecord(ctx context.Context, record any) error

	// DeleteRecord deletes a record, nulling or removing the references pointing at it first.
	DeleteRecord(ctx context.Context, record any) error

	// CountRecordsWhere counts the records whose column equals value, ignoring the record excludeID.
	CountRecordsWhere(ctx context.Context, model any, column string, value any, excludeID uint, count *int64) error

	// ReplaceArticleTags sets the tags of an article to exactly tagIDs.
	ReplaceArticleTags(ctx context.Context, article *models.Article, tagIDs []uint) error
}

// NullRepository is a no-op implementation of the Repository interface.
// Single-record lookups report ErrNotFound, everything else succeeds without data.
type NullRepository struct{}

// ensure NullRepository implements Repository
var _ Repository = &NullRepository{}

func (n *NullRepository) Ping(ctx context.Context) error {
	return nil
}

func (n *NullRepository) FindAllServices(ctx context.Context, services *[]models.Service) error {
	return nil
}

func (n *NullRepository) FindServiceBySlug(ctx context.Context, slug string, service *models.Service) error {
	return ErrNotFound
}

func (n *NullRepository) FindPublishedPageBySlug(ctx context.Context, slug string, page *models.Page) error {
	return ErrNotFound
}

func (n *NullRepository) FindPublishedPages(ctx context.Context, pages *[]models.Page) error {
	return nil
}

func (n *NullRepository) FindCategoryBySlug(ctx context.Context, slug string, category *models.Category) error {
	return ErrNotFound
}

func (n *NullRepository) FindTagBySlug(ctx context.Context, slug string, tag *models.Tag) error {
	return ErrNotFound
}

func (n *NullRepository) FindAllTags(ctx context.Context, tags *[]models.Tag) error {
	return nil
}

func (n *NullRepository) FindPublishedArticleBySlug(ctx context.Context, slug string, article *models.Article) error {
	return ErrNotFound
}

func (n *NullRepository) FindRelatedArticles(ctx context.Context, article models.Article, limit int, articles *[]models.Article) error {
	return nil
}

func (n *NullRepository) CountPublishedArticles(ctx context.Context, filter ArticleFilter, count *int64) error {
	return nil
}

func (n *NullRepository) FindPublishedArticles(ctx context.Context, filter ArticleFilter, offset, limit int, articles *[]models.Article) error {
	return nil
}

func (n *NullRepository) FindTagsOfPublishedArticles(ctx context.Context, filter ArticleFilter, tags *[]models.Tag) error {
	return nil
}

func (n *NullRepository) FindPublishedArticlesForSitemap(ctx context.Context, articles *[]models.Article) error {
	return nil
}

func (n *NullRepository) FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error {
	return ErrNotFound
}

func (n *NullRepository) SaveUser(ctx context.Context, user *models.User) error {
	return nil
}

func (n *NullRepository) FindRecords(ctx context.Context, model any, query RecordQuery, records any, total *int64) error {
	return nil
}

func (n *NullRepository) FindRecordByID(ctx context.Context, id uint, record any) error {
	return ErrNotFound
}

func (n *NullRepository) CreateRecord(ctx context.Context, record any) error {
	return nil
}

func (n *NullRepository) SaveRecord(ctx context.Context, record any) error {
	return nil
}

func (n *NullRepository) DeleteRecord(ctx context.Context, record any) error {
	return nil
}

func (n *NullRepository) CountRecordsWhere(ctx context.Context, model any, column string, value any, excludeID uint, count *int64) error {
	return nil
}

func (n *NullRepository) ReplaceArticleTags(ctx context.Context, article *models.Article, tagIDs []uint) error {
	return nil
}

// GormRepository provides a GORM-based implementation of the Repository interface.
type GormRepository struct {
	*gorm.DB
}

// ensure GormRepository implements Repository
var _ Repository = &GormRepository{}

// notFound maps gorm's record-not-found error to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *GormRepository) FindAllServices(ctx context.Context, services *[]models.Service) error {
	return g.DB.
		WithContext(ctx).
		Order("sort_order, id").
		Find(services).
		Error
}

func (g *GormRepository) FindServiceBySlug(ctx context.Context, slug string, service *models.Service) error {
	return notFound(g.DB.
		WithContext(ctx).
		Where("slug = ?", slug).
		Take(service).
		Error)
}

func (g *GormRepository) FindPublishedPageBySlug(ctx context.Context, slug string, page *models.Page) error {
	return notFound(g.DB.
		WithContext(ctx).
		Where("slug = ? AND is_published = ?", slug, true).
		Take(page).
		Error)
}

func (g *GormRepository) FindPublishedPages(ctx context.Context, pages *[]models.Page) error {
	return g.DB.
		WithContext(ctx).
		Where("is_published = ?", true).
		Order("slug").
		Find(pages).
		Error
}

func (g *GormRepository) FindCategoryBySlug(ctx context.Context, slug string, category *models.Category) error {
	return notFound(g.DB.
		WithContext(ctx).
		Where("slug = ?", slug).
		Take(category).
		Error)
}

func (g *GormRepository) FindTagBySlug(ctx context.Context, slug string, tag *models.Tag) error {
	return notFound(g.DB.
		WithContext(ctx).
		Where("slug = ?", slug).
		Take(tag).
		Error)
}

func (g *GormRepository) FindAllTags(ctx context.Context, tags *[]models.Tag) error {
	return g.DB.
		WithContext(ctx).
		Order("name").
		Find(tags).
		Error
}

func (g *GormRepository) FindPublishedArticleBySlug(ctx context.Context, slug string, article *models.Article) error {
	return notFound(g.DB.
		WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Where("slug = ? AND is_published = ?", slug, true).
		Take(article).
		Error)
}

func (g *GormRepository) FindRelatedArticles(ctx context.Context, article models.Article, limit int, articles *[]models.Article) error {
	if article.CategoryID == nil {
		return nil
	}
	return g.DB.
		WithContext(ctx).
		Where("category_id = ? AND is_published = ? AND id <> ?", *article.CategoryID, true, article.ID).
		Order("published_date DESC, id DESC").
		Limit(limit).
		Find(articles).
		Error
}

// publishedArticles scopes a query to the published articles matching filter.
func publishedArticles(filter ArticleFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("articles.is_published = ?", true)
		if filter.CategoryID != nil {
			tx = tx.Where("articles.category_id = ?", *filter.CategoryID)
		}
		if filter.TagID != nil {
			tx = tx.Where("articles.id IN (?)", tx.Session(&gorm.Session{NewDB: true}).
				Table("article_tags").
				Select("article_id").
				Where("tag_id = ?", *filter.TagID))
		}
		return tx
	}
}

func (g *GormRepository) CountPublishedArticles(ctx context.Context, filter ArticleFilter, count *int64) error {
	return g.DB.
		WithContext(ctx).
		Model(&models.Article{}).
		Scopes(publishedArticles(filter)).
		Count(count).
		Error
}

func (g *GormRepository) FindPublishedArticles(ctx context.Context, filter ArticleFilter, offset, limit int, articles *[]models.Article) error {
	tx := g.DB.
		WithContext(ctx).
		Scopes(publishedArticles(filter)).
		Order("articles.published_date DESC, articles.id DESC")

	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if limit >= 0 {
		tx = tx.Limit(limit)
	}
	if filter.Preload {
		tx = tx.
			Preload("Author").
			Preload("Category").
			Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") })
	}

	return tx.Find(articles).Error
}

func (g *GormRepository) FindTagsOfPublishedArticles(ctx context.Context, filter ArticleFilter, tags *[]models.Tag) error {
	articleIDs := g.DB.
		Session(&gorm.Session{NewDB: true}).
		Model(&models.Article{}).
		Select("articles.id").
		Scopes(publishedArticles(filter))

	return g.DB.
		WithContext(ctx).
		Where("tags.id IN (?)", g.DB.
			Session(&gorm.Session{NewDB: true}).
			Table("article_tags").
			Select("tag_id").
			Where("article_id IN (?)", articleIDs)).
		Order("tags.name").
		Find(tags).
		Error
}

func (g *GormRepository) FindPublishedArticlesForSitemap(ctx context.Context, articles *[]models.Article) error {
	return g.DB.
		WithContext(ctx).
		Where("is_published = ?", true).
		Order("updated_at DESC, id DESC").
		Find(articles).
		Error
}

func (g *GormRepository) FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error {
	return notFound(g.DB.
		WithContext(ctx).
		Model(models.User{}).
		Where("username = ?", username).
		Take(user).
		Error)
}

func (g *GormRepository) SaveUser(ctx context.Context, user *models.User) error {
	return g.DB.
		WithContext(ctx).
		Save(user).
		Error
}

// likeEscaper makes the admin search match % and _ literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// recordScope applies the search and filter part of a RecordQuery.
func recordScope(query RecordQuery) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if len(query.Search) > 0 && len(query.SearchColumns) > 0 {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(query.Search)) + "%"
			conditions := make([]string, 0, len(query.SearchColumns))
			args := make([]any, 0, len(query.SearchColumns))
			for _, column := range query.SearchColumns {
				conditions = append(conditions, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column))
				args = append(args, pattern)
			}
			tx = tx.Where("("+strings.Join(conditions, " OR ")+")", args...)
		}

		columns := make([]string, 0, len(query.Filters))
		for column := range query.Filters {
			columns = append(columns, column)
		}
		slices.Sort(columns)
		for _, column := range columns {
			value := query.Filters[column]
			if value == nil {
				tx = tx.Where(fmt.Sprintf("%s IS NULL", column))
				continue
			}
			tx = tx.Where(fmt.Sprintf("%s = ?", column), value)
		}

		return tx
	}
}

func (g *GormRepository) FindRecords(ctx context.Context, model any, query RecordQuery, records any, total *int64) error {
	err := g.DB.
		WithContext(ctx).
		Model(model).
		Scopes(recordScope(query)).
		Count(total).
		Error
	if err != nil {
		return err
	}

	tx := g.DB.
		WithContext(ctx).
		Model(model).
		Scopes(recordScope(query))
	if len(query.Order) > 0 {
		tx = tx.Order(query.Order)
	}
	if query.Offset > 0 {
		tx = tx.Offset(query.Offset)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	return tx.Find(records).Error
}

func (g *GormRepository) FindRecordByID(ctx context.Context, id uint, record any) error {
	return notFound(g.DB.
		WithContext(ctx).
		Preload(clause.Associations).
		Where("id = ?", id).
		Take(record).
		Error)
}

func (g *GormRepository) CreateRecord(ctx context.Context, record any) error {
	return g.DB.
		WithContext(ctx).
		Omit(clause.Associations).
		Create(record).
		Error
}

func (g *GormRepository) SaveRecord(ctx context.Context, record any) error {
	return g.DB.
		WithContext(ctx).
		Omit(clause.Associations).
		Save(record).
		Error
}

func (g *GormRepository) DeleteRecord(ctx context.Context, record any) error {
	return g.DB.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			if err := detachDependents(tx, record); err != nil {
				return err
			}
			return tx.Delete(record).Error
		})
}

// detachDependents nulls the foreign keys and join rows referring to record,
// independent of whether the database enforces ON DELETE actions.
func detachDependents(tx *gorm.DB, record any) error {
	switch r := record.(type) {
	case *models.Category:
		return tx.Model(&models.Article{}).
			Where("category_id = ?", r.ID).
			UpdateColumn("category_id", nil).
			Error
	case *models.User:
		return tx.Model(&models.Article{}).
			Where("author_id = ?", r.ID).
			UpdateColumn("author_id", nil).
			Error
	case *models.Page:
		return tx.Model(&models.Page{}).
			Where("parent_id = ?", r.ID).
			UpdateColumn("parent_id", nil).
			Error
	case *models.Tag:
		return tx.Exec("DELETE FROM article_tags WHERE tag_id = ?", r.ID).Error
	case *models.Article:
		return tx.Exec("DELETE FROM article_tags WHERE article_id = ?", r.ID).Error
	}
	return nil
}

func (g *GormRepository) CountRecordsWhere(ctx context.Context, model any, column string, value any, excludeID uint, count *int64) error {
	tx := g.DB.
		WithContext(ctx).
		Model(model).
		Where(fmt.Sprintf("%s = ?", column), value)
	if excludeID > 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	return tx.Count(count).Error
}

func (g *GormRepository) ReplaceArticleTags(ctx context.Context, article *models.Article, tagIDs []uint) error {
	ids := slices.Compact(slices.Sorted(slices.Values(tagIDs)))

	return g.DB.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			var tags []models.Tag
			if len(ids) > 0 {
				if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
					return err
				}
				if len(tags) != len(ids) {
					return fmt.Errorf("tags %v: %w", ids, ErrUnknownReference)
				}
			}

			association := tx.Model(article).Association("Tags")
			if len(tags) == 0 {
				return association.Clear()
			}
			return association.Replace(tags)
		})
}
