package schema

import (
	"it-solutions-hub/internal/models"
	"it-solutions-hub/internal/utils"
	"slices"
)

// Kind is the value type of a field as seen by the admin editor.
type Kind int

const (
	KindString Kind = iota
	KindText
	KindInt
	KindBool
	KindTime
	KindRef
	KindRefs
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindRef:
		return "ref"
	case KindRefs:
		return "refs"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Field describes one editable or displayable attribute of an entity.
type Field struct {
	Name      string
	Kind      Kind
	Required  bool
	MaxLength int
	Unique    bool
	Choices   []string
	ReadOnly  bool
	Default   any
	// RefEntity names the referenced entity for KindRef and KindRefs fields.
	RefEntity string
	// ColumnName overrides the column derived from Name.
	ColumnName string
}

// Column returns the storage column (and payload key) of the field.
func (f Field) Column() string {
	if len(f.ColumnName) > 0 {
		return f.ColumnName
	}
	return utils.ToSnakeCase(f.Name)
}

// Entity is the explicit definition of a content type.
type Entity struct {
	Name         string
	Table        string
	Fields       []Field
	ListFields   []string
	SearchFields []string
	FilterFields []string
	// SlugSource is the field the slug is derived from on create.
	SlugSource   string
	DefaultOrder string
	// HasImage marks entities that accept an uploaded original image.
	HasImage bool
	// New returns a pointer to a zero record.
	New func() any
	// NewSlice returns a pointer to an empty record slice.
	NewSlice func() any
}

// Field looks up a field by column name.
func (e Entity) Field(column string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Column() == column {
			return f, true
		}
	}
	return Field{}, false
}

// Columns maps a list of field names to their columns.
func (e Entity) Columns(names []string) []string {
	columns := make([]string, 0, len(names))
	for _, n := range names {
		column := utils.ToSnakeCase(n)
		for _, f := range e.Fields {
			if f.Name == n {
				column = f.Column()
				break
			}
		}
		columns = append(columns, column)
	}
	return columns
}

// IsFilterable reports whether column may be used as an exact-match filter.
func (e Entity) IsFilterable(column string) bool {
	return slices.Contains(e.Columns(e.FilterFields), column)
}

// entity names
const (
	Services   = "services"
	Pages      = "pages"
	Categories = "categories"
	Tags       = "tags"
	Articles   = "articles"
	Users      = "users"
)

var seoFields = []Field{
	{Name: "MetaTitle", Kind: KindString, MaxLength: 200},
	{Name: "MetaDescription", Kind: KindText},
}

var timestampFields = []Field{
	{Name: "ID", Kind: KindInt, ReadOnly: true},
	{Name: "CreatedAt", Kind: KindTime, ReadOnly: true},
	{Name: "UpdatedAt", Kind: KindTime, ReadOnly: true},
}

func fields(f ...[]Field) []Field {
	return slices.Concat(f...)
}

// registry holds the entities in migration order: referenced tables come first.
var registry = []Entity{
	{
		Name:         Users,
		Table:        "users",
		Fields:       fields(timestampFields, []Field{{Name: "Username", Kind: KindString, Required: true, MaxLength: 150, Unique: true}, {Name: "Email", Kind: KindString, MaxLength: 254}}),
		ListFields:   []string{"Username", "Email"},
		SearchFields: []string{"Username", "Email"},
		DefaultOrder: "username",
		New:          func() any { return &models.User{} },
		NewSlice:     func() any { return &[]models.User{} },
	},
	{
		Name:  Services,
		Table: "services",
		Fields: fields(timestampFields, []Field{
			{Name: "Title", Kind: KindString, Required: true, MaxLength: 200},
			{Name: "Slug", Kind: KindString, Required: true, MaxLength: 200, Unique: true},
			{Name: "SortOrder", Kind: KindInt, Default: 0},
			{Name: "IconClass", Kind: KindString, MaxLength: 100},
			{Name: "OriginalImage", Kind: KindImage, MaxLength: 255, ReadOnly: true},
			{Name: "ShortDescription", Kind: KindText, Required: true},
			{Name: "FullDescription", Kind: KindText},
			{Name: "MetaTitle", Kind: KindString, MaxLength: 255},
			{Name: "MetaDescription", Kind: KindText},
		}),
		ListFields:   []string{"Title", "SortOrder"},
		SearchFields: []string{"Title"},
		SlugSource:   "Title",
		DefaultOrder: "sort_order, id",
		HasImage:     true,
		New:          func() any { return &models.Service{} },
		NewSlice:     func() any { return &[]models.Service{} },
	},
	{
		Name:  Pages,
		Table: "pages",
		Fields: fields(timestampFields, []Field{
			{Name: "Title", Kind: KindString, Required: true, MaxLength: 200},
			{Name: "Slug", Kind: KindString, Required: true, MaxLength: 200, Unique: true},
			{Name: "IsPublished", Kind: KindBool, Default: true},
			{Name: "ParentID", Kind: KindRef, RefEntity: Pages},
			{Name: "Template", Kind: KindString, MaxLength: 100, Choices: models.PageTemplates, Default: models.PageTemplateDefault},
			{Name: "Content", Kind: KindText},
		}, seoFields),
		ListFields:   []string{"Title", "Slug", "Template", "IsPublished"},
		SearchFields: []string{"Title", "Content"},
		FilterFields: []string{"IsPublished", "Template"},
		SlugSource:   "Title",
		DefaultOrder: "slug",
		New:          func() any { return &models.Page{} },
		NewSlice:     func() any { return &[]models.Page{} },
	},
	{
		Name:  Categories,
		Table: "categories",
		Fields: fields(timestampFields, []Field{
			{Name: "Name", Kind: KindString, Required: true, MaxLength: 100, Unique: true},
			{Name: "Slug", Kind: KindString, Required: true, MaxLength: 100, Unique: true},
		}),
		ListFields:   []string{"Name", "Slug"},
		SearchFields: []string{"Name"},
		SlugSource:   "Name",
		DefaultOrder: "name",
		New:          func() any { return &models.Category{} },
		NewSlice:     func() any { return &[]models.Category{} },
	},
	{
		Name:  Tags,
		Table: "tags",
		Fields: fields(timestampFields, []Field{
			{Name: "Name", Kind: KindString, Required: true, MaxLength: 100, Unique: true},
			{Name: "Slug", Kind: KindString, Required: true, MaxLength: 100, Unique: true},
		}),
		ListFields:   []string{"Name", "Slug"},
		SearchFields: []string{"Name"},
		SlugSource:   "Name",
		DefaultOrder: "name",
		New:          func() any { return &models.Tag{} },
		NewSlice:     func() any { return &[]models.Tag{} },
	},
	{
		Name:  Articles,
		Table: "articles",
		Fields: fields(timestampFields, []Field{
			{Name: "Title", Kind: KindString, Required: true, MaxLength: 200},
			{Name: "Slug", Kind: KindString, Required: true, MaxLength: 200, Unique: true},
			{Name: "CategoryID", Kind: KindRef, RefEntity: Categories},
			{Name: "IsPublished", Kind: KindBool, Default: false},
			{Name: "Content", Kind: KindText, Required: true},
			{Name: "OriginalImage", Kind: KindImage, MaxLength: 255, ReadOnly: true},
			{Name: "TagIDs", Kind: KindRefs, RefEntity: Tags, ColumnName: "tag_ids"},
			{Name: "AuthorID", Kind: KindRef, RefEntity: Users},
			{Name: "PublishedDate", Kind: KindTime, ReadOnly: true},
		}, seoFields),
		ListFields:   []string{"Title", "CategoryID", "AuthorID", "PublishedDate", "IsPublished"},
		SearchFields: []string{"Title", "Content"},
		FilterFields: []string{"IsPublished", "CategoryID", "AuthorID"},
		SlugSource:   "Title",
		DefaultOrder: "published_date DESC",
		HasImage:     true,
		New:          func() any { return &models.Article{} },
		NewSlice:     func() any { return &[]models.Article{} },
	},
}

// Entities returns all entity definitions in migration order.
func Entities() []Entity {
	return slices.Clone(registry)
}

// Lookup finds an entity definition by name.
func Lookup(name string) (Entity, bool) {
	for _, e := range registry {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// Editable returns the entities the admin editor exposes.
func Editable() []Entity {
	editable := make([]Entity, 0, len(registry))
	for _, e := range registry {
		if e.Name == Users {
			continue
		}
		editable = append(editable, e)
	}
	return editable
}
