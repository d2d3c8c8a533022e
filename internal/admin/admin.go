package admin

import (
	"context"
	"errors"
	"fmt"
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/models"
	"it-solutions-hub/internal/schema"
	"it-solutions-hub/internal/slug"
	"it-solutions-hub/internal/validation"
	"reflect"
	"strconv"
	"strings"
)

// RecordService holds the editor rules that go beyond checking a single payload:
// defaults, derived slugs, uniqueness, references and the author of articles.
type RecordService struct {
	*environment.Env
}

// Prepare completes a create payload: missing fields get their defaults
// and an empty slug is derived from the entity's slug source.
func (s RecordService) Prepare(entity schema.Entity, payload map[string]any) {
	for _, f := range entity.Fields {
		if f.Default == nil || f.ReadOnly {
			continue
		}
		if _, ok := payload[f.Column()]; !ok {
			payload[f.Column()] = f.Default
		}
	}

	if len(entity.SlugSource) == 0 {
		return
	}
	slugField, ok := entity.Field("slug")
	if !ok {
		return
	}
	if current, ok := payload["slug"].(string); ok && len(strings.TrimSpace(current)) > 0 {
		return
	}
	source, ok := payload[entity.Columns([]string{entity.SlugSource})[0]].(string)
	if !ok {
		return
	}
	payload["slug"] = slug.Make(source, slugField.MaxLength)
}

// Check validates payload against entity and the stored records.
// id is the record being updated, 0 on create.
func (s RecordService) Check(ctx context.Context, entity schema.Entity, payload map[string]any, id uint) error {
	err := validation.Payload(entity, payload, id > 0)

	var errs validation.Errors
	if !errors.As(err, &errs) {
		if err != nil {
			return err
		}
		errs = validation.Errors{}
	}

	for _, f := range entity.Fields {
		key := f.Column()
		value, present := payload[key]
		if !present {
			continue
		}
		if _, rejected := errs[key]; rejected {
			continue
		}

		msg, err := s.checkStored(ctx, entity, f, value, id)
		if err != nil {
			return err
		}
		if len(msg) > 0 {
			errs[key] = msg
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s RecordService) checkStored(ctx context.Context, entity schema.Entity, f schema.Field, value any, id uint) (string, error) {
	switch {
	case f.Unique:
		var count int64
		if err := s.CountRecordsWhere(ctx, entity.New(), f.Column(), value, id, &count); err != nil {
			return "", err
		}
		if count > 0 {
			return fmt.Sprintf("%s with this value already exists", entity.Name), nil
		}
	case f.Kind == schema.KindRef && value != nil:
		ref, _ := toID(value)
		if f.RefEntity == entity.Name && ref == id {
			return "must not refer to the record itself", nil
		}
		return s.checkExists(ctx, f.RefEntity, ref)
	case f.Kind == schema.KindRefs:
		for _, v := range value.([]any) {
			ref, _ := toID(v)
			if msg, err := s.checkExists(ctx, f.RefEntity, ref); len(msg) > 0 || err != nil {
				return msg, err
			}
		}
	}
	return "", nil
}

func (s RecordService) checkExists(ctx context.Context, entityName string, id uint) (string, error) {
	ref, ok := schema.Lookup(entityName)
	if !ok {
		return "", fmt.Errorf("unknown entity %q", entityName)
	}
	err := s.FindRecordByID(ctx, id, ref.New())
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Sprintf("%s %d does not exist", ref.Name, id), nil
	}
	return "", err
}

// AssignAuthor makes the acting admin the author of an article that has none.
func AssignAuthor(record any, userID uint) {
	a, ok := record.(*models.Article)
	if !ok || a.AuthorID != nil || userID == 0 {
		return
	}
	a.AuthorID = &userID
}

// DetachAssociations drops loaded associations so saving writes the foreign key columns only.
func DetachAssociations(record any) {
	switch r := record.(type) {
	case *models.Article:
		r.Author = nil
		r.Category = nil
		r.Tags = nil
	case *models.Page:
		r.Parent = nil
	}
}

// Image returns the stored image path of records that accept an upload.
func Image(record any) (*string, bool) {
	switch r := record.(type) {
	case *models.Service:
		return &r.OriginalImage, true
	case *models.Article:
		return &r.OriginalImage, true
	}
	return nil, false
}

// Key returns the primary key of a record.
func Key(record any) uint {
	if k, ok := record.(interface{ Key() uint }); ok {
		return k.Key()
	}
	return 0
}

// Items flattens a pointer to a record slice.
func Items(records any) []any {
	v := reflect.Indirect(reflect.ValueOf(records))
	if v.Kind() != reflect.Slice {
		return []any{}
	}
	items := make([]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		items = append(items, v.Index(i).Interface())
	}
	return items
}

// FilterValue converts a filter query parameter to the field's type. "null" matches missing values.
func FilterValue(f schema.Field, raw string) (any, error) {
	if raw == "null" {
		return nil, nil
	}
	switch f.Kind {
	case schema.KindBool:
		return strconv.ParseBool(raw)
	case schema.KindInt, schema.KindRef:
		n, err := strconv.ParseUint(raw, 10, 0)
		return uint(n), err
	}
	return raw, nil
}

func toID(value any) (uint, bool) {
	switch v := value.(type) {
	case float64:
		return uint(v), v > 0
	case int:
		return uint(v), v > 0
	case uint:
		return v, v > 0
	}
	return 0, false
}
