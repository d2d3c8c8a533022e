package admin

import (
	"errors"
	"github.com/gin-gonic/gin"
	"io"
	"it-solutions-hub/internal/api"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/logging"
	"it-solutions-hub/internal/media"
	"it-solutions-hub/internal/middlewares"
	"it-solutions-hub/internal/models"
	"it-solutions-hub/internal/schema"
	"it-solutions-hub/internal/utils"
	"it-solutions-hub/internal/validation"
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	imageFormField = "image"
)

// Api defines the generic record editor. Every handler works on the entity named by the :entity path parameter.
type Api interface {
	Entities(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	UploadImage(c *gin.Context)
}

// Controller edits the site content through the schema registry.
type Controller struct {
	*environment.Env
	RecordService
	Store *media.Store
}

// ensure Controller implements Api
var _ Api = &Controller{}

// EntityInfo describes an editable entity to admin clients.
type EntityInfo struct {
	Name         string      `json:"name"`
	Fields       []FieldInfo `json:"fields"`
	ListFields   []string    `json:"listFields"`
	SearchFields []string    `json:"searchFields"`
	FilterFields []string    `json:"filterFields"`
	SlugSource   string      `json:"slugSource,omitempty"`
	HasImage     bool        `json:"hasImage"`
}

type FieldInfo struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Required  bool     `json:"required"`
	MaxLength int      `json:"maxLength,omitempty"`
	Unique    bool     `json:"unique"`
	Choices   []string `json:"choices,omitempty"`
	ReadOnly  bool     `json:"readOnly"`
	Default   any      `json:"default,omitempty"`
	RefEntity string   `json:"refEntity,omitempty"`
}

// Entities lists the editable entities and their fields.
func (ac *Controller) Entities(c *gin.Context) {
	entities := schema.Editable()
	infos := make([]EntityInfo, 0, len(entities))

	for _, e := range entities {
		fields := make([]FieldInfo, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, FieldInfo{
				Name:      f.Column(),
				Kind:      f.Kind.String(),
				Required:  f.Required,
				MaxLength: f.MaxLength,
				Unique:    f.Unique,
				Choices:   f.Choices,
				ReadOnly:  f.ReadOnly,
				Default:   f.Default,
				RefEntity: f.RefEntity,
			})
		}

		info := EntityInfo{
			Name:         e.Name,
			Fields:       fields,
			ListFields:   e.Columns(e.ListFields),
			SearchFields: e.Columns(e.SearchFields),
			FilterFields: e.Columns(e.FilterFields),
			HasImage:     e.HasImage,
		}
		if len(e.SlugSource) > 0 {
			info.SlugSource = e.Columns([]string{e.SlugSource})[0]
		}
		infos = append(infos, info)
	}

	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", infos))
}

// List answers GET /admin/:entity?q=&page=&pageSize=&<filter>=.
// q searches the entity's search fields as a case-insensitive substring.
func (ac *Controller) List(c *gin.Context) {
	entity, ok := ac.entity(c)
	if !ok {
		return
	}

	pageNumber := positiveInt(c.Query("page"), 1)
	pageSize := min(positiveInt(c.Query("pageSize"), defaultPageSize), maxPageSize)

	filters := make(map[string]any)
	for _, column := range entity.Columns(entity.FilterFields) {
		raw := c.Query(column)
		if len(raw) == 0 {
			continue
		}
		field, _ := entity.Field(column)
		value, err := FilterValue(field, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("invalid value for filter %s: %s", column, raw))
			return
		}
		filters[column] = value
	}

	query := database.RecordQuery{
		Search:        c.Query("q"),
		SearchColumns: entity.Columns(entity.SearchFields),
		Filters:       filters,
		Order:         entity.DefaultOrder,
		Offset:        (pageNumber - 1) * pageSize,
		Limit:         pageSize,
	}

	records := entity.NewSlice()
	var total int64
	if err := ac.FindRecords(c.Request.Context(), entity.New(), query, records, &total); err != nil {
		ac.serverError(c, entity, "error listing records", err)
		return
	}

	page := api.Page[any]{
		TotalElements: int(total),
		TotalPages:    utils.CalculateTotalPages(int(total), pageSize),
		Content:       Items(records),
		Pageable: api.Pageable{
			PageNumber: pageNumber,
			PageSize:   pageSize,
			Sort:       api.ParseSort(entity.DefaultOrder),
		},
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", page))
}

func (ac *Controller) Get(c *gin.Context) {
	entity, ok := ac.entity(c)
	if !ok {
		return
	}
	record, ok := ac.record(c, entity)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", record))
}

// Create expects {"data": {...}} with the entity's columns as keys.
func (ac *Controller) Create(c *gin.Context) {
	entity, ok := ac.entity(c)
	if !ok {
		return
	}
	request, ok := ac.request(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	ac.Prepare(entity, request.Data)
	if !ac.check(c, entity, request.Data, 0) {
		return
	}

	record := entity.New()
	if err := request.DecodeRecord(record); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error decoding %s: %v", entity.Name, err))
		return
	}
	ac.assignAuthor(c, record)

	if err := ac.CreateRecord(ctx, record); err != nil {
		ac.serverError(c, entity, "error creating record", err)
		return
	}
	if !ac.replaceTags(c, entity, record, request.Data) {
		// a rejected create leaves nothing behind
		if err := ac.DeleteRecord(ctx, record); err != nil {
			ac.LogErrorf(logging.GetLogType(constants.LogTypeAdmin, entity.Name), "error removing partially created record: %v", err)
		}
		return
	}

	ac.LogInfof(logging.GetLogType(constants.LogTypeAdmin, entity.Name, strconv.FormatUint(uint64(Key(record)), 10)), "created")
	ac.respondWithRecord(c, entity, http.StatusCreated, Key(record))
}

// Update applies the keys present in {"data": {...}} to the record; absent keys keep their value.
func (ac *Controller) Update(c *gin.Context) {
	entity, ok := ac.entity(c)
	if !ok {
		return
	}
	record, ok := ac.record(c, entity)
	if !ok {
		return
	}
	request, ok := ac.request(c)
	if !ok {
		return
	}

	id := Key(record)
	if !ac.check(c, entity, request.Data, id) {
		return
	}

	DetachAssociations(record)
	if err := request.DecodeRecord(record); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error decoding %s: %v", entity.Name, err))
		return
	}
	ac.assignAuthor(c, record)

	if err := ac.SaveRecord(c.Request.Context(), record); err != nil {
		ac.serverError(c, entity, "error saving record", err)
		return
	}
	if !ac.replaceTags(c, entity, record, request.Data) {
		return
	}

	ac.LogInfof(logging.GetLogType(constants.LogTypeAdmin, entity.Name, strconv.FormatUint(uint64(id), 10)), "updated")
	ac.respondWithRecord(c, entity, http.StatusOK, id)
}

// Delete removes the record and its uploaded image. References to it are cleared, not cascaded.
func (ac *Controller) Delete(c *gin.Context) {
	entity, ok := ac.entity(c)
	if !ok {
		return
	}
	record, ok := ac.record(c, entity)
	if !ok {
		return
	}

	if err := ac.DeleteRecord(c.Request.Context(), record); err != nil {
		ac.serverError(c, entity, "error deleting record", err)
		return
	}

	if image, ok := Image(record); ok {
		if err := ac.Store.Remove(*image); err != nil {
			ac.LogWarnf(logging.GetLogType(constants.LogTypeAdmin, entity.Name), "error removing image %s: %v", *image, err)
		}
	}

	ac.LogInfof(logging.GetLogType(constants.LogTypeAdmin, entity.Name, strconv.FormatUint(uint64(Key(record)), 10)), "deleted")
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "deleted", gin.H{}))
}

// UploadImage replaces the image of a service or article with the multipart file "image".
func (ac *Controller) UploadImage(c *gin.Context) {
	entity, ok := ac.entity(c)
	if !ok {
		return
	}
	if !entity.HasImage {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("%s have no image", entity.Name))
		return
	}
	record, ok := ac.record(c, entity)
	if !ok {
		return
	}

	header, err := c.FormFile(imageFormField)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("multipart field %q is missing", imageFormField))
		return
	}
	file, err := header.Open()
	if err != nil {
		ac.serverError(c, entity, "error opening upload", err)
		return
	}
	defer file.Close()

	stored, err := ac.Store.Save(entity.Name, file)
	switch {
	case errors.Is(err, media.ErrNotAnImage):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("only JPEG, PNG and GIF images are accepted"))
		return
	case errors.Is(err, media.ErrTooLarge):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, api.NewErrorResponse("image is too large"))
		return
	case err != nil:
		ac.serverError(c, entity, "error storing upload", err)
		return
	}

	image, _ := Image(record)
	previous := *image
	*image = stored

	DetachAssociations(record)
	if err := ac.SaveRecord(c.Request.Context(), record); err != nil {
		_ = ac.Store.Remove(stored)
		ac.serverError(c, entity, "error saving record", err)
		return
	}
	if err := ac.Store.Remove(previous); err != nil {
		ac.LogWarnf(logging.GetLogType(constants.LogTypeAdmin, entity.Name), "error removing image %s: %v", previous, err)
	}

	ac.respondWithRecord(c, entity, http.StatusOK, Key(record))
}

func (ac *Controller) entity(c *gin.Context) (schema.Entity, bool) {
	name := c.Param("entity")
	for _, e := range schema.Editable() {
		if e.Name == name {
			return e, true
		}
	}
	c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponsef("unknown entity %q", name))
	return schema.Entity{}, false
}

func (ac *Controller) record(c *gin.Context, entity schema.Entity) (any, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("invalid id %q", c.Param("id")))
		return nil, false
	}

	record := entity.New()
	err = ac.FindRecordByID(c.Request.Context(), uint(id), record)
	if errors.Is(err, database.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponsef("%s %d does not exist", entity.Name, id))
		return nil, false
	}
	if err != nil {
		ac.serverError(c, entity, "error reading record", err)
		return nil, false
	}
	return record, true
}

func (ac *Controller) request(c *gin.Context) (api.GenericRequest, bool) {
	request := api.GenericRequest{}

	body, err := io.ReadAll(c.Request.Body)
	if err == nil {
		err = request.Load(body)
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error reading request: %v", err))
		return request, false
	}
	return request, true
}

func (ac *Controller) check(c *gin.Context, entity schema.Entity, payload map[string]any, id uint) bool {
	err := ac.Check(c.Request.Context(), entity, payload, id)

	var errs validation.Errors
	if errors.As(err, &errs) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewValidationErrorResponse("validation failed", errs))
		return false
	}
	if err != nil {
		ac.serverError(c, entity, "error validating record", err)
		return false
	}
	return true
}

func (ac *Controller) assignAuthor(c *gin.Context, record any) {
	if claims, ok := middlewares.ClaimsFrom(c); ok {
		AssignAuthor(record, claims.UserId)
	}
}

// replaceTags applies tag_ids of an article payload.
func (ac *Controller) replaceTags(c *gin.Context, entity schema.Entity, record any, payload map[string]any) bool {
	article, ok := record.(*models.Article)
	if !ok {
		return true
	}
	if _, present := payload["tag_ids"]; !present {
		return true
	}

	err := ac.ReplaceArticleTags(c.Request.Context(), article, article.TagIDs)
	if errors.Is(err, database.ErrUnknownReference) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewValidationErrorResponse("validation failed", validation.Errors{"tag_ids": err.Error()}))
		return false
	}
	if err != nil {
		ac.serverError(c, entity, "error saving tags", err)
		return false
	}
	return true
}

func (ac *Controller) respondWithRecord(c *gin.Context, entity schema.Entity, status int, id uint) {
	record := entity.New()
	if err := ac.FindRecordByID(c.Request.Context(), id, record); err != nil {
		ac.serverError(c, entity, "error reading record", err)
		return
	}
	c.JSON(status, api.NewGenericResponse(api.Success, "", record))
}

func (ac *Controller) serverError(c *gin.Context, entity schema.Entity, msg string, err error) {
	ac.LogErrorf(logging.GetLogType(constants.LogTypeAdmin, entity.Name), "%s: %v", msg, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse(msg))
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
