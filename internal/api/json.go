package api

import (
	"encoding/json"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
	"strings"
)

const (
	Success string = "success" //The request ended successfully
	Error   string = "error"   //The request ended with error - check the message field
)

// GenericRequest is the envelope of every admin write: {"data": {...}}.
type GenericRequest struct {
	Data map[string]interface{} `json:"data"`
}

func NewGenericResponse(status string, message string, data interface{}) gin.H {
	return gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	}
}

func NewErrorResponse(message string) gin.H {
	return gin.H{
		"status":  Error,
		"message": message,
		"data":    gin.H{},
	}
}

func NewErrorResponsef(format string, a ...interface{}) gin.H {
	return gin.H{
		"status":  Error,
		"message": fmt.Sprintf(format, a...),
		"data":    gin.H{},
	}
}

// NewValidationErrorResponse reports the rejected payload keys in data.
func NewValidationErrorResponse(message string, errors map[string]string) gin.H {
	return gin.H{
		"status":  Error,
		"message": message,
		"data":    errors,
	}
}

// DecodeDataTo decodes the data map into output, matching keys by struct field name.
func (genericRequest *GenericRequest) DecodeDataTo(output interface{}) error {
	err := mapstructure.Decode(genericRequest.Data, &output)
	if err != nil {
		return err
	}
	return nil
}

// DecodeRecord decodes the data map into a model, matching keys by the json tags of its fields.
// A null value clears the field.
func (genericRequest *GenericRequest) DecodeRecord(record interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		ZeroFields: true,
		Result:     record,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(genericRequest.Data)
}

func (genericRequest *GenericRequest) Load(input []byte) error {
	err := json.Unmarshal(input, &genericRequest)
	if err != nil {
		return err
	}
	if genericRequest.Data == nil {
		return fmt.Errorf("request has no data object")
	}
	return nil
}

type RestJsonResponse struct {
	Status  string      `json:"status" example:"success"`
	Message string      `json:"message" example:"The request was sent successfully"`
	Data    interface{} `json:"data"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Page is one page of a record list.
type Page[T any] struct {
	TotalElements int      `json:"totalElements"`
	TotalPages    int      `json:"totalPages"`
	Content       []T      `json:"content"`
	Pageable      Pageable `json:"pageable"`
}

type Pageable struct {
	PageNumber int  `json:"pageNumber"`
	PageSize   int  `json:"pageSize"`
	Sort       Sort `json:"sort"`
}

type Sort struct {
	Orders []Order `json:"orders"`
}

type Order struct {
	Property  string    `json:"property"`
	Direction Direction `json:"direction"`
}

type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// ParseSort turns an SQL order clause like "published_date DESC, id" into a Sort.
func ParseSort(order string) Sort {
	orders := make([]Order, 0)
	for _, part := range strings.Split(order, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		direction := ASC
		if len(fields) > 1 && strings.EqualFold(fields[1], string(DESC)) {
			direction = DESC
		}
		orders = append(orders, Order{Property: fields[0], Direction: direction})
	}
	return Sort{Orders: orders}
}
