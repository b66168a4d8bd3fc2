package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON binds the request body into out. On validation failure it writes
// a 422 with field-keyed messages; on malformed JSON a 400. Returns false
// when a response was already written.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		var validatorError validator.ValidationErrors

		if errors.As(err, &validatorError) {
			RespondValidationErrors(ctx, fieldErrors(validatorError, out))
			return false
		}

		// bad syntax, type mismatch, empty body
		RespondBadRequest(ctx, "Invalid request body")
		return false
	}

	return true
}

func fieldErrors(verrs validator.ValidationErrors, out interface{}) map[string][]string {
	rootType := baseStructType(out)
	fields := make(map[string][]string, len(verrs))

	for _, fe := range verrs {
		field := jsonFieldName(rootType, fe.StructField())

		if field == "" {
			field = strings.ToLower(fe.Field())
		}

		fields[field] = append(fields[field], validationMessage(field, fe.Tag(), fe.Param()))
	}

	return fields
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func jsonFieldName(rootType reflect.Type, structField string) string {
	if rootType == nil {
		return ""
	}

	sf, ok := rootType.FieldByName(structField)

	if !ok {
		return ""
	}

	tag := sf.Tag.Get("json")

	if tag == "" {
		return ""
	}

	name, _, _ := strings.Cut(tag, ",")

	if name == "" || name == "-" {
		return ""
	}

	return name
}

// messages follow the usual framework phrasing clients already match on
func validationMessage(field, rule, param string) string {
	switch rule {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, param)
	case "max":
		return fmt.Sprintf("The %s must not be greater than %s characters.", field, param)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
