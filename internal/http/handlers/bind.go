package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/leolynk/leolynk/internal/domain/mindmap"
	"github.com/leolynk/leolynk/internal/utils"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// Partial updates send "" to clear a nullable link, so these tags accept the
// empty string next to the usual format.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	clearable := map[string]func(string) bool{
		"uuid_or_empty": utils.IsUUID,
		"rfc3339_or_empty": func(s string) bool {
			_, err := time.Parse(time.RFC3339, s)
			return err == nil
		},
		"entity_type_or_empty": func(s string) bool {
			return slices.Contains(mindmap.EntityTypes, s)
		},
	}
	for tag, valid := range clearable {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || valid(s)
		})
	}
}

// BindJSON decodes and validates the body, answering 400 with per-field details
// keyed by JSON names when it fails.
func BindJSON(ctx *gin.Context, out any) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, "Invalid request body", bindErrorDetails(err, reflect.TypeOf(out)))
		return false
	}
	return true
}

func bindErrorDetails(err error, root reflect.Type) any {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   jsonFieldPath(root, fe),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: ruleMessage(fe.Tag(), fe.Param()),
			})
		}
		return gin.H{"fields": fields}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := jsonPath(root, strings.Split(typeErr.Field, "."))
		if field == "" {
			field = typeErr.Field
		}
		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: "must be of type " + typeErr.Type.String(),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

// jsonFieldPath turns "UpdateMeetingRequest.EndAt" into "endAt".
func jsonFieldPath(root reflect.Type, fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	if p := jsonPath(root, parts); p != "" {
		return p
	}
	return fe.Field()
}

// jsonPath maps Go field names to their json tag names, keeping [i] suffixes.
func jsonPath(t reflect.Type, parts []string) string {
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}
		name, index, _ := strings.Cut(part, "[")
		if index != "" {
			index = "[" + index
		}

		t = elem(t)
		jsonName := name
		if t != nil && t.Kind() == reflect.Struct {
			if sf, ok := t.FieldByName(name); ok {
				jsonName = jsonTagName(sf)
				t = sf.Type
			} else {
				t = nil
			}
		}
		out = append(out, jsonName+index)
	}

	return strings.Join(out, ".")
}

func elem(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		default:
			return t
		}
	}
	return nil
}

func jsonTagName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

func ruleMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "lt":
		return "must be less than " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "uuid":
		return "must be a valid UUID"
	case "uuid_or_empty":
		return `must be a valid UUID, or "" to clear`
	case "rfc3339_or_empty":
		return `must be an RFC3339 timestamp, or "" to clear`
	case "entity_type_or_empty":
		return "must be one of " + strings.Join(mindmap.EntityTypes, ", ") + `, or "" to clear`
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
