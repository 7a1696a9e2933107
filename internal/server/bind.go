package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON decodes and validates a request body. On failure it writes a
// 400 response and returns false.
func (s *Server) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return s.validate(c, req)
}

func (s *Server) validate(c *gin.Context, req any) bool {
	if err := s.validator.Struct(req); err != nil {
		respondMessage(c, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage describes the first failing field using its JSON name
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request"
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "alphanumdash":
		return fmt.Sprintf("%s may only contain letters, digits, dashes and underscores", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// jsonFieldName reports struct fields by their JSON or form name
func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}
