package handlers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"user_service/internal/credentials"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validationOnce sync.Once

// initValidation makes gin's validator report JSON field names.
func initValidation() {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("pwd", passwordBytes)
	})
}

const minPasswordBytes = 8

// passwordBytes bounds the byte length, which is what bcrypt limits.
func passwordBytes(fl validator.FieldLevel) bool {
	n := len(fl.Field().String())
	return n >= minPasswordBytes && n <= credentials.MaxPasswordBytes
}

// validationDetails converts binding errors into a map[field]message for the "details" key.
func validationDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = fieldMessage(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	case "pwd":
		return "must be between 8 and 72 bytes long"
	default:
		if fe.Param() != "" {
			return "failed '" + fe.Tag() + "' (" + fe.Param() + ")"
		}
		return "failed '" + fe.Tag() + "'"
	}
}
