// File: internal/common/validation.go
package common

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern      = regexp.MustCompile(`^\+?[0-9][0-9 \-]{8,16}[0-9]$`)
	registerValidator sync.Once
)

// RegisterValidators adds the custom tags used by request DTOs to gin's
// validator. Safe to call more than once.
func RegisterValidators() {
	registerValidator.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
				return phonePattern.MatchString(fl.Field().String())
			})
		}
	})
}
