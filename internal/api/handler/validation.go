package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/yatube/internal/service"
)

var registerOnce sync.Once

// RegisterValidators adds the `slug` binding tag to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
				return service.SlugPattern.MatchString(fl.Field().String())
			})
		}
	})
}
