package common

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GenericEchoValidator plugs struct tag validation into echo's Bind/Validate flow.
type GenericEchoValidator struct {
	once      sync.Once
	validator *validator.Validate
}

// NewGenericEchoValidator returns a validator whose underlying instance is created on first use.
func NewGenericEchoValidator() *GenericEchoValidator {
	return &GenericEchoValidator{}
}

func (gv *GenericEchoValidator) Validate(i interface{}) error {
	gv.once.Do(func() {
		gv.validator = validator.New()
	})
	if err := gv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	return nil
}
