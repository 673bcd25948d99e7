package handler

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopfloor/api/internal/service"
	"github.com/shopfloor/api/pkg/response"
)

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}

// handleServiceError translates a core failure into the error envelope.
func handleServiceError(c *fiber.Ctx, err error) error {
	switch service.KindOf(err) {
	case service.KindNotFound:
		return response.NotFound(c, err.Error())
	case service.KindInvalidArgument:
		return response.InvalidArgument(c, err.Error())
	case service.KindInvalidTransition:
		return response.InvalidTransition(c, err.Error())
	case service.KindConflict:
		return response.Conflict(c, err.Error())
	}
	log.Printf("Error: %s %s: %v", c.Method(), c.Path(), err)
	return response.ServiceError(c, "Internal error")
}

// bind decodes and validates a JSON body. When it reports false the
// error response has already been written and its send error is returned.
func bind(c *fiber.Ctx, v *validator.Validate, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, response.ValidationError(c, "Invalid request body", nil)
	}
	if err := v.Struct(out); err != nil {
		return false, response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}
	return true, nil
}

// bindOptional is bind for endpoints whose body may be empty.
func bindOptional(c *fiber.Ctx, v *validator.Validate, out interface{}) (bool, error) {
	if len(c.Body()) == 0 {
		return true, nil
	}
	return bind(c, v, out)
}
