package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/models"
)

// userIDFromContext reads the principal middleware.AuthRequired stored on
// the request context.
func userIDFromContext(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}

	id, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid user ID format")
	}

	return id, nil
}

// respondValidationError writes the {error, message, details} body every
// DTO-validating handler uses when validator.Struct rejects a request.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_failed",
		Message: "request validation failed",
		Details: validationErrors(err),
	})
}

// validationErrors converts validator errors to a field->message map, used
// by every handler's {error, message, details} response body.
func validationErrors(err error) map[string]string {
	out := make(map[string]string)

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			out[e.Field()] = validationMessage(e)
		}
	}

	return out
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return "Must be no more than " + e.Param() + " characters long"
	case "min":
		return "Must be at least " + e.Param()
	default:
		return "Invalid value"
	}
}
