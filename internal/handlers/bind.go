package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/conectahub/intranet-api/internal/errors"
)

// FieldError describes one failed binding rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// bindJSON decodes the body into req. On failure it writes the 400 response
// and returns false.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apierrors.InvalidFormat(c, "Invalid request body")
		return false
	}

	details := make([]FieldError, 0, len(verrs))
	missing := false
	for _, fe := range verrs {
		details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag()})
		if fe.Tag() == "required" {
			missing = true
		}
	}
	if missing {
		apierrors.MissingFieldWithDetails(c, "Missing required fields", details)
		return false
	}
	apierrors.BadRequestWithDetails(c, "Invalid request body", details)
	return false
}
