package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/conectahub/intranet-api/internal/errors"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/services"
)

// respond writes a success envelope: the payload keys next to success=true.
func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var serviceErrors = []errorMapping{
	{services.ErrEmailRequired, http.StatusBadRequest, apierrors.ErrCodeMissingField},
	{services.ErrTaskValidation, http.StatusBadRequest, apierrors.ErrCodeMissingField},
	{services.ErrMessageInvalid, http.StatusBadRequest, apierrors.ErrCodeMissingField},
	{services.ErrInvalidLookupField, http.StatusBadRequest, apierrors.ErrCodeInvalidInput},
	{services.ErrInvalidPassword, http.StatusUnauthorized, apierrors.ErrCodeInvalidCredentials},
	{services.ErrNotLoggedIn, http.StatusUnauthorized, apierrors.ErrCodeNotLoggedIn},
	{services.ErrPermissionDenied, http.StatusForbidden, apierrors.ErrCodeInsufficientPermissions},
	{services.ErrUserNotFound, http.StatusNotFound, apierrors.ErrCodeNotFound},
	{services.ErrTaskNotFound, http.StatusNotFound, apierrors.ErrCodeNotFound},
	{services.ErrMessageNotFound, http.StatusNotFound, apierrors.ErrCodeNotFound},
	{services.ErrNotificationNotFound, http.StatusNotFound, apierrors.ErrCodeNotFound},
	{services.ErrDuplicateEmail, http.StatusConflict, apierrors.ErrCodeDuplicateEmail},
	{services.ErrTaskAlreadyAssigned, http.StatusConflict, apierrors.ErrCodeConflict},
	{services.ErrTaskAlreadyCompleted, http.StatusConflict, apierrors.ErrCodeConflict},
	{services.ErrTaskNotAssigned, http.StatusConflict, apierrors.ErrCodeInvalidOperation},
}

// respondServiceError maps a service error onto the failure envelope.
// Unknown errors are logged and reported as internal errors.
func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			apierrors.RespondWithError(c, m.status, apierrors.NewAPIError(m.code, m.err.Error()))
			return
		}
	}
	log.Error(c.Request.Context(), "request failed", err)
	apierrors.InternalError(c, "")
}
