package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/constants"
	apierrors "github.com/conectahub/intranet-api/internal/errors"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/session"
)

// RequireAuth checks that a user snapshot is stored in the session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := Session(c).Current()
		if err != nil || user == nil {
			apierrors.RespondWithError(c, http.StatusUnauthorized,
				apierrors.NewAPIError(apierrors.ErrCodeNotLoggedIn, "Not logged in"))
			c.Abort()
			return
		}

		// Store the snapshot in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyCurrentUser, user)
		c.Next()
	}
}

// RequireAdmin rejects users whose snapshot is not an administrator.
// It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !user.IsAdmin {
			apierrors.Forbidden(c, "Administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Session wraps the request's gin session as a session.Store
func Session(c *gin.Context) session.Store {
	return session.NewGinStore(sessions.Default(c))
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// CurrentUser retrieves the session snapshot loaded by RequireAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyCurrentUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
