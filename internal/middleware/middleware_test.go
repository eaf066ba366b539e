package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conectahub/intranet-api/internal/constants"
	apierrors "github.com/conectahub/intranet-api/internal/errors"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/models"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, memstore.NewStore([]byte("secret"))))
	r.POST("/login", func(c *gin.Context) {
		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		if err := Session(c).Login(user); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func login(t *testing.T, r *gin.Engine, user models.User) []*http.Cookie {
	t.Helper()
	body, err := json.Marshal(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
	return cookies
}

func get(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	r := newRouter()
	r.GET("/private", RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/private", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, apierrors.ErrCodeNotLoggedIn, body.Code)
}

func TestRequireAuth_StoresSnapshot(t *testing.T) {
	r := newRouter()
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		require.True(t, ok)
		user, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": userID, "name": user.Name})
	})

	cookies := login(t, r, models.User{ID: "u-1", Name: "Ana"})
	w := get(r, "/private", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u-1","name":"Ana"}`, w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter()
	r.GET("/admin", RequireAuth(), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	member := login(t, r, models.User{ID: "u-1", Name: "Ana"})
	w := get(r, "/admin", member)
	require.Equal(t, http.StatusForbidden, w.Code)

	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.ErrCodeInsufficientPermissions, body.Code)

	admin := login(t, r, models.User{ID: "u-2", Name: "Administrador", IsAdmin: true})
	w = get(r, "/admin", admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	r := newRouter()
	r.Use(RequestID(log), Logging(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(constants.RequestIDHeader))

	output := buf.String()
	assert.Contains(t, output, "request.start")
	assert.Contains(t, output, "request.complete")
	assert.Contains(t, output, `"request_id":"req-123"`)
	assert.Contains(t, output, `"status":418`)
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	r := newRouter()
	r.Use(RequestID(nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/ping", nil)
	assert.Len(t, w.Header().Get(constants.RequestIDHeader), 36)
}
