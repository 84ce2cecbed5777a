package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamalraji/plan-it-together-sub006/internal/utils"
)

const testSecret = "test-secret"

func newProtectedEcho(t *testing.T, roles ...string) *echo.Echo {
	t.Helper()
	e := echo.New()
	g := e.Group("/v1", JWTAuth(testSecret), RequireRole(roles...))
	g.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
		})
	})
	return e
}

func doGet(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMissingToken(t *testing.T) {
	e := newProtectedEcho(t, "ORGANIZER")
	rec := doGet(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthGarbageToken(t *testing.T) {
	e := newProtectedEcho(t, "ORGANIZER")
	rec := doGet(e, "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 1, "ORGANIZER", 15)
	require.NoError(t, err)

	e := newProtectedEcho(t, "ORGANIZER")
	rec := doGet(e, at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleAllows(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "ORGANIZER", 15)
	require.NoError(t, err)

	e := newProtectedEcho(t, "ORGANIZER", "ATTENDEE")
	rec := doGet(e, at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ORGANIZER")
}

func TestRequireRoleForbidsOtherRole(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "ATTENDEE", 15)
	require.NoError(t, err)

	e := newProtectedEcho(t, "ORGANIZER")
	rec := doGet(e, at.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
