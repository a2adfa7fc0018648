package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstore/models"
	"bookstore/testutil"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	perms map[uint][]string
	err   error
}

func (f fakeResolver) PermissionsForUser(_ context.Context, userID uint) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.perms[userID], nil
}

func newProtectedContainer(m *TokenManager, filters ...restful.FilterFunction) *restful.Container {
	ws := new(restful.WebService)
	ws.Path("/protected").Produces(restful.MIME_JSON)
	route := ws.GET("").Filter(m.AuthFilter())
	for _, f := range filters {
		route = route.Filter(f)
	}
	ws.Route(route.To(func(req *restful.Request, resp *restful.Response) {
		claims, _ := ClaimsFrom(req)
		_ = resp.WriteEntity(map[string]any{"user_id": claims.UserID})
	}))
	c := restful.NewContainer()
	c.Add(ws)
	return c
}

func doGet(c http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	c.ServeHTTP(w, req)
	return w
}

func TestAuthFilter(t *testing.T) {
	m := NewTokenManager(testutil.JwtOptions())
	c := newProtectedContainer(m)

	t.Run("no token", func(t *testing.T) {
		w := doGet(c, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authorization header required")
	})

	t.Run("invalid format", func(t *testing.T) {
		w := doGet(c, "InvalidTokenFormat")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid authorization header format")
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doGet(c, "Bearer abc.def.ghi")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := m.GenerateToken(testUser())
		require.NoError(t, err)

		w := doGet(c, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id": 7`)
	})
}

func TestRequireRole(t *testing.T) {
	m := NewTokenManager(testutil.JwtOptions())
	c := newProtectedContainer(m, RequireRole(models.RoleAdmin))

	token, err := m.GenerateToken(testUser())
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doGet(c, "Bearer "+token).Code)

	admin := testUser()
	admin.Roles = []models.Role{{Name: models.RoleAdmin}}
	token, err = m.GenerateToken(admin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doGet(c, "Bearer "+token).Code)
}

func TestRequirePermission(t *testing.T) {
	m := NewTokenManager(testutil.JwtOptions())
	resolver := fakeResolver{perms: map[uint][]string{1: {models.PermBooksWrite}}}
	c := newProtectedContainer(m, RequirePermission(resolver, models.PermBooksWrite))

	client, err := m.GenerateToken(testUser())
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doGet(c, "Bearer "+client).Code)

	admin := testUser()
	admin.ID = 1
	adminToken, err := m.GenerateToken(admin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doGet(c, "Bearer "+adminToken).Code)

	broken := newProtectedContainer(m, RequirePermission(fakeResolver{err: errors.New("db down")}, models.PermBooksWrite))
	assert.Equal(t, http.StatusInternalServerError, doGet(broken, "Bearer "+adminToken).Code)
}
