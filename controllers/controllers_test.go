package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"bookstore/auth"
	"bookstore/email"
	"bookstore/models"
	"bookstore/repositories"
	"bookstore/services"
	"bookstore/testutil"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type nopSender struct{}

func (nopSender) Send(context.Context, email.Message) error { return nil }

type okPinger struct{ err error }

func (p okPinger) PingContext(context.Context) error { return p.err }

type testAPI struct {
	container *restful.Container
	store     *repositories.Store
	tokens    *auth.TokenManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := repositories.NewStore(testutil.OpenDB(t))
	tokens := auth.NewTokenManager(testutil.JwtOptions())
	logger := zap.NewNop()

	container := restful.NewContainer()
	for _, register := range []func(*restful.WebService){
		NewAccountController(services.NewAccountService(store, tokens, nopSender{}, "http://test", logger), logger).RegisterRoutes,
		NewUserController(services.NewUserService(store.Users), tokens, store.Roles, logger).RegisterRoutes,
		NewBookController(services.NewBookService(store), tokens, store.Roles, logger).RegisterRoutes,
		NewAuthorController(services.NewAuthorService(store), tokens, store.Roles, logger).RegisterRoutes,
		NewHealthController(okPinger{}, logger).RegisterRoutes,
	} {
		ws := new(restful.WebService)
		register(ws)
		container.Add(ws)
	}
	return &testAPI{container: container, store: store, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", restful.MIME_JSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.container.ServeHTTP(w, req)
	return w
}

func (a *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	admin, err := a.store.Users.FindByEmail(context.Background(), testutil.AdminEmail)
	require.NoError(t, err)
	token, err := a.tokens.GenerateToken(admin)
	require.NoError(t, err)
	return token
}

// clientToken creates a user holding only the client role and returns its token.
func (a *testAPI) clientToken(t *testing.T, name string) (string, *models.User) {
	t.Helper()
	ctx := context.Background()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{UserName: name, Email: name + "@example.com", Password: string(hashed)}
	require.NoError(t, a.store.Users.Create(ctx, user))
	role, err := a.store.Roles.FindByName(ctx, models.RoleClient)
	require.NoError(t, err)
	require.NoError(t, a.store.Users.AssignRole(ctx, user, role))
	token, err := a.tokens.GenerateToken(user)
	require.NoError(t, err)
	return token, user
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
