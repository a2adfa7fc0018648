package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"bookstore/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/user"},
		{http.MethodGet, "/user/me"},
		{http.MethodGet, "/user/1"},
		{http.MethodPatch, "/user/password"},
		{http.MethodDelete, "/user/1"},
	} {
		w := api.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestUserAccess(t *testing.T) {
	api := newTestAPI(t)
	aliceToken, alice := api.clientToken(t, "alice")
	_, bob := api.clientToken(t, "bob")

	w := api.do(t, http.MethodGet, "/user/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[UserResponse](t, w)
	assert.Equal(t, alice.ID, me.ID)
	assert.Equal(t, []string{"client"}, me.Roles)
	assert.NotContains(t, w.Body.String(), "password")

	w = api.do(t, http.MethodGet, fmt.Sprintf("/user/%d", bob.ID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/user", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := api.adminToken(t)
	w = api.do(t, http.MethodGet, fmt.Sprintf("/user/%d", bob.ID), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/user", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode[PaginatedUsersResponse](t, w).Total)

	w = api.do(t, http.MethodPatch, fmt.Sprintf("/user/%d", alice.ID), aliceToken, map[string]any{"first_name": "Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", decode[UserResponse](t, w).FirstName)

	w = api.do(t, http.MethodDelete, fmt.Sprintf("/user/%d", bob.ID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(t, http.MethodDelete, fmt.Sprintf("/user/%d", bob.ID), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodDelete, fmt.Sprintf("/user/%d", bob.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.clientToken(t, "alice")

	w := api.do(t, http.MethodPatch, "/user/password", token, map[string]any{
		"old_password": "wrong", "new_password": "newsecret", "new_password_repeat": "newsecret",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Fields, "old_password")

	w = api.do(t, http.MethodPatch, "/user/password", token, map[string]any{
		"old_password": "secret1", "new_password": "newsecret", "new_password_repeat": "different",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Fields, "new_password_repeat")

	w = api.do(t, http.MethodPatch, "/user/password", token, map[string]any{
		"old_password": "secret1", "new_password": "newsecret", "new_password_repeat": "newsecret",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/account/login", "", map[string]any{"email": "alice@example.com", "password": "newsecret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccountEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/account/register", "", map[string]any{
		"user_name": "reader", "email": "reader@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "reader", decode[UserResponse](t, w).UserName)

	w = api.do(t, http.MethodPost, "/account/register", "", map[string]any{
		"user_name": "reader", "email": "other@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodPost, "/account/login", "", map[string]any{"email": testutil.AdminEmail, "password": testutil.AdminPassword})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[LoginResponse](t, w)
	assert.NotEmpty(t, login.Token)
	assert.Contains(t, login.User.Roles, "admin")

	w = api.do(t, http.MethodPost, "/account/login", "", map[string]any{"email": testutil.AdminEmail, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/account/forgot-password", "", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodPost, "/account/forgot-password", "", map[string]any{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/account/confirm-email?email=reader@example.com&code=garbage", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, err := api.tokens.GenerateEmailConfirmationCode("reader@example.com", time.Hour)
	require.NoError(t, err)
	w = api.do(t, http.MethodGet, "/account/confirm-email?email=reader%40example.com&code="+url.QueryEscape(code), "", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRegisterAfterDeleteConflicts(t *testing.T) {
	api := newTestAPI(t)
	admin := api.adminToken(t)

	w := api.do(t, http.MethodPost, "/account/register", "", map[string]any{
		"user_name": "reader", "email": "reader@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reader := decode[UserResponse](t, w)

	w = api.do(t, http.MethodDelete, fmt.Sprintf("/user/%d", reader.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, body := range []map[string]any{
		{"user_name": "reader", "email": "reader@example.com", "password": "secret1"},
		{"user_name": "reader2", "email": "reader@example.com", "password": "secret1"},
		{"user_name": "reader", "email": "reader2@example.com", "password": "secret1"},
	} {
		w = api.do(t, http.MethodPost, "/account/register", "", body)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
