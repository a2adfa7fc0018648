package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstore/services"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, path, query, auth, contentType string
	body                                   map[string]any
}

func newRecordingServer(t *testing.T) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.body))
		}
		calls = append(calls, rec)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClientRequests(t *testing.T) {
	srv, calls := newRecordingServer(t)
	c := New(srv.URL+"/", srv.Client()).WithToken("tok")
	ctx := context.Background()
	title := "Dune"

	for _, call := range []func() (*http.Response, error){
		func() (*http.Response, error) { return c.Books.List(ctx, "go", 2, 5) },
		func() (*http.Response, error) { return c.Books.Create(ctx, &services.BookInput{Title: "Dune"}) },
		func() (*http.Response, error) { return c.Books.Update(ctx, 3, &services.UpdateBookInput{Title: &title}) },
		func() (*http.Response, error) { return c.Books.AddAuthor(ctx, 3, 4) },
		func() (*http.Response, error) { return c.Authors.Delete(ctx, 9) },
		func() (*http.Response, error) { return c.Users.Me(ctx) },
		func() (*http.Response, error) {
			return c.Users.ChangePassword(ctx, &services.ChangePasswordInput{OldPassword: "a", NewPassword: "b", NewPasswordRepeat: "b"})
		},
		func() (*http.Response, error) { return c.Account.ConfirmEmail(ctx, "a@b.c", "xyz") },
	} {
		resp, err := call()
		require.NoError(t, err)
		var body map[string]string
		require.NoError(t, DecodeJSON(resp, &body))
		assert.Equal(t, "ok", body["message"])
	}

	got := *calls
	require.Len(t, got, 8)
	assert.Equal(t, recorded{method: "GET", path: "/book", query: "page=2&page_size=5&q=go", auth: "Bearer tok"}, got[0])
	assert.Equal(t, "PUT", got[1].method)
	assert.Equal(t, "application/json", got[1].contentType)
	assert.Equal(t, "Dune", got[1].body["title"])
	assert.Equal(t, "PATCH", got[2].method)
	assert.Equal(t, "/book/3", got[2].path)
	assert.Equal(t, "/book/3/author/4", got[3].path)
	assert.Equal(t, "PUT", got[3].method)
	assert.Equal(t, "DELETE", got[4].method)
	assert.Equal(t, "/author/9", got[4].path)
	assert.Equal(t, "/user/me", got[5].path)
	assert.Equal(t, "/user/password", got[6].path)
	assert.Equal(t, "b", got[6].body["new_password_repeat"])
	assert.Equal(t, "/account/confirm-email", got[7].path)
	assert.Equal(t, "code=xyz&email=a%40b.c", got[7].query)
}

func TestClientWithoutToken(t *testing.T) {
	srv, calls := newRecordingServer(t)
	c := New(srv.URL, nil)
	resp, err := c.Account.Login(context.Background(), &services.LoginInput{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, (*calls)[0].auth)
	assert.Equal(t, "/account/login", (*calls)[0].path)
}

type staticRegistry struct{ addrs []string }

func (s staticRegistry) Register(string, string, string, int, []string, *consulapi.AgentServiceCheck) error {
	return nil
}
func (s staticRegistry) Deregister(string) error { return nil }

func (s staticRegistry) Discover(string, string) ([]string, error) { return s.addrs, nil }

func TestNewDiscovered(t *testing.T) {
	c, err := NewDiscovered(staticRegistry{addrs: []string{"10.0.0.5:8080"}}, "bookstore", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080", c.BaseURL)
}
