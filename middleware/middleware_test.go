package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newContainer(filters ...restful.FilterFunction) *restful.Container {
	ws := new(restful.WebService)
	ws.Path("/things").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("/{id}").To(func(req *restful.Request, resp *restful.Response) {
		_ = resp.WriteHeaderAndJson(http.StatusOK, map[string]string{"id": req.PathParameter("id")}, restful.MIME_JSON)
	}))
	ws.Route(ws.GET("/boom").To(func(*restful.Request, *restful.Response) {
		panic("kaboom")
	}))
	c := restful.NewContainer()
	for _, f := range filters {
		c.Filter(f)
	}
	c.Add(ws)
	return c
}

func get(h http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:5555"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLoggingFilter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := newContainer(LoggingFilter(zap.New(core)))

	w := get(c, "/things/7", map[string]string{"User-Agent": "test-agent"})
	require.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, requestID)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/things/7", fields["path"])
	assert.EqualValues(t, 200, fields["status_code"])
	assert.Equal(t, "10.0.0.1", fields["client_ip"])
	assert.Equal(t, "test-agent", fields["user_agent"])
	assert.Equal(t, requestID, fields["request_id"])

	w = get(c, "/things/8", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", logs.All()[1].ContextMap()["request_id"])
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	assert.Equal(t, "203.0.113.9", ClientIP(restful.NewRequest(req)))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, zap.NewNop())
	c := newContainer(rl.Filter())

	assert.Equal(t, http.StatusOK, get(c, "/things/1", nil).Code)
	assert.Equal(t, http.StatusOK, get(c, "/things/1", nil).Code)
	w := get(c, "/things/1", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")

	// Another client has its own bucket.
	other := get(c, "/things/1", map[string]string{"X-Forwarded-For": "192.0.2.1"})
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("bookstore_test")
	c := newContainer(m.Filter())
	get(c, "/things/1", nil)
	get(c, "/things/2", nil)

	w := get(m.Handler(), "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bookstore_test_http_requests_total{method="GET",route="/things/{id}",status="200"} 2`)
}

func TestRecoverHandler(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		core, logs := observer.New(zap.ErrorLevel)
		c := newContainer()
		c.DoNotRecover(false)
		c.RecoverHandler(RecoverHandler(zap.New(core), verbose))

		w := get(c, "/things/boom", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1, logs.Len())
		if verbose {
			assert.True(t, strings.HasPrefix(w.Body.String(), "panic: kaboom"))
		} else {
			assert.JSONEq(t, `{"message":"An internal error occurred"}`, w.Body.String())
		}
	}
}
