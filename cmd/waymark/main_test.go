package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waymark/pkg/logger"
	"github.com/dmitrymomot/waymark/pkg/route"
)

const testRoutes = `
routes:
  - name: article
    uri: articles/<id>(/<slug>)
    regex:
      id: '\d+'
    methods: [GET]
  - name: blog
    uri: blog(/<page>)
    defaults:
      page: "1"
  - name: docs
    uri: <path>
    regex:
      path: '.*'
    defaults:
      host: docs.example.com
`

func writeRoutes(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRoutes), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutesCmd(t *testing.T) {
	path := writeRoutes(t)

	out, err := run(t, "routes", "-f", path)
	require.NoError(t, err)
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "article")
	require.Contains(t, out, "/blog(/<page>)")
	require.Contains(t, out, "page=1")
	require.Less(t, bytes.Index([]byte(out), []byte("article")), bytes.Index([]byte(out), []byte("docs")))

	out, err = run(t, "routes", "-f", path, "--regex")
	require.NoError(t, err)
	require.Contains(t, out, `^articles/(?P<id>\d+)`)
}

func TestRoutesCmd_EnvFile(t *testing.T) {
	t.Setenv("WAYMARK_ROUTES", writeRoutes(t))

	out, err := run(t, "routes")
	require.NoError(t, err)
	require.Contains(t, out, "article")
}

func TestRoutesCmd_MissingFile(t *testing.T) {
	_, err := run(t, "routes", "-f", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMatchCmd(t *testing.T) {
	path := writeRoutes(t)

	out, err := run(t, "match", "-f", path, "/articles/42/hello")
	require.NoError(t, err)
	require.Equal(t, "route: article\n  id = 42\n  slug = hello\n", out)

	out, err = run(t, "match", "-f", path, "/blog")
	require.NoError(t, err)
	require.Equal(t, "route: blog\n  page = 1\n", out)

	// POST skips the GET-only article route
	out, err = run(t, "match", "-f", path, "-X", "post", "/articles/42")
	require.NoError(t, err)
	require.Contains(t, out, "route: docs")
}

func TestMatchCmd_NoMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - name: a\n    uri: a\n"), 0o600))

	_, err := run(t, "match", "-f", path, "/b")
	require.ErrorIs(t, err, errNoMatch)
}

func TestURLCmd(t *testing.T) {
	path := writeRoutes(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"optional omitted", []string{"article", "id=7"}, "/articles/7\n"},
		{"optional given", []string{"article", "id=7", "slug=intro"}, "/articles/7/intro\n"},
		{"default omitted", []string{"blog", "page=1"}, "/blog\n"},
		{"with base", []string{"blog", "page=2", "--base", "https://example.com"}, "https://example.com/blog/2\n"},
		{"external", []string{"docs", "path=guide/start"}, "http://docs.example.com/guide/start\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"url", "-f", path}, tt.args...)...)
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestURLCmd_Errors(t *testing.T) {
	path := writeRoutes(t)

	_, err := run(t, "url", "-f", path, "article")
	require.ErrorIs(t, err, route.ErrMissingParam)

	_, err = run(t, "url", "-f", path, "nope")
	require.ErrorIs(t, err, route.ErrRouteNotFound)

	_, err = run(t, "url", "-f", path, "article", "id")
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	require.Equal(t, "dev\n", out)
}

func TestEchoApp(t *testing.T) {
	c := &cli{cfg: config{RoutesFile: writeRoutes(t)}}
	c.log = newTestLogger()
	app, err := newEchoApp(c, false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp echoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "article", resp.Route)
	require.Equal(t, http.MethodGet, resp.Method)
	require.Equal(t, route.Params{"id": "3"}, resp.Params)

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), `waymark_http_requests_total{method="GET",route="article",status="200"} 1`)
}

func TestServeCmd_MissingFile(t *testing.T) {
	_, err := run(t, "serve", "-f", filepath.Join(t.TempDir(), "missing.yaml"), "--addr", "127.0.0.1:0")
	require.Error(t, err)
}

func TestServeCmd_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - name: broken\n    uri: 'a('\n"), 0o600))

	_, err := run(t, "serve", "-f", path, "--addr", "127.0.0.1:0")
	require.ErrorIs(t, err, route.ErrUnbalancedGroup)
}

func TestEchoApp_RateLimit(t *testing.T) {
	c := &cli{cfg: config{RoutesFile: writeRoutes(t), RateLimit: 0.001, RateBurst: 1}}
	c.log = newTestLogger()
	app, err := newEchoApp(c, false)
	require.NoError(t, err)

	codes := make([]int, 0, 2)
	for range 2 {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/3", nil))
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func newTestLogger() *slog.Logger {
	return logger.NewNope()
}
