package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waymark/internal"
	"github.com/dmitrymomot/waymark/pkg/route"
)

type ctxKey struct{}

func TestContext(t *testing.T) {
	t.Parallel()

	var seen internal.Context
	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.Route("search", "search(/<section>)", func(c internal.Context) error {
			seen = c
			c.Set(ctxKey{}, "stored")
			c.SetHeader("X-Route", c.RouteName())
			return c.NoContent(http.StatusAccepted)
		}, internal.Defaults(route.Params{"section": "all"}))
	})))

	req := httptest.NewRequest(http.MethodGet, "/search/news?q=go&page=", nil)
	req.Header.Set("X-Client", "cli")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "search", rec.Header().Get("X-Route"))

	require.NotNil(t, seen)
	require.Equal(t, "news", seen.Param("section"))
	require.Empty(t, seen.Param("missing"))
	require.Equal(t, route.Params{"section": "news"}, seen.Params())
	require.Equal(t, "go", seen.Query("q"))
	require.Equal(t, "1", seen.QueryDefault("page", "1"))
	require.Equal(t, "cli", seen.Header("X-Client"))
	require.Equal(t, "stored", seen.Get(ctxKey{}))
	require.Equal(t, "stored", seen.Value(ctxKey{}))
	require.True(t, seen.Written())
	require.Equal(t, http.StatusAccepted, seen.Status())
	require.NotNil(t, seen.Logger())
}

func TestContext_ParamsIsCopy(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.Route("item", "item/<id>", func(c internal.Context) error {
			p := c.Params()
			p["id"] = "changed"
			return c.String(http.StatusOK, c.Param("id"))
		})
	})))

	require.Equal(t, "7", serve(app, http.MethodGet, "/item/7").Body.String())
}
