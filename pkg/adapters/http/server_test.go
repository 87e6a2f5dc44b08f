package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/aretw0/screengraph/pkg/guard"
	"github.com/aretw0/screengraph/pkg/metrics"
	"github.com/aretw0/screengraph/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder(nil, domain.NewUserState("Home", schema.BoolField("isPrivate", false)))
	require.NoError(t, b.AddScreenState("Home", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "home"})
		s.Tap("menu", "Menu")
	}))
	require.NoError(t, b.AddScreenState("Menu", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "menuList"})
		s.Tap("settings", "Settings").If(guard.IsNot("isPrivate"))
		s.TapAction("private", "togglePrivateMode").Mutate(domain.Toggle{Field: "isPrivate"})
	}))
	require.NoError(t, b.AddScreenState("Settings", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "settingsTitle"})
		s.Back(domain.Tap{Locator: "navBack"})
	}))
	return b.MustBuild()
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", url, nil))
	return w
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(testGraph(t))

	w := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(t, h, "/info")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"app":"screengraph-http"`)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetGraph(t *testing.T) {
	w := get(t, NewHandler(testGraph(t)), "/graph")
	require.Equal(t, http.StatusOK, w.Code)

	var view graph.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Home", view.Initial)
	require.Len(t, view.Nodes, 3)
	assert.Equal(t, "Menu", view.Nodes[1].Name)
	assert.Equal(t, "isPrivate == false", view.Nodes[1].Edges[0].Guard)
}

func TestGetMermaid(t *testing.T) {
	w := get(t, NewHandler(testGraph(t)), "/graph/mermaid?current=Menu&visited=Home")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestGetPath(t *testing.T) {
	h := NewHandler(testGraph(t))

	w := get(t, h, "/path?to=Settings")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp PathResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Home", resp.From)
	require.Len(t, resp.Edges, 2)
	assert.Equal(t, "Menu", resp.Edges[0].To)
	assert.Equal(t, "tap settings", resp.Edges[1].Effect)

	tests := []struct {
		url  string
		code int
	}{
		{"/path?to=Settings&isPrivate=true", http.StatusNotFound},
		{"/path?to=Nowhere", http.StatusBadRequest},
		{"/path?from=Home", http.StatusBadRequest},
		{"/path?to=Settings&nope=1", http.StatusBadRequest},
		{"/path?to=Settings&isPrivate=perhaps", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			w := get(t, h, tt.url)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestGetActions(t *testing.T) {
	h := NewHandler(testGraph(t))

	w := get(t, h, "/actions?from=Settings")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"from":"Settings","actions":[]}`, w.Body.String(), "Settings has no way out")

	w = get(t, h, "/actions")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"from":"Home","actions":["togglePrivateMode"]}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(t, NewHandler(testGraph(t)), "/metrics").Code)

	reg := prometheus.NewRegistry()
	c := metrics.New(reg)
	c.NodeVisits.WithLabelValues("Home").Inc()

	h := NewHandler(testGraph(t), WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	w := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `screengraph_node_visits_total{node="Home"} 1`)
}
