package metrics_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/screengraph/internal/runtime"
	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/automation/mock"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/aretw0/screengraph/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Hooks(t *testing.T) {
	ctx := context.Background()
	c := metrics.New(nil)
	hooks := c.Hooks()

	hooks.OnNodeEnter(ctx, &domain.NodeEvent{Node: "Menu"})
	hooks.OnNodeEnter(ctx, &domain.NodeEvent{Node: "Menu"})
	hooks.OnTransition(ctx, &domain.TransitionEvent{Kind: domain.EdgeTap, Duration: 20 * time.Millisecond})
	hooks.OnTransition(ctx, &domain.TransitionEvent{Kind: domain.EdgeTap, Err: errors.New("boom")})
	hooks.OnRecovery(ctx, &domain.RecoveryEvent{Trigger: domain.TriggerVerification})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.NodeVisits.WithLabelValues("Menu")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Transitions.WithLabelValues("tap", metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Transitions.WithLabelValues("tap", metrics.OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Recoveries.WithLabelValues("verification", metrics.OutcomeOK)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.TransitionDuration))
}

func TestCollector_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg)
	c.NodeVisits.WithLabelValues("Home").Inc()

	expected := `
# HELP screengraph_node_visits_total Number of times each screen was entered.
# TYPE screengraph_node_visits_total counter
screengraph_node_visits_total{node="Home"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "screengraph_node_visits_total"))
}

func TestCollector_FedByNavigator(t *testing.T) {
	app := mock.New("A").
		AddScreen("A", "a").
		AddScreen("B", "b").
		On("A", "toB", automation.GestureTap, "B")
	b := graph.NewBuilder(app, domain.NewUserState("A"))
	require.NoError(t, b.AddScreenState("A", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "a"})
		s.Tap("toB", "B")
	}))
	require.NoError(t, b.AddScreenState("B", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "b"})
	}))

	c := metrics.New(nil)
	nav := runtime.NewNavigator(b.MustBuild(), runtime.WithLifecycleHooks(c.Hooks()))
	require.NoError(t, nav.Goto(context.Background(), "B"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.NodeVisits.WithLabelValues("B")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Transitions.WithLabelValues("tap", metrics.OutcomeOK)))
}
