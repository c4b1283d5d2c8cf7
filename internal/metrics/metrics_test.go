package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCompose(time.Millisecond)
		m.SetEntities(3)
		m.AddSpawns(2)
		m.CountTick("game")
	})
}

func TestCollectors(t *testing.T) {
	m := New()
	m.SetEntities(7)
	m.AddSpawns(2)
	m.AddSpawns(0)
	m.AddSpawns(1)
	m.CountTick("game")
	m.CountTick("game")
	m.CountTick("void")
	m.ObserveCompose(2 * time.Millisecond)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.entities))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.spawns))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticks.WithLabelValues("game")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticks.WithLabelValues("void")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.composeSeconds))
}

func TestHandlerServesPrivateRegistry(t *testing.T) {
	m := New()
	m.SetEntities(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "beatsprite_entities 4"), body)
	assert.Contains(t, body, "go_goroutines")
}
