package bindz

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := newTestRegistry(t, WithMode(DispatchSequential))
	reg.EventManager("ui").Register(testEventQuit)(func(ctx context.Context, ev Event) error { return nil })
	reg.KeyListener("ui").Bind("quit", On('q'))(func(ctx context.Context, ev KeyEvent) error { return nil })
	require.NoError(t, reg.NotifyEventManagers(context.Background(), SimpleEvent{Kind: testEventQuit}))

	c := NewCollector(reg, "game")
	assert.Equal(t, 14, testutil.CollectAndCount(c))

	promReg := prometheus.NewPedanticRegistry()
	require.NoError(t, promReg.Register(c))

	families, err := promReg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "/" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, float64(1), values["game_bindz_callbacks_total/dispatched"])
	assert.Equal(t, float64(1), values["game_bindz_callbacks_total/processed"])
	assert.Equal(t, float64(0), values["game_bindz_callbacks_total/failed"])
	assert.Equal(t, float64(1), values["game_bindz_handles/event_manager"])
	assert.Equal(t, float64(1), values["game_bindz_handles/key_listener"])
	assert.Equal(t, float64(2), values["game_bindz_registered_callbacks"])
	assert.Equal(t, float64(1), values["game_bindz_registered_binds"])
}

func TestCollectorWithoutNamespace(t *testing.T) {
	reg := newTestRegistry(t)
	c := NewCollector(reg, "")

	problems, err := testutil.CollectAndLint(c)
	require.NoError(t, err)
	for _, p := range problems {
		t.Logf("lint: %s: %s", p.Metric, p.Text)
	}

	promReg := prometheus.NewRegistry()
	require.NoError(t, promReg.Register(c))
	families, err := promReg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		assert.Regexp(t, `^bindz_`, mf.GetName())
	}
}
