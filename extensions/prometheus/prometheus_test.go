package physmonprom

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/exaring/physmon"
)

type mockTimesource struct {
	t time.Time
}

func (m *mockTimesource) Now() time.Time                  { return m.t }
func (m *mockTimesource) Since(t time.Time) time.Duration { return m.t.Sub(t) }

func TestWithPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	obs, err := WithPrometheusMetrics("test", reg)
	require.NoError(t, err)

	so := obs.(*stateObserver)
	mt := &mockTimesource{t: time.Now()}
	so.timesource = mt

	so.OnStateChange(physmon.Opening)

	afterFirst := `# HELP physmon_monitor_current_state 1 for the observable state the monitor currently reports, 0 for all others
                   # TYPE physmon_monitor_current_state gauge
                   physmon_monitor_current_state{monitor="test",state="opening"} 1
                   # HELP physmon_monitor_transitions_total Total number of times the monitor entered a given observable state
                   # TYPE physmon_monitor_transitions_total counter
                   physmon_monitor_transitions_total{monitor="test",state="opening"} 1
                  `
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(afterFirst),
		"physmon_monitor_current_state", "physmon_monitor_transitions_total"))

	mt.t = mt.t.Add(2 * time.Second)
	so.OnStateChange(physmon.Open)

	afterSecond := `# HELP physmon_monitor_current_state 1 for the observable state the monitor currently reports, 0 for all others
                    # TYPE physmon_monitor_current_state gauge
                    physmon_monitor_current_state{monitor="test",state="open"} 1
                    physmon_monitor_current_state{monitor="test",state="opening"} 0
                    # HELP physmon_monitor_transitions_total Total number of times the monitor entered a given observable state
                    # TYPE physmon_monitor_transitions_total counter
                    physmon_monitor_transitions_total{monitor="test",state="open"} 1
                    physmon_monitor_transitions_total{monitor="test",state="opening"} 1
                   `
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(afterSecond),
		"physmon_monitor_current_state", "physmon_monitor_transitions_total"))

	dwellCount := testutil.CollectAndCount(so.dwellSeconds)
	require.Equal(t, 1, dwellCount)
}
