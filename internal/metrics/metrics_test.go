package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilClientMetricsIsNoop(t *testing.T) {
	var m *ClientMetrics
	m.ObserveRequest("GET", "/x", "ok", time.Millisecond)
	m.ObservePoll("fleet", "ok", time.Millisecond)
	m.SetListingSize("fleet", 3)
}

func TestClientMetricsRecord(t *testing.T) {
	m := NewClientMetrics(prometheus.NewRegistry())

	m.ObservePoll("fleet", "ok", 10*time.Millisecond)
	m.ObservePoll("fleet", "error", 10*time.Millisecond)
	m.ObservePoll("fleet", "skipped", 0)
	m.SetListingSize("fleet", 4)

	if got := testutil.ToFloat64(m.PollTicks.WithLabelValues("fleet", "ok")); got != 1 {
		t.Errorf("ok ticks = %v", got)
	}
	if got := testutil.ToFloat64(m.PollTicks.WithLabelValues("fleet", "skipped")); got != 1 {
		t.Errorf("skipped ticks = %v", got)
	}
	if got := testutil.ToFloat64(m.ListingSize.WithLabelValues("fleet")); got != 4 {
		t.Errorf("listing size = %v", got)
	}
}
