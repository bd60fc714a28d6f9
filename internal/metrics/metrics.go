package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nexus_hvac"

// ClientMetrics covers the outbound adapter and the poll loops. A nil
// *ClientMetrics is valid and records nothing.
type ClientMetrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PollTicks       *prometheus.CounterVec
	PollDuration    *prometheus.HistogramVec
	ListingSize     *prometheus.GaugeVec
}

// NewClientMetrics registers the client collectors on reg.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	factory := promauto.With(reg)
	return &ClientMetrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Outbound backend requests by outcome.",
		}, []string{"method", "route", "outcome"}), // outcome: ok, http_error, timeout, network
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Outbound backend request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PollTicks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "ticks_total",
			Help:      "Poll loop ticks by view and result.",
		}, []string{"view", "result"}), // result: ok, error, skipped
		PollDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one poll fetch, fan-out included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		ListingSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "listing_devices",
			Help:      "Devices in the last fleet listing per view.",
		}, []string{"view"}),
	}
}

func (m *ClientMetrics) ObserveRequest(method, route, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, outcome).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *ClientMetrics) ObservePoll(view, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.PollTicks.WithLabelValues(view, result).Inc()
	if result != "skipped" {
		m.PollDuration.WithLabelValues(view).Observe(d.Seconds())
	}
}

func (m *ClientMetrics) SetListingSize(view string, n int) {
	if m == nil {
		return
	}
	m.ListingSize.WithLabelValues(view).Set(float64(n))
}

// SimulatorMetrics is exported by the backend simulator.
type SimulatorMetrics struct {
	Requests       *prometheus.CounterVec
	Devices        *prometheus.GaugeVec
	Registrations  prometheus.Counter
	MQTTPublishes  *prometheus.CounterVec
	LoginsRejected prometheus.Counter
}

func NewSimulatorMetrics(reg prometheus.Registerer) *SimulatorMetrics {
	factory := promauto.With(reg)
	return &SimulatorMetrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "requests_total",
			Help:      "Requests served by route and status code.",
		}, []string{"route", "status"}),
		Devices: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "devices",
			Help:      "Simulated devices per company.",
		}, []string{"company"}),
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "registrations_total",
			Help:      "Devices registered through /save.",
		}),
		MQTTPublishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "mqtt_publishes_total",
			Help:      "Status messages published over MQTT by result.",
		}, []string{"result"}),
		LoginsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "logins_rejected_total",
			Help:      "Customer logins rejected.",
		}),
	}
}
