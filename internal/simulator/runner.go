package simulator

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"nexus-hvac-client/internal/metrics"
	"nexus-hvac-client/internal/stream"
)

// Publisher is the part of pkg/mqtt.Client the runner needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Runner drifts the fleet on every tick and, when a publisher is set, pushes
// each device's status to its MQTT topic.
type Runner struct {
	fleet     *Fleet
	publisher Publisher
	prefix    string
	qos       byte
	metrics   *metrics.SimulatorMetrics
	log       *zap.Logger
}

func NewRunner(fleet *Fleet, publisher Publisher, prefix string, qos byte, m *metrics.SimulatorMetrics, log *zap.Logger) *Runner {
	return &Runner{fleet: fleet, publisher: publisher, prefix: prefix, qos: qos, metrics: m, log: log}
}

// Run blocks until ctx is done.
func (r *Runner) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Info("Simulator drift job started",
		zap.Duration("interval", interval),
		zap.Bool("mqtt", r.publisher != nil),
	)

	r.step()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Simulator drift job stopped")
			return
		case <-ticker.C:
			r.fleet.Drift()
			r.step()
		}
	}
}

func (r *Runner) step() {
	if r.metrics != nil {
		for company, n := range r.fleet.Counts() {
			r.metrics.Devices.WithLabelValues(company).Set(float64(n))
		}
	}
	if r.publisher != nil {
		r.publish()
	}
}

func (r *Runner) publish() {
	for _, snap := range r.fleet.Snapshots() {
		payload, err := json.Marshal(snap)
		if err != nil {
			r.log.Error("Failed to encode status", zap.String("mac", snap.MAC), zap.Error(err))
			continue
		}
		result := "ok"
		if err := r.publisher.Publish(stream.StatusTopic(r.prefix, snap.MAC), r.qos, false, payload); err != nil {
			result = "error"
			r.log.Warn("Failed to publish status", zap.String("mac", snap.MAC), zap.Error(err))
		}
		if r.metrics != nil {
			r.metrics.MQTTPublishes.WithLabelValues(result).Inc()
		}
	}
}
