// Package stream delivers device status pushed over MQTT, as an
// alternative to polling.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nexus-hvac-client/internal/device/model"
	"nexus-hvac-client/internal/logger"
	appErrors "nexus-hvac-client/pkg/errors"
	pkgmqtt "nexus-hvac-client/pkg/mqtt"
	"nexus-hvac-client/pkg/validate"
)

const DefaultTopicPrefix = "nexus/devices"

// Subscriber is the part of pkg/mqtt.Client the stream needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler pkgmqtt.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// StatusTopic is where a device's status snapshots are published.
func StatusTopic(prefix, mac string) string {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return strings.TrimRight(prefix, "/") + "/" + mac + "/status"
}

type MQTTSource struct {
	sub    Subscriber
	prefix string
	qos    byte
	log    *zap.Logger
}

func NewMQTTSource(sub Subscriber, prefix string, qos byte) *MQTTSource {
	return &MQTTSource{sub: sub, prefix: prefix, qos: qos, log: logger.Named("stream")}
}

// Watch streams snapshots for one device until ctx is done. A slow reader
// only sees the newest snapshot. The channel is closed after unsubscribing.
func (s *MQTTSource) Watch(ctx context.Context, mac string) (<-chan *model.DeviceSnapshot, error) {
	if mac == "" {
		return nil, errors.New("stream: device mac is required")
	}
	if !validate.IsDeviceMAC(mac) {
		return nil, fmt.Errorf("stream: invalid device mac %q: %w", mac, appErrors.ErrInvalidInput)
	}
	topic := StatusTopic(s.prefix, mac)
	latest := make(chan *model.DeviceSnapshot, 1)
	out := make(chan *model.DeviceSnapshot)

	handler := func(topic string, payload []byte) {
		var snap model.DeviceSnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			s.log.Warn("Dropping malformed status payload", zap.String("topic", topic), zap.Error(err))
			return
		}
		if snap.MAC == "" {
			snap.MAC = mac
		}
		for {
			select {
			case latest <- &snap:
				return
			default:
			}
			select {
			case <-latest:
			default:
			}
		}
	}

	if err := s.sub.Subscribe(topic, s.qos, handler); err != nil {
		return nil, err
	}

	go func() {
		defer close(out)
		defer func() {
			if err := s.sub.Unsubscribe(topic); err != nil {
				s.log.Warn("Unsubscribe failed", zap.String("topic", topic), zap.Error(err))
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-latest:
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
