package mqtt

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

var ErrTimeout = errors.New("mqtt: operation timed out")

type Config struct {
	Broker               string
	ClientID             string
	Username             string
	Password             string
	CleanSession         bool
	KeepAlive            int
	ConnectTimeout       int
	AutoReconnect        bool
	MaxReconnectInterval time.Duration
	// OperationTimeout bounds subscribe, unsubscribe and publish waits.
	OperationTimeout time.Duration
}

// DefaultConfig fills the connection settings used by both the client and
// the simulator.
func DefaultConfig(broker, clientID string) *Config {
	return &Config{
		Broker:               broker,
		ClientID:             clientID,
		CleanSession:         true,
		KeepAlive:            30,
		ConnectTimeout:       10,
		AutoReconnect:        true,
		MaxReconnectInterval: 30 * time.Second,
		OperationTimeout:     5 * time.Second,
	}
}

type Client struct {
	client mqtt.Client
	config *Config
	log    *zap.Logger
}

type MessageHandler func(topic string, payload []byte)

func NewClient(config *Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = 5 * time.Second
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetCleanSession(config.CleanSession)
	opts.SetKeepAlive(time.Duration(config.KeepAlive) * time.Second)
	opts.SetConnectTimeout(time.Duration(config.ConnectTimeout) * time.Second)
	opts.SetAutoReconnect(config.AutoReconnect)
	opts.SetMaxReconnectInterval(config.MaxReconnectInterval)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Info("MQTT client connected", zap.String("broker", config.Broker))
	})

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Warn("MQTT connection lost", zap.Error(err))
	})

	opts.SetReconnectingHandler(func(c mqtt.Client, opts *mqtt.ClientOptions) {
		log.Info("Reconnecting to MQTT broker")
	})

	return &Client{
		client: mqtt.NewClient(opts),
		config: config,
		log:    log,
	}
}

// Connect establishes a connection to the MQTT broker
func (c *Client) Connect() error {
	c.log.Info("Connecting to MQTT broker", zap.String("broker", c.config.Broker))

	token := c.client.Connect()
	token.Wait()

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return nil
}

func (c *Client) wait(token mqtt.Token) error {
	if !token.WaitTimeout(c.config.OperationTimeout) {
		return ErrTimeout
	}
	return token.Error()
}

// Subscribe subscribes to a topic with handler
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	c.log.Debug("Subscribing to topic", zap.String("topic", topic), zap.Uint8("qos", qos))

	token := c.client.Subscribe(topic, qos, func(client mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})

	if err := c.wait(token); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	return nil
}

// Publish publishes a message to a topic
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	return c.wait(c.client.Publish(topic, qos, retained, payload))
}

// Unsubscribe unsubscribes from a topic
func (c *Client) Unsubscribe(topics ...string) error {
	return c.wait(c.client.Unsubscribe(topics...))
}

// Disconnect disconnects from MQTT broker
func (c *Client) Disconnect() {
	c.client.Disconnect(250)
	c.log.Info("Disconnected from MQTT broker")
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
