// Package mqttc provides a thin MQTT client for the autonomy runtime's
// pub/sub bus. Providers subscribe to sensor topics through it and the
// actuator publishes motion requests.
package mqttc

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Options configures the client connection.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Client wraps the PAHO MQTT client with subscription bookkeeping so
// handlers survive automatic reconnects.
type Client struct {
	client mqtt.Client
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[string]func([]byte)

	messagesSent     atomic.Int64
	messagesReceived atomic.Int64
}

// New creates and connects a client. Blocks until the broker accepts the
// connection or the attempt fails.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		logger:   logger.With("component", "mqtt"),
		handlers: make(map[string]func([]byte)),
	}

	mqttOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	c.client = mqtt.NewClient(mqttOpts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return c, nil
}

func (c *Client) onConnect(client mqtt.Client) {
	c.logger.Info("connected to MQTT broker")

	// Re-establish subscriptions after a reconnect.
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, handler := range c.handlers {
		if err := c.subscribeLocked(topic, handler); err != nil {
			c.logger.Error("resubscribe failed", "topic", topic, "error", err)
		}
	}
}

func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.logger.Warn("MQTT connection lost", "error", err)
}

// Subscribe registers a handler for a topic. The handler receives the raw
// payload and must not block; it runs on the client's message loop.
func (c *Client) Subscribe(topic string, handler func([]byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	return c.subscribeLocked(topic, handler)
}

func (c *Client) subscribeLocked(topic string, handler func([]byte)) error {
	token := c.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		c.messagesReceived.Add(1)
		handler(msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}
	c.logger.Debug("subscribed to topic", "topic", topic)
	return nil
}

// Publish sends a payload to a topic, fire-and-forget (QoS 0).
func (c *Client) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 0, false, payload)
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}
	c.messagesSent.Add(1)
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
		c.logger.Info("MQTT client disconnected")
	}
}

// Stats reports message counters for telemetry.
type Stats struct {
	Connected        bool  `json:"connected"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesReceived int64 `json:"messages_received"`
}

// Stats returns current client statistics.
func (c *Client) Stats() Stats {
	return Stats{
		Connected:        c.client.IsConnected(),
		MessagesSent:     c.messagesSent.Load(),
		MessagesReceived: c.messagesReceived.Load(),
	}
}
