// Package mqtt wraps the paho client used for push notifications.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config holds broker settings. Broker is a URL such as tcp://host:1883.
type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// Client publishes fire-and-forget (QoS 0) messages.
type Client struct {
	client         paho.Client
	publishTimeout time.Duration
}

// New connects to the broker. Returns nil, nil if no broker is configured.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Broker == "" {
		return nil, nil
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		if logger != nil {
			logger.Warn("mqtt connection lost", "error", err)
		}
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect: timed out after %s", cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &Client{client: client, publishTimeout: cfg.PublishTimeout}, nil
}

// Publish sends payload on topic with QoS 0 and no retention.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	token := c.client.Publish(topic, 0, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.publishTimeout):
		return fmt.Errorf("mqtt publish to %s: timed out", topic)
	}
}

// Check reports whether the client currently holds a broker connection.
func (c *Client) Check(context.Context) error {
	if !c.client.IsConnectionOpen() {
		return fmt.Errorf("mqtt not connected")
	}
	return nil
}

// Close disconnects, allowing in-flight work a short grace period.
func (c *Client) Close() {
	c.client.Disconnect(250)
}
