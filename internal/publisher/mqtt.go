// Package publisher forwards stored credit snapshots to an MQTT broker for
// home-automation consumers.
package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/theirongolddev/acumon/internal/config"
)

const (
	connectTimeout = 15 * time.Second
	publishTimeout = 5 * time.Second
)

// Publisher publishes snapshots as retained JSON messages.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
}

// New connects to the broker in cfg.
func New(cfg config.MQTTConfig) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("MQTT broker address is required when enabled")
	}

	topicPrefix := strings.TrimRight(cfg.TopicPrefix, "/")
	if topicPrefix == "" {
		topicPrefix = "acumon"
	}

	broker := cfg.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("acumon")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if err := connect(client, connectTimeout); err != nil {
		return nil, err
	}

	return newWithClient(client, topicPrefix), nil
}

// connect waits at most timeout for the first connection. With connect retry
// enabled the token only completes once a connection succeeds.
func connect(client mqtt.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return fmt.Errorf("connecting to MQTT broker: no connection after %s", timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	return nil
}

func newWithClient(client mqtt.Client, topicPrefix string) *Publisher {
	return &Publisher{client: client, topicPrefix: topicPrefix}
}

// Topic returns the topic snapshots are published on.
func (p *Publisher) Topic() string {
	return p.topicPrefix + "/snapshot"
}

// Publish sends one record. The message is retained so new subscribers see
// the latest snapshot immediately.
func (p *Publisher) Publish(raw json.RawMessage) error {
	if !json.Valid(raw) {
		return errors.New("publishing invalid JSON")
	}
	token := p.client.Publish(p.Topic(), 1, true, []byte(raw))
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: timed out", p.Topic())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.Topic(), err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
