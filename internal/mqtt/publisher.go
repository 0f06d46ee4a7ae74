package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/yapiolibs/neopixelring/internal/config"
	"github.com/yapiolibs/neopixelring/internal/ring"
)

const connectTimeout = 5 * time.Second

// payload represents the JSON payload which is published
type payload struct {
	Event string `json:"event"`
	ring.State
}

// Publisher publishes ring state changes to <topic>/STATE, retained, so new
// subscribers see the current state immediately.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// New connects to the configured MQTT broker.
func New(cfg config.MQTT) (*Publisher, error) {
	options := mqtt.NewClientOptions()
	options.AddBroker(cfg.Broker)
	if cfg.ClientID != "" {
		options.SetClientID(cfg.ClientID)
	}
	options.SetAutoReconnect(true)
	client := mqtt.NewClient(options)
	t := client.Connect()
	if !t.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect %s: timeout", cfg.Broker)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	return NewWithClient(client, cfg.Topic), nil
}

// NewWithClient publishes through an existing client.
func NewWithClient(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Topic is where state snapshots go.
func (p *Publisher) Topic() string {
	return p.topic + "/STATE"
}

// Publish publishes a JSON payload to the configured MQTT broker
func (p *Publisher) Publish(event ring.Event, st ring.State) {
	b, err := json.Marshal(payload{Event: string(event), State: st})
	if err != nil {
		log.Error().Err(err).Msg("mqtt payload")
		return
	}

	t := p.client.Publish(p.Topic(), 1, true, b)

	// Check for errors asynchronously
	go func() {
		_ = t.Wait()
		if err := t.Error(); err != nil {
			log.Warn().Err(err).Str("topic", p.Topic()).Msg("mqtt publish")
		}
	}()
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
