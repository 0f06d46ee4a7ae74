package mqtt

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yapiolibs/neopixelring/internal/ring"
	"github.com/yapiolibs/neopixelring/internal/scene"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes; other Client methods are not used.
type fakeClient struct {
	mqtt.Client
	mu   sync.Mutex
	msgs []message
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, p interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, message{topic, qos, retained, p.([]byte)})
	return doneToken{}
}

func TestPublishesRingChanges(t *testing.T) {
	c := &fakeClient{}
	p := NewWithClient(c, "LIVINGROOM/RING")
	r := ring.New(nil, 16, ring.WithPublisher(p))

	r.IncrementWidth(-12)
	r.NextScene()

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.msgs, 2)
	m := c.msgs[1]
	assert.Equal(t, "LIVINGROOM/RING/STATE", m.topic)
	assert.Equal(t, byte(1), m.qos)
	assert.True(t, m.retained)

	var got struct {
		Event string     `json:"event"`
		Scene scene.Mode `json:"scene"`
		Width int        `json:"width"`
	}
	require.NoError(t, json.Unmarshal(m.payload, &got))
	assert.Equal(t, string(ring.EventScene), got.Event)
	assert.Equal(t, scene.White, got.Scene)
	assert.Equal(t, 4, got.Width)
}
