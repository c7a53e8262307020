package mqtt

import (
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitflow/busalloc/core/events"
	"github.com/transitflow/busalloc/core/model"
	"github.com/transitflow/busalloc/internal/eventbus"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	published map[string][]byte
	connected bool
}

func (c *fakeClient) IsConnected() bool { return c.connected }
func (c *fakeClient) Connect() paho.Token {
	c.connected = true
	return &fakeToken{}
}
func (c *fakeClient) Disconnect(uint) { c.connected = false }
func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	if c.published == nil {
		c.published = map[string][]byte{}
	}
	c.published[topic] = payload.([]byte)
	return &fakeToken{}
}
func (c *fakeClient) Subscribe(string, byte, paho.MessageHandler) paho.Token {
	return &fakeToken{}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func newTestFeed(t *testing.T, bus eventbus.EventBus) (*CountsFeed, *fakeClient) {
	t.Helper()
	fc := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fc }
	t.Cleanup(func() { newMQTTClient = orig })

	feed, err := NewCountsFeed(Config{Broker: "tcp://localhost:1883"}, bus, nil)
	require.NoError(t, err)
	return feed, fc
}

func TestCountsFeed_JSONPayload(t *testing.T) {
	feed, _ := newTestFeed(t, nil)
	feed.onCount(nil, &fakeMessage{
		topic:   "busalloc/stops/B3/count",
		payload: []byte(`{"stop_id":"B3","count":14}`),
	})
	assert.Equal(t, 14, feed.Snapshot().Get("B3"))
}

func TestCountsFeed_BareIntegerPayload(t *testing.T) {
	feed, _ := newTestFeed(t, nil)
	feed.onCount(nil, &fakeMessage{topic: "busalloc/stops/B7/count", payload: []byte(" 6 ")})
	assert.Equal(t, 6, feed.Snapshot().Get("B7"))
}

func TestCountsFeed_DropsInvalid(t *testing.T) {
	feed, _ := newTestFeed(t, nil)
	feed.onCount(nil, &fakeMessage{topic: "busalloc/stops/B1/count", payload: []byte("not-a-number")})
	feed.onCount(nil, &fakeMessage{topic: "busalloc/stops/B2/count", payload: []byte(`{"stop_id":"B2","count":-4}`)})
	snap := feed.Snapshot()
	assert.Empty(t, snap)
}

func TestCountsFeed_PublishesCountsEvent(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	feed, _ := newTestFeed(t, bus)
	feed.onCount(nil, &fakeMessage{topic: "busalloc/stops/B5/count", payload: []byte("3")})

	select {
	case ev := <-sub:
		ce, ok := ev.(events.CountsEvent)
		require.True(t, ok, "unexpected event %T", ev)
		assert.Equal(t, "B5", ce.StopID)
		assert.Equal(t, 3, ce.Count)
	case <-time.After(time.Second):
		t.Fatal("counts event not published")
	}
}

func TestCountsFeed_SnapshotIsACopy(t *testing.T) {
	feed, _ := newTestFeed(t, nil)
	feed.onCount(nil, &fakeMessage{topic: "busalloc/stops/B1/count", payload: []byte("9")})
	snap := feed.Snapshot()
	snap["B1"] = 0
	assert.Equal(t, 9, feed.Snapshot().Get("B1"))
}

func TestCountsFeed_PublishResult(t *testing.T) {
	feed, fc := newTestFeed(t, nil)
	err := feed.PublishResult(model.AllocationResult{SavedBuses: 2})
	require.NoError(t, err)
	assert.Contains(t, string(fc.published["busalloc/allocations"]), `"saved_buses":2`)
}
