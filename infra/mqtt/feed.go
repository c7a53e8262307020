package mqtt

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/transitflow/busalloc/core/events"
	"github.com/transitflow/busalloc/core/model"
	"github.com/transitflow/busalloc/infra/logger"
	"github.com/transitflow/busalloc/internal/eventbus"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// countMessage is the JSON payload published by the counting collaborator.
// Bare integer payloads are accepted as well.
type countMessage struct {
	StopID string `json:"stop_id"`
	Count  int    `json:"count"`
}

// CountsFeed subscribes to per-stop count messages and keeps the latest
// snapshot per stop. It implements counts.Source for the transport layer and
// republishes allocation summaries for downstream consumers (depot displays,
// simulators).
type CountsFeed struct {
	cli pahoClient

	mu     sync.RWMutex
	counts map[string]int

	cfg Config
	bus eventbus.EventBus
	log logger.Logger
}

// NewCountsFeed connects to the broker and subscribes to the counts topic.
// The subscription is re-established on every reconnect.
func NewCountsFeed(cfg Config, bus eventbus.EventBus, log logger.Logger) (*CountsFeed, error) {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	f := &CountsFeed{counts: make(map[string]int), cfg: cfg, bus: bus, log: log}

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.CountsTopic, cfg.QoS, f.onCount); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	f.cli = c
	return f, nil
}

// onCount parses one count message and updates the snapshot. Invalid
// payloads and negative counts are dropped with a warning.
func (f *CountsFeed) onCount(_ paho.Client, m paho.Message) {
	stop, count, ok := f.parse(m.Topic(), m.Payload())
	if !ok {
		return
	}
	f.mu.Lock()
	f.counts[stop] = count
	f.mu.Unlock()
	if f.bus != nil {
		f.bus.Publish(events.CountsEvent{StopID: stop, Count: count, Time: time.Now()})
	}
}

func (f *CountsFeed) parse(topic string, payload []byte) (string, int, bool) {
	var msg countMessage
	if err := json.Unmarshal(payload, &msg); err == nil && msg.StopID != "" {
		if msg.Count < 0 {
			f.log.Warnf("negative count %d for stop %s dropped", msg.Count, msg.StopID)
			return "", 0, false
		}
		return msg.StopID, msg.Count, true
	}

	// Bare integer payload: the stop is the second-to-last topic segment,
	// e.g. busalloc/stops/B3/count.
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		f.log.Warnf("count message on unexpected topic %s dropped", topic)
		return "", 0, false
	}
	stop := parts[len(parts)-2]
	count, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil || count < 0 {
		f.log.Warnf("invalid count payload %q for stop %s dropped", payload, stop)
		return "", 0, false
	}
	return stop, count, true
}

// Snapshot returns a copy of the latest per-stop counts.
func (f *CountsFeed) Snapshot() model.StopCounts {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(model.StopCounts, len(f.counts))
	for k, v := range f.counts {
		out[k] = v
	}
	return out
}

// PublishResult publishes the allocation summary on the result topic.
func (f *CountsFeed) PublishResult(res model.AllocationResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	token := f.cli.Publish(f.cfg.ResultTopic, f.cfg.QoS, false, b)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (f *CountsFeed) Close() {
	if f.cli != nil && f.cli.IsConnected() {
		f.cli.Disconnect(250)
	}
}
