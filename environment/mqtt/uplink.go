package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/logging"
)

// ErrPublishTimeout is recorded when the broker does not acknowledge a
// publish within the configured timeout.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher is the subset of paho.Client used for transmission.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Subscriber is the subset of paho.Client used for configuration changes.
type Subscriber interface {
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// Options configures an Uplink.
type Options struct {
	// Topic receives one Message per cycle.
	Topic string
	// ConfigTopic carries ConfigMessage payloads requesting a radio mode.
	ConfigTopic string
	// NodeID is embedded in every message.
	NodeID string
	// QoS is the MQTT quality of service level (0, 1 or 2).
	QoS byte
	// Retained marks published messages as retained.
	Retained bool
	// Timeout bounds the wait for a publish acknowledgement.
	Timeout time.Duration
	// Logger receives transmission failures.
	Logger logging.Logger
}

// Message is the payload published per cycle.
type Message struct {
	NodeID    string    `json:"node_id"`
	Sequence  uint64    `json:"seq"`
	Data      float64   `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// ConfigMessage requests a radio mode change.
type ConfigMessage struct {
	Mode int `json:"mode"`
}

// Uplink implements core.RadioEnvironment on top of an MQTT client. Act
// blocks until the broker acknowledges the message or Timeout elapses; a
// failed transmission is logged and counted, never retried.
type Uplink struct {
	pub    Publisher
	opts   Options
	logger *logging.NodeLogger
	now    func() time.Time

	mu      sync.Mutex
	pending bool
	mode    int
	seq     uint64
	failed  uint64
	lastErr error
}

// New creates an uplink publishing through pub.
func New(pub Publisher, optFns ...func(o *Options)) *Uplink {
	opts := Options{
		Topic:       "awarenode/data",
		ConfigTopic: "awarenode/config",
		QoS:         1,
		Timeout:     5 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Uplink{
		pub:    pub,
		opts:   opts,
		logger: logging.NewNodeLogger(opts.Logger).WithComponent("mqtt_uplink"),
		now:    time.Now,
	}
}

// Validate implements core.Validator.
func (u *Uplink) Validate() error {
	if u.pub == nil {
		return fmt.Errorf("mqtt uplink: no publisher: %w", core.ErrMissingEnvironment)
	}
	if u.opts.Topic == "" {
		return fmt.Errorf("mqtt uplink: empty topic: %w", core.ErrMissingEnvironment)
	}
	return nil
}

// Subscribe listens for mode changes on the configuration topic.
func (u *Uplink) Subscribe(sub Subscriber) error {
	token := sub.Subscribe(u.opts.ConfigTopic, u.opts.QoS, u.HandleConfig)
	if !token.WaitTimeout(u.opts.Timeout) {
		return fmt.Errorf("subscribe %s: %w", u.opts.ConfigTopic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", u.opts.ConfigTopic, err)
	}
	return nil
}

// HandleConfig is the paho.MessageHandler for the configuration topic.
func (u *Uplink) HandleConfig(_ paho.Client, msg paho.Message) {
	var cfg ConfigMessage
	if err := json.Unmarshal(msg.Payload(), &cfg); err != nil {
		u.logger.Warn("Ignoring malformed radio configuration", "topic", msg.Topic(), "error", err)
		return
	}
	u.RequestMode(cfg.Mode)
}

// RequestMode queues a configuration change reported by the next Observe.
func (u *Uplink) RequestMode(mode int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = true
	u.mode = mode
}

// Observe implements core.RadioEnvironment.
func (u *Uplink) Observe(obs *core.RadioObservation) {
	u.mu.Lock()
	defer u.mu.Unlock()
	obs.ConfigChange = u.pending
	if u.pending {
		obs.Mode = u.mode
		u.pending = false
	}
}

// Act implements core.RadioEnvironment.
func (u *Uplink) Act(acts *core.RadioActuation) {
	u.mu.Lock()
	u.seq++
	msg := Message{NodeID: u.opts.NodeID, Sequence: u.seq, Data: acts.Data, Timestamp: u.now().UTC()}
	u.mu.Unlock()

	if err := u.publish(msg); err != nil {
		u.mu.Lock()
		u.failed++
		u.lastErr = err
		u.mu.Unlock()
		u.logger.Warn("Transmission failed", "topic", u.opts.Topic, "seq", msg.Sequence, "error", err)
	}
}

func (u *Uplink) publish(msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	token := u.pub.Publish(u.opts.Topic, u.opts.QoS, u.opts.Retained, payload)
	if !token.WaitTimeout(u.opts.Timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Stats returns the number of messages sent and failed and the last failure.
func (u *Uplink) Stats() (sent, failed uint64, lastErr error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.seq, u.failed, u.lastErr
}

var (
	_ core.RadioEnvironment = (*Uplink)(nil)
	_ core.Validator        = (*Uplink)(nil)
	_ Publisher             = paho.Client(nil)
	_ Subscriber            = paho.Client(nil)
)
