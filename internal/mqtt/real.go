package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/sweeney/button-sensor/internal/logic"
)

const (
	publishTimeout = 5 * time.Second
	bufferCapacity = 256
)

// Options configures the broker connection.
type Options struct {
	Broker   string
	ClientID string
}

// RealPublisher publishes to an actual MQTT broker. Messages produced while
// the connection is down are kept in a ring buffer and replayed in order
// once it comes back.
type RealPublisher struct {
	client paho.Client
	log    *zap.SugaredLogger
	now    func() time.Time

	mu            sync.Mutex
	buf           *offlineBuffer
	connectedOnce bool
}

// NewRealPublisher creates a publisher for the given broker. Connecting
// happens in the background and is retried until it succeeds.
func NewRealPublisher(o Options, log *zap.SugaredLogger) *RealPublisher {
	log = log.Named("mqtt")
	p := &RealPublisher{
		log: log,
		now: time.Now,
		buf: newOfflineBuffer(bufferCapacity, log),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: p.now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnf("connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// onConnect replays buffered messages and announces reconnections.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	first := !p.connectedOnce
	p.connectedOnce = true
	pending, dropped := p.buf.drainAll()
	p.mu.Unlock()

	if first {
		p.log.Infof("connected, replaying %d buffered messages", len(pending))
	} else {
		p.log.Infof("reconnected, replaying %d buffered messages", len(pending))
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		pending = append([]bufferedMsg{{topic: TopicSystem, payload: payload, qos: 1}}, pending...)
	}
	if dropped > 0 {
		p.log.Warnf("%d messages were dropped while offline", dropped)
	}

	for _, m := range pending {
		token := c.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(publishTimeout) {
			p.log.Warnf("replay to %s timed out", m.topic)
			continue
		}
		if err := token.Error(); err != nil {
			p.log.Warnf("replay to %s: %v", m.topic, err)
		}
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Publish sends a button event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	if err := p.publish(Topic, 0, false, payload); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	if err := p.publish(TopicSystem, 1, event.Retained, payload); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("timeout")
	}
	return token.Error()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
