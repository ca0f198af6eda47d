package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/aaronkirschen/mistFan/internal/control"
	"github.com/aaronkirschen/mistFan/internal/logger"
)

// bufferCapacity bounds how many messages are held while disconnected.
const bufferCapacity = 256

// publishTimeout bounds the background wait for a publish token.
const publishTimeout = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker. The controller runs a
// millisecond-scale loop, so Publish never blocks: while disconnected,
// messages are held in a ring buffer and replayed on reconnect; delivery
// confirmation is awaited on a background goroutine.
type RealPublisher struct {
	client paho.Client
	log    *logger.Logger

	mu  sync.Mutex
	buf *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker. Connecting
// happens in the background with retry; the daemon keeps controlling the
// device whether or not the broker is reachable.
func NewRealPublisher(broker string, log *logger.Logger) *RealPublisher {
	p := &RealPublisher{
		log: log,
		buf: newRingBuffer(bufferCapacity),
	}

	// A random client id suffix keeps a second daemon (or a stale
	// session) from kicking this one off the broker.
	clientID := fmt.Sprintf("mistfan-%s", uuid.NewString()[:8])

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// Publish sends a controller event (QoS 0, not retained).
func (p *RealPublisher) Publish(event control.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	p.send(bufferedMsg{topic: Topic, payload: payload, qos: 0})
	return nil
}

// PublishSystem sends a system lifecycle event (QoS 1 so startup/shutdown
// survive a flaky link).
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker. Buffered messages are dropped.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // milliseconds
	return nil
}

func (p *RealPublisher) send(msg bufferedMsg) {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buf.push(msg)
		p.mu.Unlock()
		return
	}

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			p.log.Warnw("mqtt publish timeout", "topic", msg.topic)
			return
		}
		if err := token.Error(); err != nil {
			p.log.Warnw("mqtt publish failed", "topic", msg.topic, "err", err)
		}
	}()
}

// onConnect replays everything buffered while the link was down.
func (p *RealPublisher) onConnect(paho.Client) {
	p.mu.Lock()
	msgs, dropped := p.buf.drain()
	p.mu.Unlock()

	if dropped > 0 {
		p.log.Warnw("mqtt buffer overflowed while disconnected", "dropped", dropped)
	}
	if len(msgs) == 0 {
		p.log.Infow("mqtt connected")
		return
	}
	p.log.Infow("mqtt connected, replaying buffered messages", "count", len(msgs))
	for _, m := range msgs {
		p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.log.Warnw("mqtt connection lost, buffering events", "err", err)
}
