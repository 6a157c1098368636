package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/gas-alarm/internal/logger"
	"github.com/sweeney/gas-alarm/internal/logic"
)

const (
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
)

// RealPublisher publishes to an actual MQTT broker. Messages are queued in a
// ring buffer and sent, oldest first, by a background goroutine while the
// client is connected, so callers on the tick loop never wait on the broker.
type RealPublisher struct {
	ctx    context.Context
	client paho.Client

	mu        sync.Mutex
	buffer    *ringBuffer
	online    bool // connection open, as last reported by paho
	connected bool // at least one successful connection so far

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	running   bool
	closeOnce sync.Once
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting in the background. It does not wait for the broker: the alarm
// must keep running when the network is down.
func NewRealPublisher(ctx context.Context, broker, clientID string) *RealPublisher {
	ctx = logger.WithKV(logger.WithName(ctx, "mqtt"), "broker", broker)

	lwt, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "LWT",
	})

	p := newPublisher(ctx, nil, DefaultBufferSize)

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(lwt), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	p.start()
	p.client.Connect()

	return p
}

// newPublisher wraps an existing client without starting the sender; tests
// drive flush directly.
func newPublisher(ctx context.Context, client paho.Client, capacity int) *RealPublisher {
	return &RealPublisher{
		ctx:     ctx,
		client:  client,
		buffer:  newRingBuffer(capacity),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Publish queues an alarm event for the broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1: alarm transitions should not be lost on a flaky link.
	p.send(bufferedMsg{topic: Topic, payload: payload, qos: 1})
	return nil
}

// PublishSystem queues a system lifecycle event for the broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

// IsConnected reports whether the client currently has an open connection.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Buffered returns the number of messages not yet delivered.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.len()
}

// Close makes a last delivery attempt, stops the sender and disconnects.
// Messages still undelivered are discarded.
func (p *RealPublisher) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		if p.running {
			<-p.stopped
		}
		if n := p.Buffered(); n > 0 {
			logger.WarnKV(p.ctx, "discarding buffered messages", "count", n)
		}
		p.client.Disconnect(disconnectQuiesce)
	})
	return nil
}

func (p *RealPublisher) start() {
	p.running = true
	go p.run()
}

func (p *RealPublisher) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.done:
			p.flush()
			return
		}
	}
}

func (p *RealPublisher) send(msg bufferedMsg) {
	p.mu.Lock()
	dropped := p.buffer.push(msg)
	p.mu.Unlock()

	if dropped {
		logger.WarnKV(p.ctx, "buffer full, dropping oldest messages", "capacity", p.buffer.capacity)
	}
	p.notify()
}

func (p *RealPublisher) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// flush delivers everything queued while the connection is open. On the
// first failure the undelivered messages go back ahead of anything queued
// meanwhile and wait for the next wake-up.
func (p *RealPublisher) flush() {
	p.mu.Lock()
	if !p.online {
		p.mu.Unlock()
		return
	}
	pending := p.buffer.drainAll()
	p.mu.Unlock()

	for i, msg := range pending {
		if err := p.deliver(msg); err != nil {
			logger.WarnKV(p.ctx, "delivery interrupted", "remaining", len(pending)-i, "error", err)
			p.requeue(pending[i:])
			return
		}
	}
}

func (p *RealPublisher) deliver(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}

func (p *RealPublisher) requeue(older []bufferedMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()

	newer := p.buffer.drainAll()
	for _, msg := range older {
		p.buffer.push(msg)
	}
	for _, msg := range newer {
		p.buffer.push(msg)
	}
}

// onConnect runs on the paho goroutine after every (re)connection. A
// reconnection queues RECONNECTED behind the messages held while offline.
func (p *RealPublisher) onConnect(_ paho.Client) {
	p.mu.Lock()
	reconnect := p.connected
	p.connected = true
	p.online = true
	pending := p.buffer.len()
	if reconnect {
		if payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"}); err == nil {
			p.buffer.push(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1})
		}
	}
	p.mu.Unlock()

	logger.InfoKV(p.ctx, "connected", "reconnect", reconnect, "replay", pending)
	p.notify()
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.online = false
	p.mu.Unlock()

	logger.WarnKV(p.ctx, "connection lost", "error", err)
}
