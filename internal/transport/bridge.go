package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/kestrelworks/smsbridge/internal/infrastructure/logging"
	"github.com/kestrelworks/smsbridge/internal/infrastructure/mqtt"
)

// defaultSendTimeout bounds how long a send waits for the modem
// bridge's delivery report before giving up.
const defaultSendTimeout = 30 * time.Second

// sendQoS is the QoS level for outbound commands. At-least-once: a
// lost send command would otherwise silently strand the caller until
// the report timeout fires.
const sendQoS = 1

// Bridge is an MQTT-backed Transport that talks to an external modem
// bridge. Send commands go out on per-correlation-id topics; the
// matching delivery report resolves the send.
type Bridge struct {
	client *mqtt.Client
	topics mqtt.Topics
	logger *logging.Logger

	sendTimeout time.Duration

	// pending maps correlation ids to the channel their delivery
	// report should be routed to. Entries are removed by the sender
	// once resolved or timed out.
	pending map[string]chan deliveryReport
	mu      sync.Mutex

	// onInbound receives messages the modem bridge delivers.
	onInbound InboundHandler
	handlerMu sync.RWMutex
}

// NewBridge creates the modem-bridge transport and subscribes to the
// delivery report and inbound topics. The client must already be
// connected.
func NewBridge(client *mqtt.Client, logger *logging.Logger) (*Bridge, error) {
	b := &Bridge{
		client:      client,
		logger:      logger,
		sendTimeout: defaultSendTimeout,
		pending:     make(map[string]chan deliveryReport),
	}

	if err := client.Subscribe(b.topics.AllReports(), sendQoS, b.handleReport); err != nil {
		return nil, fmt.Errorf("subscribing to delivery reports: %w", err)
	}
	if err := client.Subscribe(b.topics.Inbound(), sendQoS, b.handleInbound); err != nil {
		return nil, fmt.Errorf("subscribing to inbound messages: %w", err)
	}

	return b, nil
}

// SetSendTimeout overrides the delivery report wait window.
func (b *Bridge) SetSendTimeout(d time.Duration) {
	if d > 0 {
		b.sendTimeout = d
	}
}

// SetInboundHandler registers the callback for messages delivered by
// the modem bridge. Only one handler is supported; later calls replace
// earlier ones.
func (b *Bridge) SetInboundHandler(handler InboundHandler) {
	b.handlerMu.Lock()
	defer b.handlerMu.Unlock()
	b.onInbound = handler
}

// Available reports whether the broker connection is up.
func (b *Bridge) Available() bool {
	return b.client.IsConnected()
}

// Send publishes an outbound command and blocks until the modem bridge
// reports the outcome, ctx is cancelled, or the send timeout elapses.
func (b *Bridge) Send(ctx context.Context, correlationID, to, body string) error {
	if !b.Available() {
		return ErrNotAvailable
	}

	cmd := sendCommand{
		ID:        correlationID,
		To:        to,
		Body:      body,
		Timestamp: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshalling send command: %w", err)
	}

	// Register before publishing so a fast report cannot race the
	// registration. Buffered so the report handler never blocks.
	reportCh := make(chan deliveryReport, 1)
	b.mu.Lock()
	b.pending[correlationID] = reportCh
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, correlationID)
		b.mu.Unlock()
	}()

	if err := b.client.Publish(b.topics.Outbound(correlationID), payload, sendQoS, false); err != nil {
		return fmt.Errorf("publishing send command: %w", err)
	}

	timer := time.NewTimer(b.sendTimeout)
	defer timer.Stop()

	select {
	case report := <-reportCh:
		if !report.Success {
			if report.Error != "" {
				return fmt.Errorf("%w: %s", ErrSendRejected, report.Error)
			}
			return ErrSendRejected
		}
		return nil
	case <-timer.C:
		return ErrSendTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleReport routes a delivery report to the send waiting on it.
// Reports with no waiter (late arrivals after timeout) are dropped.
func (b *Bridge) handleReport(topic string, payload []byte) error {
	var report deliveryReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return fmt.Errorf("unmarshalling delivery report: %w", err)
	}
	if report.ID == "" {
		return fmt.Errorf("delivery report on %s missing id", topic)
	}

	b.mu.Lock()
	ch, ok := b.pending[report.ID]
	b.mu.Unlock()

	if !ok {
		b.logger.Warn("delivery report with no pending send",
			"correlation_id", report.ID,
			"success", report.Success)
		return nil
	}

	select {
	case ch <- report:
	default:
		// Duplicate report: the first one already resolved the send.
	}
	return nil
}

// handleInbound decodes a received SMS and hands it to the registered
// handler. Messages without a timestamp get the arrival time.
func (b *Bridge) handleInbound(topic string, payload []byte) error {
	var msg inboundMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("unmarshalling inbound message: %w", err)
	}
	if msg.From == "" {
		return fmt.Errorf("inbound message on %s missing sender", topic)
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	b.handlerMu.RLock()
	handler := b.onInbound
	b.handlerMu.RUnlock()

	if handler == nil {
		b.logger.Warn("inbound message dropped: no handler registered",
			"from", msg.From)
		return nil
	}

	handler(msg.From, msg.Body, msg.Timestamp)
	return nil
}

// Close removes the bridge's subscriptions. The underlying MQTT client
// is shared and stays open.
func (b *Bridge) Close() error {
	var firstErr error
	for _, topic := range []string{b.topics.AllReports(), b.topics.Inbound()} {
		if err := b.client.Unsubscribe(topic); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
