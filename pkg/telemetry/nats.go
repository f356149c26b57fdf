package telemetry

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/anggasct/crossroad"
)

// NATSConn is the subset of *nats.Conn used for reporting
type NATSConn interface {
	Publish(subject string, data []byte) error
}

// ConnectNATS dials a NATS server; an empty url uses nats.DefaultURL
func ConnectNATS(url, name string, timeout time.Duration) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url, nats.Name(name), nats.Timeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return nc, nil
}

// NATSPublisher is an observer that reports queue lengths to a NATS subject
type NATSPublisher struct {
	crossroad.BaseObserver
	settings

	conn   NATSConn
	prefix string
}

// NewNATSPublisher reports to "<prefix>.<runID>.queues" once every ticks
func NewNATSPublisher(conn NATSConn, prefix string, every uint64, opts ...Option) *NATSPublisher {
	return &NATSPublisher{
		settings: newSettings(every, opts),
		conn:     conn,
		prefix:   prefix,
	}
}

// Subject returns the queues subject for a run. Tokens may not be empty, so
// ticks outside a started run report under IdleRun.
func (p *NATSPublisher) Subject(runID string) string {
	return fmt.Sprintf("%s.%s.queues", p.prefix, runSegment(runID))
}

// OnTick publishes a QueueReport on every reporting tick. nats buffers the
// write, so this does not block on the network.
func (p *NATSPublisher) OnTick(snap crossroad.Snapshot) {
	if !p.due(snap) {
		return
	}
	payload, ok := p.encode(snap)
	if !ok {
		return
	}

	subject := p.Subject(snap.RunID)
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("queue report publish failed")
	}
}
