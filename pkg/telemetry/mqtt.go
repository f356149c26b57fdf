package telemetry

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/anggasct/crossroad"
)

// Publisher is the subset of mqtt.Client used for reporting
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Connect dials an MQTT broker and returns a connected client
func Connect(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(timeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connecting to %s: timed out after %s", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", broker, err)
	}
	return client, nil
}

// MQTTPublisher is an observer that reports queue lengths every few ticks
type MQTTPublisher struct {
	crossroad.BaseObserver
	settings

	client   Publisher
	prefix   string
	timeout  time.Duration
	inflight sync.WaitGroup
}

// NewMQTTPublisher reports to "<prefix>/<runID>/queues" once every ticks
func NewMQTTPublisher(client Publisher, prefix string, every uint64, opts ...Option) *MQTTPublisher {
	return &MQTTPublisher{
		settings: newSettings(every, opts),
		client:   client,
		prefix:   prefix,
		timeout:  5 * time.Second,
	}
}

// Topic returns the queues topic for a run; ticks outside a started run
// report under IdleRun
func (p *MQTTPublisher) Topic(runID string) string {
	return fmt.Sprintf("%s/%s/queues", p.prefix, runSegment(runID))
}

// OnTick publishes a QueueReport on every reporting tick
func (p *MQTTPublisher) OnTick(snap crossroad.Snapshot) {
	if !p.due(snap) {
		return
	}
	payload, ok := p.encode(snap)
	if !ok {
		return
	}

	topic := p.Topic(snap.RunID)
	token := p.client.Publish(topic, p.qos, false, payload)

	// the tick holds the simulation lock, so delivery is awaited elsewhere
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		if !token.WaitTimeout(p.timeout) {
			p.logger.WithField("topic", topic).Warn("queue report publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			p.logger.WithError(err).WithField("topic", topic).Warn("queue report publish failed")
		}
	}()
}

// Flush waits for every outstanding publish to settle
func (p *MQTTPublisher) Flush() {
	p.inflight.Wait()
}
