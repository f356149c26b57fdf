// Package telemetry publishes per-road queue reports to message brokers
package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/anggasct/crossroad"
)

// LightReport is the state of one approach at report time
type LightReport struct {
	State       crossroad.LightState `json:"state" msgpack:"state"`
	Timer       int                  `json:"timer" msgpack:"timer"`
	QueueLength int                  `json:"queueLength" msgpack:"queueLength"`
}

// QueueReport is the payload published on the queues topic
type QueueReport struct {
	RunID       string                         `json:"runId" msgpack:"runId"`
	Tick        uint64                         `json:"tick" msgpack:"tick"`
	ActiveGroup crossroad.SignalGroup          `json:"activeGroup" msgpack:"activeGroup"`
	Vehicles    int                            `json:"vehicles" msgpack:"vehicles"`
	Roads       map[crossroad.Road]LightReport `json:"roads" msgpack:"roads"`
}

// NewQueueReport summarises a snapshot
func NewQueueReport(snap crossroad.Snapshot) QueueReport {
	report := QueueReport{
		RunID:       snap.RunID,
		Tick:        snap.Tick,
		ActiveGroup: snap.ActiveGroup,
		Vehicles:    len(snap.Vehicles),
		Roads:       make(map[crossroad.Road]LightReport, len(snap.Lights)),
	}
	for _, l := range snap.Lights {
		report.Roads[l.Road] = LightReport{
			State:       l.State,
			Timer:       l.Timer,
			QueueLength: l.QueueLength,
		}
	}
	return report
}

// Encoding selects the wire format of published reports
type Encoding string

const (
	// EncodingJSON sends reports as JSON objects
	EncodingJSON Encoding = "json"
	// EncodingMsgpack sends reports as MessagePack maps
	EncodingMsgpack Encoding = "msgpack"
)

// ParseEncoding accepts "json" or "msgpack"
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(s); e {
	case EncodingJSON, EncodingMsgpack:
		return e, nil
	}
	return "", fmt.Errorf("unknown report encoding %q", s)
}

// Marshal encodes v in this encoding
func (e Encoding) Marshal(v interface{}) ([]byte, error) {
	if e == EncodingMsgpack {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}

// Unmarshal decodes data in this encoding
func (e Encoding) Unmarshal(data []byte, v interface{}) error {
	if e == EncodingMsgpack {
		return msgpack.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// settings are shared by every publisher
type settings struct {
	every    uint64
	qos      byte
	encoding Encoding
	logger   logrus.FieldLogger
}

// IdleRun names the run segment of reports sent outside a started run
const IdleRun = "idle"

func runSegment(runID string) string {
	if runID == "" {
		return IdleRun
	}
	return runID
}

func newSettings(every uint64, opts []Option) settings {
	if every == 0 {
		every = 1
	}
	s := settings{
		every:    every,
		encoding: EncodingJSON,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// due reports whether snap falls on a reporting tick
func (s settings) due(snap crossroad.Snapshot) bool {
	return snap.Tick%s.every == 0
}

// encode builds and serialises the report for snap
func (s settings) encode(snap crossroad.Snapshot) ([]byte, bool) {
	payload, err := s.encoding.Marshal(NewQueueReport(snap))
	if err != nil {
		s.logger.WithError(err).Error("encoding queue report")
		return nil, false
	}
	return payload, true
}

// Option configures a publisher
type Option func(*settings)

// WithQoS sets the MQTT quality of service level
func WithQoS(qos byte) Option {
	return func(s *settings) { s.qos = qos }
}

// WithEncoding sets the payload format
func WithEncoding(e Encoding) Option {
	return func(s *settings) {
		if e != "" {
			s.encoding = e
		}
	}
}

// WithLogger sets the logger used for publish failures
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}
