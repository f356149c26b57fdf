package telemetry

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/crossroad"
)

type fakeNATS struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (c *fakeNATS) Publish(subject string, data []byte) error {
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return c.err
}

func TestNATSPublisher_Msgpack(t *testing.T) {
	conn := &fakeNATS{}
	pub := NewNATSPublisher(conn, "crossroad", 100, WithEncoding(EncodingMsgpack))

	sim, err := crossroad.NewBuilder().WithSeed(9).WithObserver(pub).Build()
	require.NoError(t, err)
	sim.Start()
	runID := sim.Snapshot().RunID
	for i := 0; i < 300; i++ {
		sim.Advance()
	}

	require.Len(t, conn.subjects, 3)
	assert.Equal(t, "crossroad."+runID+".queues", conn.subjects[0])

	var report QueueReport
	require.NoError(t, EncodingMsgpack.Unmarshal(conn.payloads[2], &report))
	assert.Equal(t, uint64(300), report.Tick)
	assert.Equal(t, crossroad.NorthSouth, report.ActiveGroup)
	assert.Equal(t, crossroad.Green, report.Roads[crossroad.South].State)
	assert.Equal(t, crossroad.Red, report.Roads[crossroad.East].State)
}

func TestNATSPublisher_IdleSubjectAndErrors(t *testing.T) {
	conn := &fakeNATS{err: errors.New("connection closed")}
	logger, hook := test.NewNullLogger()
	pub := NewNATSPublisher(conn, "lab", 1, WithLogger(logger))

	pub.OnTick(crossroad.Snapshot{Tick: 4})

	assert.Equal(t, []string{"lab.idle.queues"}, conn.subjects)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "lab.idle.queues", hook.LastEntry().Data["subject"])
}

func TestParseEncoding(t *testing.T) {
	e, err := ParseEncoding("msgpack")
	require.NoError(t, err)
	assert.Equal(t, EncodingMsgpack, e)

	_, err = ParseEncoding("xml")
	assert.Error(t, err)
}
