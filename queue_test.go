package crossroad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVehicleQueue_FIFO(t *testing.T) {
	q := NewVehicleQueue()

	assert.True(t, q.Push(3))
	assert.True(t, q.Push(1))
	assert.True(t, q.Push(2))
	assert.False(t, q.Push(1), "a vehicle is never queued twice")

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []VehicleID{3, 1, 2}, q.IDs())

	front, ok := q.Front()
	assert.True(t, ok)
	assert.Equal(t, VehicleID(3), front)
}

func TestVehicleQueue_RemoveAnyPosition(t *testing.T) {
	q := NewVehicleQueue()
	for _, id := range []VehicleID{1, 2, 3, 4} {
		q.Push(id)
	}

	assert.True(t, q.Remove(3))
	assert.False(t, q.Remove(3))
	assert.False(t, q.Contains(3))
	assert.Equal(t, []VehicleID{1, 2, 4}, q.IDs())

	assert.True(t, q.Remove(1))
	front, _ := q.Front()
	assert.Equal(t, VehicleID(2), front)
}

func TestVehicleQueue_Clear(t *testing.T) {
	q := NewVehicleQueue()
	q.Push(7)
	q.Push(8)

	q.Clear()

	assert.Equal(t, 0, q.Len())
	assert.Empty(t, q.IDs())
	_, ok := q.Front()
	assert.False(t, ok)
	assert.True(t, q.Push(7))
}
