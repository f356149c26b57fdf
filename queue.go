package crossroad

import "container/list"

// VehicleQueue is a FIFO of vehicle IDs with constant-time removal by ID.
// It holds identifiers, never vehicles, so a destroyed vehicle cannot leave a
// dangling pointer behind.
type VehicleQueue struct {
	order *list.List
	index map[VehicleID]*list.Element
}

// NewVehicleQueue creates an empty queue
func NewVehicleQueue() *VehicleQueue {
	return &VehicleQueue{
		order: list.New(),
		index: make(map[VehicleID]*list.Element),
	}
}

// Push appends id. It returns false if id is already queued.
func (q *VehicleQueue) Push(id VehicleID) bool {
	if _, exists := q.index[id]; exists {
		return false
	}
	q.index[id] = q.order.PushBack(id)
	return true
}

// Remove drops id from any position. It returns false if id was not queued.
func (q *VehicleQueue) Remove(id VehicleID) bool {
	elem, exists := q.index[id]
	if !exists {
		return false
	}
	q.order.Remove(elem)
	delete(q.index, id)
	return true
}

// Contains reports whether id is queued
func (q *VehicleQueue) Contains(id VehicleID) bool {
	_, exists := q.index[id]
	return exists
}

// Len returns the number of queued vehicles
func (q *VehicleQueue) Len() int {
	return len(q.index)
}

// Front returns the longest-waiting vehicle
func (q *VehicleQueue) Front() (VehicleID, bool) {
	elem := q.order.Front()
	if elem == nil {
		return 0, false
	}
	return elem.Value.(VehicleID), true
}

// IDs returns the queued IDs in arrival order
func (q *VehicleQueue) IDs() []VehicleID {
	ids := make([]VehicleID, 0, q.order.Len())
	for e := q.order.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(VehicleID))
	}
	return ids
}

// Clear empties the queue
func (q *VehicleQueue) Clear() {
	q.order.Init()
	clear(q.index)
}
