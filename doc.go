// Package crossroad simulates vehicle flow through a single four-way
// signalized intersection in discrete ticks.
//
// Each road has a traffic light that cycles green, yellow and red. A
// Controller pairs the lights into two signal groups, West/East and
// North/South, and keeps exactly one group active; a group's green phase is
// doubled when its queue grows past a threshold. Vehicles travel at constant
// speed, stop instantly at a red or yellow light and wait in that light's
// FIFO queue until it turns green.
//
// A Simulation owns all of this state and exposes it to renderers through
// Snapshot, while accepting Start, TogglePause and Stop from a controller.
package crossroad
