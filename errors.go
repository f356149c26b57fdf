package crossroad

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the simulation
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Configuration value is out of range
	ErrCodeInvalidConfiguration
	// Road identifier is not one of N, S, W, E
	ErrCodeUnknownRoad
	// Light is in none of red, green or yellow
	ErrCodeUndefinedLightState
	// Light timer is negative, or non-zero on a red light
	ErrCodeInvalidTimer
	// Both signal groups show a non-red light, or neither does
	ErrCodeSignalConflict
	// A vehicle's stopped flag disagrees with queue membership
	ErrCodeQueueMismatch
	// A queue references a vehicle that no longer exists
	ErrCodeDanglingQueueEntry
	// An observer panicked while handling a notification
	ErrCodeObserverPanic
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case ErrCodeUnknownRoad:
		return "unknown_road"
	case ErrCodeUndefinedLightState:
		return "undefined_light_state"
	case ErrCodeInvalidTimer:
		return "invalid_timer"
	case ErrCodeSignalConflict:
		return "signal_conflict"
	case ErrCodeQueueMismatch:
		return "queue_mismatch"
	case ErrCodeDanglingQueueEntry:
		return "dangling_queue_entry"
	case ErrCodeObserverPanic:
		return "observer_panic"
	default:
		return "unknown"
	}
}

// ConfigurationError represents a rejected configuration value
type ConfigurationError struct {
	Field string
	Issue string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, issue string) *ConfigurationError {
	return &ConfigurationError{
		Field: field,
		Issue: issue,
	}
}

// RoadError represents an unparseable road identifier
type RoadError struct {
	Value string
}

func (e *RoadError) Error() string {
	return fmt.Sprintf("unknown road %q", e.Value)
}

// NewUnknownRoadError creates a new unknown road error
func NewUnknownRoadError(value string) *RoadError {
	return &RoadError{Value: value}
}

// InvariantError reports simulation state that should be impossible
type InvariantError struct {
	Code    ErrorCode
	Road    *Road
	Vehicle *VehicleID
	Message string
}

func (e *InvariantError) Error() string {
	subject := ""
	if e.Road != nil {
		subject += " road=" + e.Road.String()
	}
	if e.Vehicle != nil {
		subject += fmt.Sprintf(" vehicle=%d", *e.Vehicle)
	}
	return fmt.Sprintf("invariant violated [%s%s]: %s", e.Code, subject, e.Message)
}

// NewInvariantError creates a new invariant error
func NewInvariantError(code ErrorCode, message string) *InvariantError {
	return &InvariantError{
		Code:    code,
		Message: message,
	}
}

// ForRoad attaches the road the violation was found on
func (e *InvariantError) ForRoad(r Road) *InvariantError {
	e.Road = &r
	return e
}

// ForVehicle attaches the vehicle the violation concerns
func (e *InvariantError) ForVehicle(id VehicleID) *InvariantError {
	e.Vehicle = &id
	return e
}

// SimulationError represents a failure while running a simulation operation
type SimulationError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation error in %s: %s", e.Operation, e.Message)
}

// NewSimulationError creates a new simulation error with custom values
func NewSimulationError(code ErrorCode, operation, message string) *SimulationError {
	return &SimulationError{
		Code:      code,
		Operation: operation,
		Message:   message,
	}
}

// NewObserverPanicError wraps a value recovered from an observer hook
func NewObserverPanicError(hook string, recovered interface{}) *SimulationError {
	return NewSimulationError(ErrCodeObserverPanic, hook, fmt.Sprintf("observer panic: %v", recovered))
}

// IsConfigurationError checks if err is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsInvariantError checks if err is or wraps an InvariantError
func IsInvariantError(err error) bool {
	var target *InvariantError
	return errors.As(err, &target)
}

// IsRoadError checks if err is or wraps a RoadError
func IsRoadError(err error) bool {
	var target *RoadError
	return errors.As(err, &target)
}

// IsSimulationError checks if err is or wraps a SimulationError
func IsSimulationError(err error) bool {
	var target *SimulationError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		invErr  *InvariantError
		cfgErr  *ConfigurationError
		roadErr *RoadError
		simErr  *SimulationError
	)
	switch {
	case errors.As(err, &invErr):
		return invErr.Code
	case errors.As(err, &cfgErr):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &roadErr):
		return ErrCodeUnknownRoad
	case errors.As(err, &simErr):
		return simErr.Code
	default:
		return ErrCodeNone
	}
}
