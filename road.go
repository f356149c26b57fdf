package crossroad

import "strings"

// Road identifies one of the four approaches to the intersection
type Road int

const (
	// North carries traffic entering from the top edge
	North Road = iota
	// South carries traffic entering from the bottom edge
	South
	// West carries traffic entering from the left edge
	West
	// East carries traffic entering from the right edge
	East
)

var allRoads = [...]Road{North, South, West, East}

// Roads returns every road in a stable order: North, South, West, East
func Roads() []Road {
	return append([]Road(nil), allRoads[:]...)
}

// String returns the single-letter road code
func (r Road) String() string {
	switch r {
	case North:
		return "N"
	case South:
		return "S"
	case West:
		return "W"
	case East:
		return "E"
	default:
		return "?"
	}
}

// Valid reports whether r is one of the four known roads
func (r Road) Valid() bool {
	return r >= North && r <= East
}

// ParseRoad accepts a road code ("N") or name ("north"), case-insensitive
func ParseRoad(s string) (Road, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	case "e", "east":
		return East, nil
	}
	return 0, NewUnknownRoadError(s)
}

// MarshalText implements encoding.TextMarshaler
func (r Road) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, NewUnknownRoadError(r.String())
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Road) UnmarshalText(text []byte) error {
	parsed, err := ParseRoad(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// SignalGroup is a pair of opposing roads that share a green phase
type SignalGroup [2]Road

var (
	// EastWest is the West/East signal group, active at start
	EastWest = SignalGroup{West, East}
	// NorthSouth is the North/South signal group
	NorthSouth = SignalGroup{North, South}
)

// GroupOf returns the signal group a road belongs to
func GroupOf(r Road) SignalGroup {
	if r == West || r == East {
		return EastWest
	}
	return NorthSouth
}

// Other returns the opposing signal group
func (g SignalGroup) Other() SignalGroup {
	if g == EastWest {
		return NorthSouth
	}
	return EastWest
}

// Contains reports whether r is part of the group
func (g SignalGroup) Contains(r Road) bool {
	return g[0] == r || g[1] == r
}

func (g SignalGroup) String() string {
	return g[0].String() + g[1].String()
}

// MarshalText implements encoding.TextMarshaler
func (g SignalGroup) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *SignalGroup) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "WE", "EW":
		*g = EastWest
	case "NS", "SN":
		*g = NorthSouth
	default:
		return NewUnknownRoadError(string(text))
	}
	return nil
}
