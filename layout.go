package crossroad

// Point is a coordinate in canvas space; y grows downward
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Axis is the coordinate a road's traffic travels along
type Axis int

const (
	// AxisX is horizontal travel, West and East roads
	AxisX Axis = iota
	// AxisY is vertical travel, North and South roads
	AxisY
)

// RoadGeometry describes how traffic on one road moves relative to its stop line.
// All per-road motion is derived from this table entry; no code branches on the
// road itself.
type RoadGeometry struct {
	Road Road
	Axis Axis
	// Sign is +1 when traffic moves toward increasing Axis coordinates
	Sign float64
	// Entry is the spawn point, lane offset included
	Entry Point
	// StopLine is the Axis coordinate of the intersection edge facing this road
	StopLine float64
	// Light is where a renderer should draw this road's signal head
	Light Point
}

// roadTable holds the fixed direction data; laneSide picks which half of the
// road a lane occupies so opposing traffic does not overlap.
var roadTable = [...]struct {
	axis     Axis
	sign     float64
	laneSide float64
}{
	North: {AxisY, 1, -1},
	South: {AxisY, -1, 1},
	West:  {AxisX, 1, 1},
	East:  {AxisX, -1, -1},
}

const (
	lightSetback = 20
	lightOutset  = 10
)

// Layout holds road and intersection extents computed from the canvas size
type Layout struct {
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	RoadWidth        float64 `json:"roadWidth"`
	IntersectionSize float64 `json:"intersectionSize"`

	roads [len(allRoads)]RoadGeometry
}

// NewLayout builds the geometry table for the configured canvas
func NewLayout(cfg Config) Layout {
	l := Layout{
		Width:            cfg.Width,
		Height:           cfg.Height,
		RoadWidth:        cfg.RoadWidth,
		IntersectionSize: cfg.IntersectionSize,
	}

	center := Point{X: cfg.Width / 2, Y: cfg.Height / 2}
	half := cfg.IntersectionSize / 2
	laneWidth := cfg.RoadWidth / 2
	laneOffset := laneWidth / 4

	for _, r := range allRoads {
		dir := roadTable[r]
		g := RoadGeometry{Road: r, Axis: dir.axis, Sign: dir.sign}

		along, across, extent := center.Y, center.X, cfg.Height
		if dir.axis == AxisX {
			along, across, extent = center.X, center.Y, cfg.Width
		}

		start := 0.0
		if dir.sign < 0 {
			start = extent
		}
		g.StopLine = along - dir.sign*half
		lightAlong := g.StopLine - dir.sign*lightSetback
		lightAcross := across + dir.laneSide*(laneWidth/2+lightOutset)

		g.Entry = g.point(start, across+dir.laneSide*laneOffset)
		g.Light = g.point(lightAlong, lightAcross)
		l.roads[r] = g
	}

	return l
}

// Geometry returns the table entry for a road
func (l Layout) Geometry(r Road) RoadGeometry {
	return l.roads[r]
}

// LightPosition returns where a renderer draws the light controlling r
func (l Layout) LightPosition(r Road) Point {
	return l.roads[r].Light
}

// Contains reports whether p lies inside the canvas grown by margin on every side
func (l Layout) Contains(p Point, margin float64) bool {
	return p.X > -margin && p.X < l.Width+margin &&
		p.Y > -margin && p.Y < l.Height+margin
}

// point assembles a Point from an along-axis and a cross-axis coordinate
func (g RoadGeometry) point(along, across float64) Point {
	if g.Axis == AxisX {
		return Point{X: along, Y: across}
	}
	return Point{X: across, Y: along}
}

// Coordinate projects p onto the road's travel axis
func (g RoadGeometry) Coordinate(p Point) float64 {
	if g.Axis == AxisX {
		return p.X
	}
	return p.Y
}

// DistanceToStopLine is positive before the stop line and negative past it
func (g RoadGeometry) DistanceToStopLine(p Point) float64 {
	return g.Sign * (g.StopLine - g.Coordinate(p))
}

// Advance moves p forward along the road by step
func (g RoadGeometry) Advance(p Point, step float64) Point {
	if g.Axis == AxisX {
		p.X += g.Sign * step
	} else {
		p.Y += g.Sign * step
	}
	return p
}
