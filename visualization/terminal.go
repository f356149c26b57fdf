package visualization

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/anggasct/crossroad"
)

const (
	lightRune   = '●'
	vehicleRune = '■'
)

// Theme holds the colours a TerminalRenderer paints with
type Theme struct {
	Background tcell.Color
	Road       tcell.Color
	Text       tcell.Color
	Status     tcell.Color
	Lights     map[crossroad.LightState]tcell.Color
}

// DefaultTheme returns a dark theme with conventional signal colours
func DefaultTheme() Theme {
	return Theme{
		Background: tcell.ColorDarkGreen,
		Road:       tcell.ColorDimGray,
		Text:       tcell.ColorWhite,
		Status:     tcell.ColorBlack,
		Lights: map[crossroad.LightState]tcell.Color{
			crossroad.Red:    tcell.ColorRed,
			crossroad.Green:  tcell.ColorLime,
			crossroad.Yellow: tcell.ColorYellow,
		},
	}
}

// TerminalRenderer draws snapshots onto a tcell screen. The canvas is scaled
// to the screen below a one-line status bar.
type TerminalRenderer struct {
	screen tcell.Screen
	theme  Theme
}

// NewTerminalRenderer creates a renderer for an initialised screen
func NewTerminalRenderer(screen tcell.Screen, theme ...Theme) *TerminalRenderer {
	t := DefaultTheme()
	if len(theme) > 0 {
		t = theme[0]
	}
	return &TerminalRenderer{screen: screen, theme: t}
}

// viewport maps canvas coordinates onto screen cells
type viewport struct {
	cols, rows     int
	scaleX, scaleY float64
}

func newViewport(layout crossroad.Layout, cols, rows int) viewport {
	return viewport{
		cols:   cols,
		rows:   rows,
		scaleX: layout.Width / float64(cols),
		scaleY: layout.Height / float64(rows-1),
	}
}

// cell returns the screen cell covering p, clamped to the drawing area
func (v viewport) cell(p crossroad.Point) (int, int) {
	x := int(math.Floor(p.X / v.scaleX))
	y := 1 + int(math.Floor(p.Y/v.scaleY))
	return clamp(x, 0, v.cols-1), clamp(y, 1, v.rows-1)
}

// center returns the canvas point in the middle of a screen cell
func (v viewport) center(x, y int) crossroad.Point {
	return crossroad.Point{
		X: (float64(x) + 0.5) * v.scaleX,
		Y: (float64(y-1) + 0.5) * v.scaleY,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func onRoad(layout crossroad.Layout, p crossroad.Point) bool {
	half := layout.RoadWidth / 2
	return math.Abs(p.X-layout.Width/2) <= half || math.Abs(p.Y-layout.Height/2) <= half
}

// vehicleColor converts a vehicle hue to the same hsl(h, 70%, 50%) colour
// browser renderers use
func vehicleColor(hue float64) tcell.Color {
	r, g, b := colorful.Hsl(hue, 0.7, 0.5).RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Draw paints one frame and shows it
func (r *TerminalRenderer) Draw(snap crossroad.Snapshot, layout crossroad.Layout) {
	s := r.screen
	cols, rows := s.Size()
	if cols < 1 || rows < 2 {
		return
	}
	vp := newViewport(layout, cols, rows)

	ground := tcell.StyleDefault.Background(r.theme.Background)
	road := tcell.StyleDefault.Background(r.theme.Road)
	for y := 1; y < rows; y++ {
		for x := 0; x < cols; x++ {
			style := ground
			if onRoad(layout, vp.center(x, y)) {
				style = road
			}
			s.SetContent(x, y, ' ', nil, style)
		}
	}

	for _, l := range snap.Lights {
		x, y := vp.cell(l.Position)
		s.SetContent(x, y, lightRune, nil, road.Foreground(r.theme.Lights[l.State]))
	}

	for _, v := range snap.Vehicles {
		x, y := vp.cell(v.Position)
		s.SetContent(x, y, vehicleRune, nil, road.Foreground(vehicleColor(v.Hue)))
	}

	r.drawStatus(snap, cols)
	s.Show()
}

func (r *TerminalRenderer) drawStatus(snap crossroad.Snapshot, cols int) {
	queues := snap.QueueLengths()
	line := fmt.Sprintf(" tick %d  %s  active %s  queues N:%d S:%d W:%d E:%d  [space] pause [s] stop [r] start [q] quit",
		snap.Tick, runState(snap), snap.ActiveGroup,
		queues[crossroad.North], queues[crossroad.South], queues[crossroad.West], queues[crossroad.East])

	style := tcell.StyleDefault.Foreground(r.theme.Status).Background(r.theme.Text)
	runes := []rune(line)
	for x := 0; x < cols; x++ {
		ch := ' '
		if x < len(runes) {
			ch = runes[x]
		}
		r.screen.SetContent(x, 0, ch, nil, style)
	}
}
