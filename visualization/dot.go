// Package visualization renders the signal plan and live intersection state
// for humans: Graphviz DOT for the phase cycle, plain text for a status board.
package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/crossroad"
)

// DOTGenerator generates Graphviz DOT representations of the signal plan
type DOTGenerator struct {
	cfg      crossroad.Config
	options  DOTOptions
	snapshot *crossroad.Snapshot
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowTriggers     bool
	ShowDurations    bool
	ShowLightMachine bool
	RankDirection    string // "TB", "LR", "BT", "RL"
	NodeShape        string
	CurrentColor     string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowTriggers:     true,
		ShowDurations:    true,
		ShowLightMachine: true,
		RankDirection:    "LR",
		NodeShape:        "box",
		CurrentColor:     "gold",
	}
}

// NewDOTGenerator creates a DOT generator for the signal plan described by cfg
func NewDOTGenerator(cfg crossroad.Config, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		cfg:     cfg,
		options: opts,
	}
}

// WithSnapshot highlights the phase the snapshot is in
func (g *DOTGenerator) WithSnapshot(snap crossroad.Snapshot) *DOTGenerator {
	g.snapshot = &snap
	return g
}

// phase is one node of the intersection cycle
type phase struct {
	group crossroad.SignalGroup
	state crossroad.LightState
}

func (p phase) id() string {
	return fmt.Sprintf("%s_%s", p.group, p.state)
}

// cycle lists the phases in the order the controller visits them
func cycle() []phase {
	return []phase{
		{crossroad.EastWest, crossroad.Green},
		{crossroad.EastWest, crossroad.Yellow},
		{crossroad.NorthSouth, crossroad.Green},
		{crossroad.NorthSouth, crossroad.Yellow},
	}
}

// Generate creates a DOT representation of the signal plan
func (g *DOTGenerator) Generate() (string, error) {
	if err := g.cfg.Validate(); err != nil {
		return "", fmt.Errorf("failed to generate signal plan: %w", err)
	}

	var dot strings.Builder

	dot.WriteString("digraph SignalPlan {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generatePhases(&dot)
	g.generateCycle(&dot)
	if g.options.ShowLightMachine {
		g.generateLightMachine(&dot)
	}

	dot.WriteString("}\n")

	return dot.String(), nil
}

// currentPhase reports the phase of the highlighted snapshot, if any
func (g *DOTGenerator) currentPhase() (phase, bool) {
	if g.snapshot == nil {
		return phase{}, false
	}
	active := g.snapshot.ActiveGroup
	for _, r := range active {
		if l, ok := g.snapshot.Light(r); ok && l.State == crossroad.Green {
			return phase{active, crossroad.Green}, true
		}
	}
	return phase{active, crossroad.Yellow}, true
}

func (g *DOTGenerator) generatePhases(dot *strings.Builder) {
	current, highlight := g.currentPhase()

	dot.WriteString("  // Phases\n")
	for _, p := range cycle() {
		fillColor := "lightyellow"
		if p.state == crossroad.Green {
			fillColor = "lightgreen"
		}
		label := fmt.Sprintf("%s %s\\n%s red", p.group, p.state, p.group.Other())
		if highlight && p == current {
			fillColor = g.options.CurrentColor
			label += fmt.Sprintf("\\n(tick %d)", g.snapshot.Tick)
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" [style=\"filled\" fillcolor=%s label=\"%s\"];\n",
			p.id(), fillColor, label))
	}
	dot.WriteString("\n")
}

func (g *DOTGenerator) generateCycle(dot *strings.Builder) {
	phases := cycle()

	dot.WriteString("  // Cycle\n")
	for i, p := range phases {
		next := phases[(i+1)%len(phases)]

		var parts []string
		if g.options.ShowTriggers {
			trigger := crossroad.TriggerTimerExpired
			if next.state == crossroad.Green {
				trigger = crossroad.TriggerGroupArmed
			}
			parts = append(parts, string(trigger))
		}
		if g.options.ShowDurations {
			parts = append(parts, g.durationLabel(p))
		}

		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\"", p.id(), next.id()))
		if len(parts) > 0 {
			dot.WriteString(fmt.Sprintf(" [label=\"%s\"]", strings.Join(parts, "\\n")))
		}
		dot.WriteString(";\n")
	}
	dot.WriteString("\n")
}

func (g *DOTGenerator) durationLabel(p phase) string {
	if p.state == crossroad.Yellow {
		return fmt.Sprintf("after %d ticks", g.cfg.YellowTicks)
	}
	return fmt.Sprintf("after %d ticks\\n(%d if queue > %d)",
		g.cfg.BaseGreenTicks, 2*g.cfg.BaseGreenTicks, g.cfg.QueueThreshold)
}

// generateLightMachine draws the three-state machine every light follows
func (g *DOTGenerator) generateLightMachine(dot *strings.Builder) {
	dot.WriteString("  // Light\n")
	dot.WriteString("  subgraph cluster_light {\n")
	dot.WriteString("    label=\"single light\";\n")
	dot.WriteString("    style=rounded;\n")
	for _, rule := range crossroad.LightTransitions() {
		edge := fmt.Sprintf("    \"light_%s\" -> \"light_%s\"", rule.From, rule.To)
		if g.options.ShowTriggers {
			edge += fmt.Sprintf(" [label=\"%s\"]", rule.Trigger)
		}
		dot.WriteString(edge + ";\n")
	}
	dot.WriteString("  }\n")
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG renders the plan through the Graphviz dot command
func (g *DOTGenerator) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}
