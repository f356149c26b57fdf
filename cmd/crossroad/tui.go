package main

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/anggasct/crossroad"
	"github.com/anggasct/crossroad/visualization"
)

// runTerminal draws the simulation in the terminal and maps keys onto the
// lifecycle commands until q, Esc or Ctrl-C
func runTerminal(ctx context.Context, sim *crossroad.Simulation) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	renderer := visualization.NewTerminalRenderer(screen)
	ticker := time.NewTicker(sim.Config().TickRate)
	defer ticker.Stop()

	sim.Start()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if !handleKey(ev, sim) {
					return nil
				}
			}
		case <-ticker.C:
			sim.Advance()
			renderer.Draw(sim.Snapshot(), sim.Layout())
		}
	}
}

// handleKey applies a key press and returns false when the user quits
func handleKey(ev *tcell.EventKey, sim *crossroad.Simulation) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			sim.TogglePause()
		case 's':
			sim.Stop()
		case 'r':
			sim.Start()
		}
	}
	return true
}
