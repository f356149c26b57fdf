package visualization

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/anggasct/crossroad"
)

// RenderStatus writes a plain-text status board: one header line, then a
// row per road with its light and queue
func RenderStatus(w io.Writer, snap crossroad.Snapshot) error {
	if _, err := fmt.Fprintf(w, "tick %d  %s  active %s  vehicles %d\n",
		snap.Tick, runState(snap), snap.ActiveGroup, len(snap.Vehicles)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROAD\tLIGHT\tTIMER\tQUEUE")
	for _, r := range crossroad.Roads() {
		l, ok := snap.Light(r)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d\n", r, l.State, l.Timer, l.Duration, l.QueueLength)
	}
	return tw.Flush()
}

func runState(snap crossroad.Snapshot) string {
	switch {
	case snap.Running && snap.Paused:
		return "paused"
	case snap.Running:
		return "running"
	default:
		return "stopped"
	}
}
