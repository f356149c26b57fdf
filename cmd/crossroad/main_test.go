package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/crossroad"
	"github.com/anggasct/crossroad/visualization"
)

func TestWriteSignalPlan(t *testing.T) {
	generator := visualization.NewDOTGenerator(crossroad.DefaultConfig())

	t.Run("DOT by default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.dot")
		require.NoError(t, writeSignalPlan(generator, path))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(content), "digraph SignalPlan {"))
	})

	t.Run("SVG for an svg path", func(t *testing.T) {
		if _, err := exec.LookPath("dot"); err != nil {
			t.Skip("Graphviz dot is not installed")
		}
		path := filepath.Join(t.TempDir(), "plan.SVG")
		require.NoError(t, writeSignalPlan(generator, path))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "<svg")
	})
}
