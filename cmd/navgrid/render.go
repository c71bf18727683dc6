package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pathgrid/navgrid"
)

const (
	glyphBlocked  = '#'
	glyphWalkable = '.'
	glyphPath     = '*'
	glyphStart    = 'S'
	glyphGoal     = 'G'
)

// renderGrid draws the grid one character per cell, top row first, with the
// path and its endpoints overlaid.
func renderGrid(out io.Writer, g *navgrid.Grid, path []cp.Vector) error {
	if g == nil {
		_, err := fmt.Fprintln(out, "(no grid)")
		return err
	}

	rows := make([][]byte, g.Height())
	for y := range rows {
		row := make([]byte, g.Width())
		for x := range row {
			if g.Walkable(navgrid.Cell{X: x, Y: y}) {
				row[x] = glyphWalkable
			} else {
				row[x] = glyphBlocked
			}
		}
		rows[y] = row
	}

	mark := func(p cp.Vector, glyph byte) {
		c := g.WorldToCell(p)
		if g.InBounds(c) {
			rows[c.Y][c.X] = glyph
		}
	}
	for _, p := range path {
		mark(p, glyphPath)
	}
	if len(path) > 0 {
		mark(path[0], glyphStart)
		mark(path[len(path)-1], glyphGoal)
	}

	var b strings.Builder
	for _, row := range rows {
		b.Write(row)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func renderStats(out io.Writer, st navgrid.Stats) error {
	_, err := fmt.Fprintf(out, "builds=%d cells=%d walkable=%d bounds=[%.2f,%.2f .. %.2f,%.2f] detected=%t took=%s\n",
		st.Builds, st.Cells, st.Walkable,
		st.Bounds.L, st.Bounds.B, st.Bounds.R, st.Bounds.T,
		st.Detected, st.LastDuration)
	return err
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
