// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	folderGlyphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	fileGlyphStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedGlyphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	edgeStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	labelStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// cell is one canvas position before styling.
type cell struct {
	r     rune
	style lipgloss.Style
}

// View renders the current layout into a width×height frame. Safe to
// call with no live instance (returns an empty placeholder).
func (g *ForceGraph) View(width, height int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if width <= 0 || height <= 0 {
		return ""
	}
	if len(g.nodes) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			labelStyle.Render("no graph"))
	}

	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}

	project := func(n *Node) (int, int) {
		x := (n.X+g.panX)*g.zoom + float64(width)/2 - g.zoom*float64(width)/2
		// halve vertical distance: terminal cells are tall
		y := (n.Y+g.panY)*g.zoom*0.5 + float64(height)/2 - g.zoom*float64(height)/4
		return int(math.Round(x)), int(math.Round(y))
	}

	plot := func(x, y int, r rune, style lipgloss.Style) {
		if x < 0 || x >= width || y < 0 || y >= height {
			return
		}
		grid[y][x] = cell{r: r, style: style}
	}

	// Edges first so nodes draw over them.
	for _, e := range g.edges {
		x0, y0 := project(g.nodes[e.From])
		x1, y1 := project(g.nodes[e.To])
		drawLine(x0, y0, x1, y1, func(x, y int) {
			plot(x, y, '·', edgeStyle)
		})
	}

	for i, n := range g.nodes {
		x, y := project(n)
		glyph, style := '●', fileGlyphStyle
		if n.IsDir {
			glyph, style = '◆', folderGlyphStyle
		}
		if i == g.selected {
			style = selectedGlyphStyle
		}
		plot(x, y, glyph, style)

		// Label the cursor node and the root.
		if i == g.selected || i == 0 {
			for j, r := range " " + n.Label {
				plot(x+1+j, y, r, labelStyle)
			}
		}
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := grid[y][x]
			if c.r == ' ' {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		if y < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// drawLine walks the Bresenham line from (x0,y0) to (x1,y1), excluding
// both endpoints so node glyphs stay visible.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	x, y := x0, y0
	for {
		if x == x1 && y == y1 {
			return
		}
		if !(x == x0 && y == y0) {
			plot(x, y)
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
