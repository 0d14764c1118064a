// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package viz

import "math"

// Simulation tuning. Terminal cells are roughly twice as tall as wide,
// so forces act in world coordinates and the canvas corrects the aspect
// ratio at draw time.
const (
	repulsion     = 400.0
	springLength  = 8.0
	springStiff   = 0.06
	centerGravity = 0.015
	damping       = 0.85

	// settleThreshold is the total kinetic energy below which the
	// simulation stops ticking on its own.
	settleThreshold = 0.05
)

// seedPositions places nodes deterministically on depth rings around
// the viewport center, golden-angle spaced so siblings start apart.
func seedPositions(nodes []*Node, width, height float64) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	cx, cy := width/2, height/2
	golden := math.Pi * (3 - math.Sqrt(5))

	for i, n := range nodes {
		if i == 0 {
			n.X, n.Y = cx, cy
			continue
		}
		angle := float64(i) * golden
		radius := 4.0 + 5.0*float64(n.Depth)
		n.X = cx + radius*math.Cos(angle)
		n.Y = cy + radius*math.Sin(angle)
	}
}

// step advances the physics one tick: pairwise repulsion, springs along
// edges, gentle gravity toward the centroid, velocity damping. Returns
// true once total kinetic energy drops below the settle threshold.
func step(nodes []*Node, edges []Edge) bool {
	if len(nodes) == 0 {
		return true
	}

	fx := make([]float64, len(nodes))
	fy := make([]float64, len(nodes))

	// Repulsion between every pair.
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			dx := nodes[i].X - nodes[j].X
			dy := nodes[i].Y - nodes[j].Y
			d2 := dx*dx + dy*dy
			if d2 < 0.01 {
				d2 = 0.01
				dx, dy = 0.1, 0.1
			}
			f := repulsion / d2
			d := math.Sqrt(d2)
			fx[i] += f * dx / d
			fy[i] += f * dy / d
			fx[j] -= f * dx / d
			fy[j] -= f * dy / d
		}
	}

	// Springs along parent→child edges.
	for _, e := range edges {
		a, b := nodes[e.From], nodes[e.To]
		dx := b.X - a.X
		dy := b.Y - a.Y
		d := math.Hypot(dx, dy)
		if d < 0.01 {
			continue
		}
		f := springStiff * (d - springLength)
		fx[e.From] += f * dx / d
		fy[e.From] += f * dy / d
		fx[e.To] -= f * dx / d
		fy[e.To] -= f * dy / d
	}

	// Gravity toward the centroid keeps disconnected drift in check.
	var cx, cy float64
	for _, n := range nodes {
		cx += n.X
		cy += n.Y
	}
	cx /= float64(len(nodes))
	cy /= float64(len(nodes))
	for i, n := range nodes {
		fx[i] += (cx - n.X) * centerGravity
		fy[i] += (cy - n.Y) * centerGravity
	}

	var energy float64
	for i, n := range nodes {
		n.VX = (n.VX + fx[i]) * damping
		n.VY = (n.VY + fy[i]) * damping
		n.X += n.VX
		n.Y += n.VY
		energy += n.VX*n.VX + n.VY*n.VY
	}
	return energy < settleThreshold
}
