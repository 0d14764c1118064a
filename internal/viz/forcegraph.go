// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package viz owns the force-directed structure graph: its lifecycle,
// its simulation loop, and its selection observers.
//
// # Description
//
// At most one graph instance is live at a time. The simulation runs its
// own tick goroutine, independent of the state-store notification
// cycle, and must be stopped (Cleanup) before the frame region that
// shows it is replaced, teardown before replace. Selecting a file node
// updates the state store through the silent path and notifies
// registered observers directly, so the running simulation is never
// destroyed by an incidental full re-render.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use; the tick goroutine
// and the render loop share state under one mutex.
package viz

import (
	"log/slog"
	"sync"
	"time"

	"github.com/reposage/reposage/internal/githost"
	"github.com/reposage/reposage/internal/store"
)

const (
	// MaxNodes bounds the graph size; tree nodes beyond the bound are
	// dropped, not elided.
	MaxNodes = 80

	// MaxDepth bounds traversal depth from the root.
	MaxDepth = 4

	tickInterval = 50 * time.Millisecond
)

// Node is one laid-out graph node.
type Node struct {
	Path  string
	Label string
	IsDir bool
	Depth int

	// position and velocity in world coordinates
	X, Y   float64
	VX, VY float64
}

// Edge connects a parent to one of its children, by node index.
// Exactly one edge exists per parent→child relationship; none are
// synthesized between non-adjacent nodes.
type Edge struct {
	From, To int
}

// ForceGraph owns the single live layout instance.
type ForceGraph struct {
	store *store.Store
	log   *slog.Logger

	mu       sync.Mutex
	nodes    []*Node
	edges    []Edge
	byPath   map[string]*githost.FileNode
	selected int
	panX     float64
	panY     float64
	zoom     float64

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	onSelect []func(path string)
	onFrame  func()
}

// New creates a controller with no live instance.
func New(st *store.Store, logger *slog.Logger) *ForceGraph {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForceGraph{store: st, log: logger, selected: -1, zoom: 1}
}

// OnFileSelected registers an observer for graph-driven file selection.
// This is the out-of-band channel that bridges graph clicks to the
// detail panel without going through the subscriber list.
func (g *ForceGraph) OnFileSelected(fn func(path string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onSelect = append(g.onSelect, fn)
}

// OnFrame registers the single frame-tick callback; the host uses it to
// repaint the graph region outside the state-store cycle.
func (g *ForceGraph) OnFrame(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onFrame = fn
}

// Initialize tears down any existing instance, converts the tree into a
// bounded node/edge list, and starts the simulation loop. A tree with
// only a root yields one node and zero edges.
func (g *ForceGraph) Initialize(tree *githost.FileNode, width, height int) {
	g.Cleanup()
	if tree == nil {
		return
	}

	nodes, edges, byPath := flatten(tree)
	seedPositions(nodes, float64(width), float64(height))

	g.mu.Lock()
	g.nodes = nodes
	g.edges = edges
	g.byPath = byPath
	g.selected = 0
	g.panX, g.panY = 0, 0
	g.zoom = 1
	g.running = true
	g.stopCh = make(chan struct{})
	g.doneCh = make(chan struct{})
	stopCh, doneCh := g.stopCh, g.doneCh
	g.mu.Unlock()

	g.log.Debug("graph initialized", "nodes", len(nodes), "edges", len(edges))
	go g.run(stopCh, doneCh)
}

// Cleanup stops the simulation and drops all layout state. Idempotent:
// safe to call twice in a row or when nothing is running.
func (g *ForceGraph) Cleanup() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	stopCh, doneCh := g.stopCh, g.doneCh
	g.mu.Unlock()

	close(stopCh)
	<-doneCh

	g.mu.Lock()
	g.nodes = nil
	g.edges = nil
	g.byPath = nil
	g.selected = -1
	g.mu.Unlock()
	g.log.Debug("graph cleaned up")
}

// Running reports whether a simulation loop is live.
func (g *ForceGraph) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// NodeCount returns the number of laid-out nodes.
func (g *ForceGraph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// EdgeCount returns the number of parent→child edges.
func (g *ForceGraph) EdgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}

// CycleSelection moves the node cursor by delta, wrapping. When the
// newly selected node is a file, the state store is updated silently
// and observers fire; folders move the cursor only.
func (g *ForceGraph) CycleSelection(delta int) {
	g.mu.Lock()
	if len(g.nodes) == 0 {
		g.mu.Unlock()
		return
	}
	n := len(g.nodes)
	g.selected = ((g.selected+delta)%n + n) % n
	node := g.nodes[g.selected]
	fileNode := g.byPath[node.Path]
	observers := make([]func(string), len(g.onSelect))
	copy(observers, g.onSelect)
	g.mu.Unlock()

	if fileNode != nil && fileNode.IsFile() {
		// Silent: a full re-render here would destroy the very
		// simulation the user is navigating.
		g.store.SelectFileSilent(fileNode)
		for _, fn := range observers {
			fn(fileNode.Path)
		}
	}
}

// SelectedPath returns the cursor node's path, or "" when none.
func (g *ForceGraph) SelectedPath() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selected < 0 || g.selected >= len(g.nodes) {
		return ""
	}
	return g.nodes[g.selected].Path
}

// Pan shifts the viewport in screen cells.
func (g *ForceGraph) Pan(dx, dy float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.panX += dx
	g.panY += dy
}

// Zoom scales the viewport by factor, clamped to a sane range.
func (g *ForceGraph) Zoom(factor float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.zoom *= factor
	if g.zoom < 0.25 {
		g.zoom = 0.25
	}
	if g.zoom > 4 {
		g.zoom = 4
	}
}

// run is the simulation loop. It computes against shared state under
// the mutex and reports each frame through the registered callback.
func (g *ForceGraph) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			g.mu.Lock()
			settled := step(g.nodes, g.edges)
			frame := g.onFrame
			g.mu.Unlock()

			if frame != nil {
				frame()
			}
			if settled {
				return
			}
		}
	}
}

// flatten traverses the tree breadth-first, bounded by MaxNodes and
// MaxDepth. A child is only included when its parent was, so the result
// stays connected and carries exactly len(nodes)-1 edges.
func flatten(root *githost.FileNode) ([]*Node, []Edge, map[string]*githost.FileNode) {
	type queued struct {
		node   *githost.FileNode
		parent int
		depth  int
	}

	var (
		nodes  []*Node
		edges  []Edge
		byPath = make(map[string]*githost.FileNode)
	)
	queue := []queued{{node: root, parent: -1, depth: 0}}

	for len(queue) > 0 && len(nodes) < MaxNodes {
		q := queue[0]
		queue = queue[1:]

		idx := len(nodes)
		nodes = append(nodes, &Node{
			Path:  q.node.Path,
			Label: q.node.Name,
			IsDir: q.node.IsFolder(),
			Depth: q.depth,
		})
		byPath[q.node.Path] = q.node
		if q.parent >= 0 {
			edges = append(edges, Edge{From: q.parent, To: idx})
		}

		if q.depth >= MaxDepth {
			continue
		}
		for _, c := range q.node.Children {
			queue = append(queue, queued{node: c, parent: idx, depth: q.depth + 1})
		}
	}
	return nodes, edges, byPath
}
