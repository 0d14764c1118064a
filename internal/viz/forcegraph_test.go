// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package viz

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reposage/reposage/internal/githost"
	"github.com/reposage/reposage/internal/store"
)

func folder(name, path string, children ...*githost.FileNode) *githost.FileNode {
	if children == nil {
		children = []*githost.FileNode{}
	}
	return &githost.FileNode{Name: name, Path: path, Type: githost.NodeFolder, Children: children}
}

func file(name, path string) *githost.FileNode {
	return &githost.FileNode{Name: name, Path: path, Type: githost.NodeFile}
}

func smallTree() *githost.FileNode {
	return folder("repo", "",
		folder("src", "src",
			file("main.go", "src/main.go"),
			file("util.go", "src/util.go"),
		),
		file("README.md", "README.md"),
	)
}

// wideTree returns a root with n direct children.
func wideTree(n int) *githost.FileNode {
	root := folder("repo", "")
	for i := 0; i < n; i++ {
		root.Children = append(root.Children, file(
			fmt.Sprintf("f%d.go", i), fmt.Sprintf("f%d.go", i)))
	}
	return root
}

func TestFlattenEdgesMatchTree(t *testing.T) {
	nodes, edges, byPath := flatten(smallTree())

	assert.Len(t, nodes, 5)
	assert.Len(t, edges, 4, "connected tree: edges == nodes-1")
	assert.Contains(t, byPath, "src/main.go")

	// Every edge is a parent→child relationship from the source tree.
	for _, e := range edges {
		parent := byPath[nodes[e.From].Path]
		child := nodes[e.To].Path
		found := false
		for _, c := range parent.Children {
			if c.Path == child {
				found = true
			}
		}
		assert.True(t, found, "edge %s→%s has no tree relationship", nodes[e.From].Path, child)
	}
}

func TestFlattenBoundedByMaxNodes(t *testing.T) {
	nodes, edges, _ := flatten(wideTree(MaxNodes * 3))

	assert.Len(t, nodes, MaxNodes, "nodes beyond the bound are dropped")
	assert.Len(t, edges, MaxNodes-1, "still exactly nodes-1 edges")
}

func TestFlattenBoundedByMaxDepth(t *testing.T) {
	// Chain deeper than MaxDepth.
	leaf := file("deep.go", "a/b/c/d/e/deep.go")
	tree := folder("repo", "",
		folder("a", "a",
			folder("b", "a/b",
				folder("c", "a/b/c",
					folder("d", "a/b/c/d",
						folder("e", "a/b/c/d/e", leaf))))))

	nodes, _, byPath := flatten(tree)
	for _, n := range nodes {
		assert.LessOrEqual(t, n.Depth, MaxDepth)
	}
	assert.NotContains(t, byPath, "a/b/c/d/e/deep.go")
}

func TestSingleRootTree(t *testing.T) {
	g := New(store.New(), nil)
	g.Initialize(folder("empty", ""), 80, 24)
	defer g.Cleanup()

	assert.Equal(t, 1, g.NodeCount())
	assert.Zero(t, g.EdgeCount())
	assert.NotEmpty(t, g.View(40, 10))
}

func TestCleanupIsIdempotent(t *testing.T) {
	g := New(store.New(), nil)

	g.Cleanup() // nothing running: no-op

	g.Initialize(smallTree(), 80, 24)
	require.True(t, g.Running())

	g.Cleanup()
	g.Cleanup() // twice in a row
	assert.False(t, g.Running())
	assert.Zero(t, g.NodeCount())
}

func TestInitializeReplacesPriorInstance(t *testing.T) {
	g := New(store.New(), nil)
	g.Initialize(smallTree(), 80, 24)
	first := g.NodeCount()

	g.Initialize(wideTree(3), 80, 24)
	defer g.Cleanup()

	assert.True(t, g.Running())
	assert.Equal(t, 4, g.NodeCount())
	assert.NotEqual(t, first, g.NodeCount())
}

func TestFileSelectionIsSilentWithObservers(t *testing.T) {
	st := store.New()
	notifications := 0
	st.Subscribe(func(store.AppState) { notifications++ })

	g := New(st, nil)
	var observed []string
	g.OnFileSelected(func(path string) { observed = append(observed, path) })

	g.Initialize(smallTree(), 80, 24)
	defer g.Cleanup()

	// BFS order: repo(0), src(1), README.md(2), main.go(3), util.go(4).
	g.CycleSelection(1) // src: folder, cursor only
	assert.Empty(t, observed)
	assert.Nil(t, st.GetState().SelectedFile)

	g.CycleSelection(1) // README.md: file
	require.Len(t, observed, 1)
	assert.Equal(t, "README.md", observed[0])
	require.NotNil(t, st.GetState().SelectedFile)
	assert.Equal(t, "README.md", st.GetState().SelectedFile.Path)
	assert.Zero(t, notifications, "graph selection must never notify subscribers")
}

func TestCycleSelectionWraps(t *testing.T) {
	g := New(store.New(), nil)
	g.Initialize(smallTree(), 80, 24)
	defer g.Cleanup()

	g.CycleSelection(-1)
	assert.Equal(t, "src/util.go", g.SelectedPath(), "backwards from root wraps to the last node")
}

func TestStepSettlesEventually(t *testing.T) {
	nodes, edges, _ := flatten(smallTree())
	seedPositions(nodes, 80, 24)

	settled := false
	for i := 0; i < 5000 && !settled; i++ {
		settled = step(nodes, edges)
	}
	assert.True(t, settled, "simulation energy decays below the settle threshold")
}

func TestViewDegenerateSizes(t *testing.T) {
	g := New(store.New(), nil)
	assert.Empty(t, g.View(0, 0))
	assert.NotPanics(t, func() { g.View(10, 3) })
}
