// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reposage/reposage/internal/githost"
	"github.com/reposage/reposage/internal/store"
)

func (e *Engine) renderRepo(st store.AppState, width int) string {
	var b strings.Builder

	b.WriteString(e.renderRepoHeader(st, width))
	b.WriteString("\n")
	b.WriteString(e.renderTabBar())
	b.WriteString("\n")

	bodyHeight := e.contentHeight()
	switch e.activeTab {
	case TabGraph:
		b.WriteString(e.graph.View(width, bodyHeight))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("n/p cycle nodes · arrows pan · +/- zoom · tab switch · esc back"))
	case TabLearn:
		b.WriteString(e.renderLearn(st, width, bodyHeight))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("g generate path · j/k move · c complete module · tab switch · esc back"))
	default:
		left := e.renderTree(st, width/3, bodyHeight)
		right := e.renderDetail(st, width-width/3-2, bodyHeight)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("j/k move · enter open · x explain · a chat · tab switch · esc back"))
	}
	return b.String()
}

func (e *Engine) renderRepoHeader(st store.AppState, width int) string {
	if st.CurrentRepo == nil {
		return dimStyle.Render("loading repository…")
	}
	r := st.CurrentRepo
	head := fmt.Sprintf("%s %s %s %s",
		repoNameStyle.Render(r.FullName),
		statStyle.Render(fmt.Sprintf("★ %d", r.Stars)),
		statStyle.Render(fmt.Sprintf("⑂ %d", r.Forks)),
		dimStyle.Render(r.Language))

	if e.progress != nil {
		p := e.progress()
		head += "   " + xpStyle.Render(fmt.Sprintf("%d XP", p.TotalXP)) +
			" " + streakStyle.Render(fmt.Sprintf("🔥%d", p.CurrentStreak))
	}

	desc := ""
	if r.Description != "" {
		desc = "\n" + truncate(dimStyle.Render(r.Description), width)
	}
	return truncate(head, width) + desc
}

func (e *Engine) renderTabBar() string {
	render := func(t Tab, label string) string {
		if t == e.activeTab {
			return tabActiveStyle.Render(label)
		}
		return tabInactiveStyle.Render(label)
	}
	return render(TabTree, "Files") + "  " +
		render(TabGraph, "Graph") + "  " +
		render(TabLearn, "Learn")
}

// treeRow is one visible line of the file tree.
type treeRow struct {
	node  *githost.FileNode
	depth int
}

// visibleRows flattens the tree, descending only into expanded folders.
// The root row is always present.
func (e *Engine) visibleRows(root *githost.FileNode) []treeRow {
	if root == nil {
		return nil
	}
	rows := []treeRow{{node: root, depth: 0}}
	var walk func(n *githost.FileNode, depth int)
	walk = func(n *githost.FileNode, depth int) {
		for _, c := range n.Children {
			rows = append(rows, treeRow{node: c, depth: depth})
			if c.IsFolder() && e.expanded[c.Path] {
				walk(c, depth+1)
			}
		}
	}
	walk(root, 1)
	return rows
}

// MoveTreeCursor moves the tree highlight, clamped to the visible rows.
func (e *Engine) MoveTreeCursor(delta int) {
	rows := e.visibleRows(e.store.GetState().FileTree)
	if len(rows) == 0 {
		return
	}
	e.cursor += delta
	if e.cursor < 0 {
		e.cursor = 0
	}
	if e.cursor >= len(rows) {
		e.cursor = len(rows) - 1
	}
}

// CurrentTreeNode returns the node under the tree cursor, or nil.
func (e *Engine) CurrentTreeNode() *githost.FileNode {
	rows := e.visibleRows(e.store.GetState().FileTree)
	if e.cursor < 0 || e.cursor >= len(rows) {
		return nil
	}
	return rows[e.cursor].node
}

// ToggleOrSelect acts on the cursor row: folders toggle their expanded
// flag (view-local, no notification); files are returned for the caller
// to select through the store.
func (e *Engine) ToggleOrSelect() (selected *githost.FileNode) {
	node := e.CurrentTreeNode()
	if node == nil {
		return nil
	}
	if node.IsFolder() {
		e.expanded[node.Path] = !e.expanded[node.Path]
		return nil
	}
	return node
}

func (e *Engine) renderTree(st store.AppState, width, height int) string {
	if st.FileTree == nil {
		return panelBorderStyle.Width(width).Height(height).Render(
			dimStyle.Render("no file tree"))
	}

	rows := e.visibleRows(st.FileTree)
	if e.cursor >= len(rows) {
		e.cursor = len(rows) - 1
	}

	// Scroll window around the cursor.
	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if e.cursor >= visible {
		start = e.cursor - visible + 1
	}

	var b strings.Builder
	for i := start; i < len(rows) && i < start+visible; i++ {
		row := rows[i]
		indent := strings.Repeat("  ", row.depth)
		var line string
		if row.node.IsFolder() {
			arrow := "▸"
			if row.node == st.FileTree || e.expanded[row.node.Path] {
				arrow = "▾"
			}
			line = indent + folderStyle.Render(arrow+" "+row.node.Name)
		} else {
			line = indent + fileStyle.Render("  "+row.node.Name)
		}
		if i == e.cursor {
			line = indent + cursorRowStyle.Render("› "+row.node.Name)
		}
		b.WriteString(truncate(line, width-4))
		b.WriteString("\n")
	}
	return panelBorderStyle.Width(width).Height(height).Render(
		strings.TrimRight(b.String(), "\n"))
}

func (e *Engine) renderDetail(st store.AppState, width, height int) string {
	if st.SelectedFile == nil {
		welcome := titleStyle.Render("Welcome") + "\n\n" +
			subtitleStyle.Render("Pick a file on the left to preview it,\n"+
				"then press x for an AI explanation.")
		return panelBorderStyle.Width(width).Height(height).Render(welcome)
	}

	f := st.SelectedFile
	var b strings.Builder
	b.WriteString(repoNameStyle.Render(f.Path))
	if f.Size > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d bytes", f.Size)))
	}
	b.WriteString("\n\n")

	switch {
	case e.previewLoading:
		b.WriteString(dimStyle.Render("loading file…"))
	case e.previewErr != "":
		b.WriteString(errorStyle.Render(e.previewErr))
	case e.preview != "":
		b.WriteString(clipLines(e.preview, height/2, width-4))
	default:
		b.WriteString(dimStyle.Render("press enter to load the file"))
	}
	b.WriteString("\n\n")

	switch {
	case e.explainLoading:
		b.WriteString(dimStyle.Render("thinking about this file…"))
	case e.explainErr != "":
		b.WriteString(errorStyle.Render(e.explainErr))
	case e.explanation != "":
		b.WriteString(titleStyle.Render("Explanation"))
		b.WriteString("\n")
		b.WriteString(clipLines(e.explanation, height/2-2, width-4))
	}

	return panelBorderStyle.Width(width).Height(height).Render(b.String())
}

func (e *Engine) renderLearn(st store.AppState, width, height int) string {
	var b strings.Builder

	switch {
	case e.pathLoading:
		spin := ""
		if e.spinnerView != nil {
			spin = e.spinnerView() + " "
		}
		b.WriteString(dimStyle.Render(spin + "designing your learning path…"))
	case e.pathErr != "":
		b.WriteString(errorStyle.Render(e.pathErr))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("press g to try again"))
	case e.path == nil:
		b.WriteString(subtitleStyle.Render("No learning path yet for this repository."))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("press g to generate one"))
	case e.path.RawFallback:
		b.WriteString(titleStyle.Render("Learning path"))
		b.WriteString("\n\n")
		b.WriteString(clipLines(e.path.Overview, height-4, width-2))
	default:
		b.WriteString(titleStyle.Render("Overview"))
		b.WriteString("\n")
		b.WriteString(clipLines(e.path.Overview, 4, width-2))
		b.WriteString("\n\n")
		if len(e.path.Prerequisites) > 0 {
			b.WriteString(titleStyle.Render("Prerequisites"))
			b.WriteString("\n")
			for _, p := range e.path.Prerequisites {
				b.WriteString(truncate("  • "+p, width-2))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render("Modules"))
		b.WriteString("\n")
		for i, m := range e.path.Modules {
			check := "[ ]"
			style := fileStyle
			if m.Completed {
				check = "[✓]"
				style = checkedStyle
			}
			line := fmt.Sprintf("  %s %d. %s %s", check, i+1, m.Title,
				dimStyle.Render(m.EstimatedTime))
			if i == e.learnCursor {
				line = cursorRowStyle.Render(fmt.Sprintf("› %s %d. %s", check, i+1, m.Title))
			} else {
				line = style.Render(line)
			}
			b.WriteString(truncate(line, width-2))
			b.WriteString("\n")
			if i == e.learnCursor && m.Description != "" {
				b.WriteString(truncate(dimStyle.Render("      "+m.Description), width-2))
				b.WriteString("\n")
			}
		}
		if len(e.path.Projects) > 0 {
			b.WriteString("\n")
			b.WriteString(titleStyle.Render("Project ideas"))
			b.WriteString("\n")
			for _, p := range e.path.Projects {
				b.WriteString(truncate("  • "+p, width-2))
				b.WriteString("\n")
			}
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(
		strings.TrimRight(b.String(), "\n"))
}

// clipLines bounds a text block to maxLines lines of at most width
// cells each.
func clipLines(s string, maxLines, width int) string {
	if maxLines < 1 {
		maxLines = 1
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxLines {
		lines = append(lines[:maxLines], dimStyle.Render("…"))
	}
	for i := range lines {
		lines[i] = truncate(lines[i], width)
	}
	return strings.Join(lines, "\n")
}
