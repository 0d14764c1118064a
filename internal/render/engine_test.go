// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reposage/reposage/internal/ai"
	"github.com/reposage/reposage/internal/chat"
	"github.com/reposage/reposage/internal/gamify"
	"github.com/reposage/reposage/internal/githost"
	"github.com/reposage/reposage/internal/learn"
	"github.com/reposage/reposage/internal/store"
	"github.com/reposage/reposage/internal/viz"
)

type memPrefs struct {
	tab string
}

func (m *memPrefs) ActiveTab() string     { return m.tab }
func (m *memPrefs) SetActiveTab(t string) { m.tab = t }

type memProgress struct {
	p   gamify.Progress
	set bool
}

func (m *memProgress) LoadProgress() (gamify.Progress, bool) { return m.p, m.set }
func (m *memProgress) SaveProgress(p gamify.Progress)        { m.p, m.set = p, true }

type nullResponder struct{}

func (nullResponder) Chat(_ context.Context, _ string, _ ai.RepoContext, _ []ai.Turn) (string, error) {
	return "ok", nil
}

func testTree() *githost.FileNode {
	return &githost.FileNode{
		Name: "demo", Path: "demo", Type: githost.NodeFolder,
		Children: []*githost.FileNode{
			{Name: "src", Path: "src", Type: githost.NodeFolder,
				Children: []*githost.FileNode{
					{Name: "main.go", Path: "src/main.go", Type: githost.NodeFile},
				}},
			{Name: "README.md", Path: "README.md", Type: githost.NodeFile},
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *store.Store, *viz.ForceGraph) {
	t.Helper()
	st := store.New()
	graph := viz.New(st, slog.New(slog.DiscardHandler))
	e := NewEngine(st, graph, &memPrefs{tab: "tree"})
	e.SetSize(100, 30)
	t.Cleanup(graph.Cleanup)
	return e, st, graph
}

func loadRepo(st *store.Store) {
	st.SetRepoData(&githost.RepoInfo{
		FullName: "acme/demo", Stars: 42, Forks: 7, Language: "Go",
	}, testTree())
}

func TestRenderLandingWithoutSize(t *testing.T) {
	st := store.New()
	graph := viz.New(st, slog.New(slog.DiscardHandler))
	e := NewEngine(st, graph, &memPrefs{})
	assert.Equal(t, "", e.Render())
}

func TestRenderLandingFrame(t *testing.T) {
	e, _, _ := newTestEngine(t)
	frame := e.Render()
	assert.Contains(t, frame, "RepoSage")
}

func TestRenderRepoFrame(t *testing.T) {
	e, st, _ := newTestEngine(t)
	loadRepo(st)
	frame := e.Render()
	assert.Contains(t, frame, "acme/demo")
	assert.Contains(t, frame, "README.md")
}

func TestGraphLifecycleFollowsVisibility(t *testing.T) {
	e, st, graph := newTestEngine(t)
	loadRepo(st)

	e.Render()
	assert.False(t, graph.Running(), "graph must not run on the tree tab")

	e.SetActiveTab(TabGraph)
	e.Render()
	assert.True(t, graph.Running(), "graph starts when its tab renders")

	e.SetActiveTab(TabTree)
	e.Render()
	assert.False(t, graph.Running(), "graph stops before a frame without it")
}

func TestGraphStopsWhenModalCovers(t *testing.T) {
	e, st, graph := newTestEngine(t)
	loadRepo(st)

	session := gamify.NewSession(gamify.NewTracker(&memProgress{}))
	e.SetModal(NewChallengeOverlay(session, nil))

	e.SetActiveTab(TabGraph)
	e.Render()
	require.True(t, graph.Running())

	session.BeginLoading(learn.ChallengeKey{RepoFullName: "acme/demo", ModuleIndex: 0})
	e.Render()
	assert.False(t, graph.Running(), "modal replaces the frame, graph must stop first")
}

func TestTabPersistsThroughPrefs(t *testing.T) {
	st := store.New()
	graph := viz.New(st, slog.New(slog.DiscardHandler))
	prefs := &memPrefs{tab: "tree"}

	e := NewEngine(st, graph, prefs)
	e.SetActiveTab(TabLearn)
	assert.Equal(t, "learn", prefs.tab)

	e2 := NewEngine(st, graph, prefs)
	assert.Equal(t, TabLearn, e2.ActiveTab())
}

func TestUnknownPrefTabFallsBackToTree(t *testing.T) {
	st := store.New()
	graph := viz.New(st, slog.New(slog.DiscardHandler))
	e := NewEngine(st, graph, &memPrefs{tab: "bogus"})
	assert.Equal(t, TabTree, e.ActiveTab())
}

func TestTreeCursorAndToggle(t *testing.T) {
	e, st, _ := newTestEngine(t)
	loadRepo(st)

	// rows: demo(root), src, README.md (src starts collapsed)
	require.Equal(t, "demo", e.CurrentTreeNode().Path)

	e.MoveTreeCursor(1)
	require.Equal(t, "src", e.CurrentTreeNode().Path)

	selected := e.ToggleOrSelect()
	assert.Nil(t, selected, "folders toggle, never select")

	// src now expanded: demo, src, src/main.go, README.md
	e.MoveTreeCursor(1)
	require.Equal(t, "src/main.go", e.CurrentTreeNode().Path)

	selected = e.ToggleOrSelect()
	require.NotNil(t, selected)
	assert.Equal(t, "src/main.go", selected.Path)

	e.MoveTreeCursor(100)
	assert.Equal(t, "README.md", e.CurrentTreeNode().Path, "cursor clamps to last row")
	e.MoveTreeCursor(-100)
	assert.Equal(t, "demo", e.CurrentTreeNode().Path)
}

func TestViewLocalResetOnNewTree(t *testing.T) {
	e, st, _ := newTestEngine(t)
	loadRepo(st)

	e.MoveTreeCursor(1)
	e.ToggleOrSelect() // expand src
	e.BeginPreview("src/main.go")
	e.SetPreview("src/main.go", "package main", "")

	// A second repository arrives: everything view-local resets.
	st.SetRepoData(&githost.RepoInfo{FullName: "acme/other"}, testTree())
	assert.Equal(t, "demo", e.CurrentTreeNode().Path)
	assert.Empty(t, e.preview)
	assert.Empty(t, e.expanded)
}

func TestStalePreviewDiscarded(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.BeginPreview("a.go")
	e.BeginPreview("b.go")
	e.SetPreview("a.go", "stale", "")
	assert.True(t, e.previewLoading, "stale result must not clear the newer fetch")
	assert.Empty(t, e.preview)

	e.SetPreview("b.go", "fresh", "")
	assert.False(t, e.previewLoading)
	assert.Equal(t, "fresh", e.preview)
}

func TestStaleExplanationDiscarded(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.BeginPreview("a.go")
	e.BeginExplanation("a.go")
	e.BeginPreview("b.go")

	e.SetExplanation("a.go", "stale", "")
	assert.Empty(t, e.explanation)

	e.BeginExplanation("b.go")
	e.SetExplanation("b.go", "fresh", "")
	assert.Equal(t, "fresh", e.explanation)
}

func TestLearningPathPanelStates(t *testing.T) {
	e, st, _ := newTestEngine(t)
	loadRepo(st)
	e.SetActiveTab(TabLearn)

	frame := e.Render()
	assert.Contains(t, frame, "No learning path yet")

	e.BeginLearningPath()
	e.SetLearningPath(nil, "model unavailable")
	frame = e.Render()
	assert.Contains(t, frame, "model unavailable")

	e.SetLearningPath(&learn.Path{
		Overview: "A small demo project.",
		Modules: []learn.Module{
			{Title: "Entry point", EstimatedTime: "30m"},
			{Title: "Utilities", EstimatedTime: "1h", Completed: true},
		},
	}, "")
	frame = e.Render()
	assert.Contains(t, frame, "Entry point")
	assert.Contains(t, frame, "[✓]")
}

func TestLearningPathRawFallback(t *testing.T) {
	e, st, _ := newTestEngine(t)
	loadRepo(st)
	e.SetActiveTab(TabLearn)

	e.SetLearningPath(&learn.Path{Overview: "just prose, no modules", RawFallback: true}, "")
	frame := e.Render()
	assert.Contains(t, frame, "just prose")
}

func TestLearnCursorClamps(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetLearningPath(&learn.Path{Modules: []learn.Module{{Title: "a"}, {Title: "b"}}}, "")

	e.MoveLearnCursor(5)
	assert.Equal(t, 1, e.LearnCursor())
	e.MoveLearnCursor(-5)
	assert.Equal(t, 0, e.LearnCursor())
}

func TestChatSidebarJoinsFrame(t *testing.T) {
	e, st, _ := newTestEngine(t)
	loadRepo(st)

	session := chat.NewSession(nullResponder{})
	e.SetSidebar(NewChatPanel(session, func() string { return "> " }))

	without := e.Render()
	session.Toggle()
	with := e.Render()
	assert.NotEqual(t, without, with)
	assert.Contains(t, with, "Ask about this repo")
	assert.Contains(t, with, "esc close", "help line matches the dismiss key")
}

func TestChallengeOverlayCursor(t *testing.T) {
	session := gamify.NewSession(gamify.NewTracker(&memProgress{}))
	o := NewChallengeOverlay(session, nil)

	session.BeginLoading(learn.ChallengeKey{RepoFullName: "acme/demo"})
	session.Begin(learn.ChallengeKey{RepoFullName: "acme/demo"}, []learn.Challenge{
		{Question: "q1", Options: []string{"A", "B", "C"}, CorrectAnswer: "B", Points: 10},
		{Question: "q2", Options: []string{"X", "Y"}, CorrectAnswer: "X", Points: 10},
	})

	o.MoveCursor(1)
	assert.Equal(t, "B", o.SelectedOption())
	o.MoveCursor(10)
	assert.Equal(t, "C", o.SelectedOption(), "cursor clamps to option count")

	session.Answer(o.SelectedOption())
	session.Advance()
	assert.Equal(t, "X", o.SelectedOption(), "cursor resets on a new question")
}

func TestChallengeOverlayPhases(t *testing.T) {
	session := gamify.NewSession(gamify.NewTracker(&memProgress{}))
	o := NewChallengeOverlay(session, func() string { return "*" })

	assert.False(t, o.Active())

	session.BeginLoading(learn.ChallengeKey{RepoFullName: "acme/demo"})
	assert.True(t, o.Active())
	assert.Contains(t, o.View(60, 20), "writing challenge questions")

	session.Begin(learn.ChallengeKey{RepoFullName: "acme/demo"}, []learn.Challenge{
		{Question: "what?", Options: []string{"A", "B"}, CorrectAnswer: "A",
			Explanation: "because", Points: 15},
	})
	view := o.View(60, 20)
	assert.Contains(t, view, "what?")
	assert.Contains(t, view, "Question 1 of 1")

	session.Answer("A")
	view = o.View(60, 20)
	assert.Contains(t, view, "+15 XP")
	assert.Contains(t, view, "because")

	session.Advance()
	view = o.View(60, 20)
	assert.Contains(t, view, "Challenge complete")
	assert.Contains(t, view, "1 correct")
}

func TestWrapBreaksOnWords(t *testing.T) {
	lines := wrap("alpha beta gamma delta", 11)
	assert.Equal(t, []string{"alpha beta", "gamma delta"}, lines)

	assert.Equal(t, []string{"short"}, wrap("short", 40))
	assert.Equal(t, []string{""}, wrap("", 40))
}

func TestTruncateRespectsWidth(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	got := truncate("abcdefghij", 5)
	assert.LessOrEqual(t, len([]rune(got)), 5)
}
