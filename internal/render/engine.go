// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package render turns the application state into terminal frames.
//
// # Description
//
// Render is a synchronous, atomic pass over one state snapshot: it
// picks the top-level view from state, branches on view-local bits (the
// persisted tab selector, the tree cursor, panel-local fetch results),
// and produces the whole base frame as a string. Resources that must
// survive a re-render (the graph simulation, the chat sidebar, the
// challenge overlay) are independently owned lifecycle objects
// composited around the base frame, never rebuilt with it. Before any
// frame in which the graph region is absent, the engine stops the
// simulation (teardown-before-replace); frames that keep the region
// neither create nor destroy it.
//
// Render never fails: missing size renders an empty frame, nil trees
// and selections render placeholders.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/reposage/reposage/internal/cachestore"
	"github.com/reposage/reposage/internal/gamify"
	"github.com/reposage/reposage/internal/githost"
	"github.com/reposage/reposage/internal/learn"
	"github.com/reposage/reposage/internal/store"
	"github.com/reposage/reposage/internal/viz"
)

// Tab is the repo view's content selector. View-local: it lives in the
// durable prefs store, not in application state.
type Tab string

const (
	TabTree  Tab = "tree"
	TabGraph Tab = "graph"
	TabLearn Tab = "learn"
)

const sidebarWidth = 36

// PrefsStore persists view-local UI preferences.
type PrefsStore interface {
	ActiveTab() string
	SetActiveTab(string)
}

// Overlay is an independently owned UI layer composited over the base
// frame. Its internal state changes never pass through the state store.
type Overlay interface {
	Active() bool
	View(width, height int) string
}

// Engine renders frames from state.
type Engine struct {
	store *store.Store
	graph *viz.ForceGraph
	prefs PrefsStore

	width  int
	height int

	activeTab Tab

	// tree view-local state; reset when a new repository is loaded
	expanded map[string]bool
	cursor   int
	lastTree *githost.FileNode

	// file detail panel-local state
	previewPath    string
	preview        string
	previewErr     string
	previewLoading bool
	explanation    string
	explainErr     string
	explainLoading bool

	// learning panel-local state
	path        *learn.Path
	pathErr     string
	pathLoading bool
	learnCursor int

	// landing data
	trending []githost.RepoInfo
	history  []cachestore.HistoryEntry

	// providers wired at startup
	inputView   func() string
	spinnerView func() string
	progress    func() gamify.Progress
	rateLimit   func() githost.RateLimit

	sidebar Overlay
	modal   Overlay
}

// NewEngine creates an engine bound to the store and graph controller.
// The engine subscribes to the store so a freshly loaded tree resets
// the expanded-folder set (a new tree is a new path namespace).
func NewEngine(st *store.Store, graph *viz.ForceGraph, prefs PrefsStore) *Engine {
	e := &Engine{
		store:    st,
		graph:    graph,
		prefs:    prefs,
		expanded: map[string]bool{},
	}
	e.activeTab = Tab(prefs.ActiveTab())
	switch e.activeTab {
	case TabTree, TabGraph, TabLearn:
	default:
		e.activeTab = TabTree
	}

	st.Subscribe(func(s store.AppState) {
		if s.FileTree != e.lastTree {
			e.lastTree = s.FileTree
			e.ResetViewLocal()
		}
	})
	return e
}

// Providers supplies the view fragments and read-only data feeds the
// engine composes but does not own.
type Providers struct {
	InputView   func() string
	SpinnerView func() string
	Progress    func() gamify.Progress
	RateLimit   func() githost.RateLimit
}

// SetProviders wires the provider functions.
func (e *Engine) SetProviders(p Providers) {
	e.inputView = p.InputView
	e.spinnerView = p.SpinnerView
	e.progress = p.Progress
	e.rateLimit = p.RateLimit
}

// SetSidebar installs the chat sidebar overlay.
func (e *Engine) SetSidebar(o Overlay) { e.sidebar = o }

// SetModal installs the challenge modal overlay.
func (e *Engine) SetModal(o Overlay) { e.modal = o }

// SetSize records the terminal dimensions.
func (e *Engine) SetSize(w, h int) {
	e.width = w
	e.height = h
}

// Render produces the full frame for the current state snapshot.
func (e *Engine) Render() string {
	if e.width <= 0 || e.height <= 0 {
		return ""
	}
	st := e.store.GetState()

	// Teardown-before-replace: the simulation must stop before any
	// frame that drops its region. Frames that keep the region leave
	// the running instance alone.
	graphVisible := st.View == store.ViewRepo && e.activeTab == TabGraph && !e.modalActive()
	if !graphVisible && e.graph.Running() {
		e.graph.Cleanup()
	}
	if graphVisible && !e.graph.Running() && st.FileTree != nil {
		e.graph.Initialize(st.FileTree, e.contentWidth(), e.contentHeight())
	}

	contentWidth := e.contentWidth()
	var base string
	switch st.View {
	case store.ViewRepo:
		base = e.renderRepo(st, contentWidth)
	default:
		base = e.renderLanding(st, contentWidth)
	}

	if e.sidebarActive() {
		base = lipgloss.JoinHorizontal(lipgloss.Top,
			base,
			e.sidebar.View(sidebarWidth, e.height),
		)
	}
	if e.modalActive() {
		boxW := min(contentWidth-4, 72)
		if boxW < 20 {
			boxW = contentWidth
		}
		return lipgloss.Place(e.width, e.height, lipgloss.Center, lipgloss.Center,
			e.modal.View(boxW, e.height-4))
	}
	return base
}

// ActiveTab returns the repo view's content selector.
func (e *Engine) ActiveTab() Tab { return e.activeTab }

// SetActiveTab switches the repo content selector and persists it.
func (e *Engine) SetActiveTab(tab Tab) {
	if tab == e.activeTab {
		return
	}
	e.activeTab = tab
	e.prefs.SetActiveTab(string(tab))
}

// NextTab cycles tree → graph → learn → tree.
func (e *Engine) NextTab() {
	switch e.activeTab {
	case TabTree:
		e.SetActiveTab(TabGraph)
	case TabGraph:
		e.SetActiveTab(TabLearn)
	default:
		e.SetActiveTab(TabTree)
	}
}

// ResetViewLocal clears every view-local bit tied to the previous
// repository: expanded folders, cursors, panel-local fetch results.
func (e *Engine) ResetViewLocal() {
	e.expanded = map[string]bool{}
	e.cursor = 0
	e.learnCursor = 0
	e.previewPath = ""
	e.preview = ""
	e.previewErr = ""
	e.previewLoading = false
	e.explanation = ""
	e.explainErr = ""
	e.explainLoading = false
	e.path = nil
	e.pathErr = ""
	e.pathLoading = false
}

// SetTrending feeds the landing view's trending list.
func (e *Engine) SetTrending(repos []githost.RepoInfo) { e.trending = repos }

// SetHistory feeds the landing view's history list.
func (e *Engine) SetHistory(entries []cachestore.HistoryEntry) { e.history = entries }

// BeginPreview marks a file-content fetch as outstanding for path.
func (e *Engine) BeginPreview(path string) {
	e.previewPath = path
	e.preview = ""
	e.previewErr = ""
	e.previewLoading = true
	e.explanation = ""
	e.explainErr = ""
}

// SetPreview installs a fetched file preview. Results for any path other
// than the one currently awaited are stale and discarded.
func (e *Engine) SetPreview(path, content, errMsg string) {
	if path != e.previewPath {
		return
	}
	e.previewLoading = false
	e.preview = content
	e.previewErr = errMsg
}

// Preview returns the loaded file content, empty while outstanding.
func (e *Engine) Preview() string { return e.preview }

// BeginExplanation marks an AI explanation as outstanding.
func (e *Engine) BeginExplanation(path string) {
	if path != e.previewPath {
		return
	}
	e.explainLoading = true
	e.explanation = ""
	e.explainErr = ""
}

// SetExplanation installs an AI explanation, discarding stale results.
func (e *Engine) SetExplanation(path, text, errMsg string) {
	if path != e.previewPath {
		return
	}
	e.explainLoading = false
	e.explanation = text
	e.explainErr = errMsg
}

// BeginLearningPath marks path generation as outstanding.
func (e *Engine) BeginLearningPath() {
	e.pathLoading = true
	e.pathErr = ""
}

// SetLearningPath installs a generated or loaded path. The error stays
// local to the learning panel.
func (e *Engine) SetLearningPath(p *learn.Path, errMsg string) {
	e.pathLoading = false
	e.path = p
	e.pathErr = errMsg
	if e.learnCursor >= e.moduleCount() {
		e.learnCursor = 0
	}
}

// LearningPath returns the panel's current path, if any.
func (e *Engine) LearningPath() *learn.Path { return e.path }

// LearnCursor returns the highlighted module index.
func (e *Engine) LearnCursor() int { return e.learnCursor }

// MoveLearnCursor moves the module highlight, clamped.
func (e *Engine) MoveLearnCursor(delta int) {
	n := e.moduleCount()
	if n == 0 {
		return
	}
	e.learnCursor += delta
	if e.learnCursor < 0 {
		e.learnCursor = 0
	}
	if e.learnCursor >= n {
		e.learnCursor = n - 1
	}
}

func (e *Engine) moduleCount() int {
	if e.path == nil {
		return 0
	}
	return len(e.path.Modules)
}

func (e *Engine) sidebarActive() bool {
	return e.sidebar != nil && e.sidebar.Active()
}

func (e *Engine) modalActive() bool {
	return e.modal != nil && e.modal.Active()
}

func (e *Engine) contentWidth() int {
	if e.sidebarActive() {
		return e.width - sidebarWidth
	}
	return e.width
}

func (e *Engine) contentHeight() int {
	// header + tab bar + footer
	return e.height - 6
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
