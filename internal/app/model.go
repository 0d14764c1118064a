// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package app hosts the terminal application: one bubbletea model that
// owns the state store, the render engine, the graph simulation, the
// chat and challenge sessions, and the API collaborators, and maps
// keystrokes onto them.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reposage/reposage/internal/ai"
	"github.com/reposage/reposage/internal/cachestore"
	"github.com/reposage/reposage/internal/chat"
	"github.com/reposage/reposage/internal/gamify"
	"github.com/reposage/reposage/internal/githost"
	"github.com/reposage/reposage/internal/learn"
	"github.com/reposage/reposage/internal/render"
	"github.com/reposage/reposage/internal/store"
	"github.com/reposage/reposage/internal/viz"
)

// Deps carries the collaborators the model composes. Everything is
// constructed in cmd and injected so tests can swap the API clients.
type Deps struct {
	Store     *store.Store
	Cache     *cachestore.Store
	GitHub    *githost.Client
	Assistant *ai.Assistant
	Tracker   *gamify.Tracker
	Log       *slog.Logger
}

// Model is the top-level bubbletea model.
type Model struct {
	store     *store.Store
	cache     *cachestore.Store
	github    *githost.Client
	assistant *ai.Assistant
	tracker   *gamify.Tracker
	log       *slog.Logger

	engine    *render.Engine
	graph     *viz.ForceGraph
	chat      *chat.Session
	challenge *gamify.Session
	chatPanel *render.ChatPanel
	overlay   *render.ChallengeOverlay

	urlInput  textinput.Model
	chatInput textinput.Model
	spin      spinner.Model

	frames      chan struct{}
	storeEvents chan struct{}

	// set by the graph's file-selected observer, consumed by the key
	// handler that triggered the selection
	pendingPreview *githost.FileNode

	initialRepo string
	quitting    bool
}

// New wires the model from its dependencies.
func New(d Deps) *Model {
	m := &Model{
		store:       d.Store,
		cache:       d.Cache,
		github:      d.GitHub,
		assistant:   d.Assistant,
		tracker:     d.Tracker,
		log:         d.Log,
		frames:      make(chan struct{}, 1),
		storeEvents: make(chan struct{}, 1),
	}

	m.graph = viz.New(d.Store, d.Log)
	m.engine = render.NewEngine(d.Store, m.graph, d.Cache)
	m.challenge = gamify.NewSession(d.Tracker)
	m.chat = chat.NewSession(d.Assistant)

	m.urlInput = textinput.New()
	m.urlInput.Placeholder = "owner/repo or a GitHub URL"
	m.urlInput.CharLimit = 200
	m.urlInput.Width = 48
	m.urlInput.Focus()

	m.chatInput = textinput.New()
	m.chatInput.Placeholder = "ask about this repo…"
	m.chatInput.CharLimit = 500
	m.chatInput.Width = 30

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	m.chatPanel = render.NewChatPanel(m.chat, m.chatInput.View)
	m.overlay = render.NewChallengeOverlay(m.challenge, m.spin.View)
	m.engine.SetSidebar(m.chatPanel)
	m.engine.SetModal(m.overlay)
	m.engine.SetProviders(render.Providers{
		InputView:   m.urlInput.View,
		SpinnerView: m.spin.View,
		Progress:    m.tracker.Progress,
		RateLimit:   m.github.RateLimitState,
	})

	// The simulation ticks on its own goroutine; frames funnel into the
	// Update loop as messages. A full channel means a repaint is already
	// pending, so drops are free.
	m.graph.OnFrame(func() {
		select {
		case m.frames <- struct{}{}:
		default:
		}
	})
	m.graph.OnFileSelected(func(path string) {
		root := d.Store.GetState().FileTree
		if root == nil {
			return
		}
		m.pendingPreview = root.Find(path)
	})
	d.Store.Subscribe(func(store.AppState) {
		select {
		case m.storeEvents <- struct{}{}:
		default:
		}
	})

	if entries, ok := d.Cache.History(); ok {
		m.engine.SetHistory(entries)
	}
	return m
}

// SetInitialRepo queues a repository to open as soon as the program
// starts. Used by the explore subcommand.
func (m *Model) SetInitialRepo(input string) {
	m.initialRepo = input
}

// Init starts the spinner, the frame pump, and the trending feed.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spin.Tick, m.waitFrameCmd(), m.waitStoreCmd()}
	if repos, ok := m.cache.LoadTrending(); ok {
		m.engine.SetTrending(repos)
	} else {
		cmds = append(cmds, m.fetchTrendingCmd())
	}
	if m.initialRepo != "" {
		if cmd := m.Explore(m.initialRepo); cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.initialRepo = ""
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.engine.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case graphFrameMsg:
		return m, m.waitFrameCmd()

	case storeChangedMsg:
		return m, m.waitStoreCmd()

	case repoFetchedMsg:
		return m.handleRepoFetched(msg)

	case trendingMsg:
		if msg.err != nil {
			m.log.Warn("trending fetch failed", "error", msg.err)
			return m, nil
		}
		m.engine.SetTrending(msg.repos)
		m.cache.SaveTrending(msg.repos)
		return m, nil

	case fileContentMsg:
		errMsg := ""
		if msg.err != nil {
			errMsg = friendlyError(msg.err)
		}
		m.engine.SetPreview(msg.path, msg.content, errMsg)
		return m, nil

	case explainMsg:
		errMsg := ""
		if msg.err != nil {
			errMsg = "Explanation failed: " + msg.err.Error()
		}
		m.engine.SetExplanation(msg.path, msg.text, errMsg)
		return m, nil

	case learnPathMsg:
		return m.handleLearnPath(msg)

	case challengesMsg:
		return m.handleChallenges(msg)

	case chatRepliedMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return m.engine.Render()
}

// Close stops background work. Called by the command layer after the
// program exits.
func (m *Model) Close() {
	m.graph.Cleanup()
}

// ====================================================================
// Key dispatch: modal, then sidebar, then the base view
// ====================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.overlay.Active() {
		return m.handleChallengeKey(msg)
	}
	if m.chat.IsOpen() {
		return m.handleChatKey(msg)
	}

	st := m.store.GetState()
	if st.View == store.ViewRepo {
		return m.handleRepoKey(msg)
	}
	return m.handleLandingKey(msg)
}

func (m *Model) handleLandingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m, m.explore(m.urlInput.Value())
	case tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	// Keystrokes mirror into state silently: no notification per key.
	m.store.SetRepoURL(m.urlInput.Value())
	return m, cmd
}

func (m *Model) handleRepoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.goToLanding()
		return m, nil
	case tea.KeyTab:
		m.engine.NextTab()
		return m, nil
	}

	switch m.engine.ActiveTab() {
	case render.TabGraph:
		return m.handleGraphKey(msg)
	case render.TabLearn:
		return m.handleLearnKey(msg)
	default:
		return m.handleTreeKey(msg)
	}
}

func (m *Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.engine.MoveTreeCursor(1)
	case "k", "up":
		m.engine.MoveTreeCursor(-1)
	case "enter":
		if node := m.engine.ToggleOrSelect(); node != nil {
			m.store.SelectFile(node)
			return m, m.beginPreviewFor(node)
		}
	case "x":
		return m, m.beginExplain()
	case "a":
		m.chat.Toggle()
		m.chatInput.Focus()
		m.urlInput.Blur()
	}
	return m, nil
}

func (m *Model) handleGraphKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.graph.CycleSelection(1)
		return m, m.takePendingPreview()
	case "p":
		m.graph.CycleSelection(-1)
		return m, m.takePendingPreview()
	case "left":
		m.graph.Pan(-4, 0)
	case "right":
		m.graph.Pan(4, 0)
	case "up":
		m.graph.Pan(0, -2)
	case "down":
		m.graph.Pan(0, 2)
	case "+", "=":
		m.graph.Zoom(1.25)
	case "-":
		m.graph.Zoom(0.8)
	case "a":
		m.chat.Toggle()
		m.chatInput.Focus()
	}
	return m, nil
}

func (m *Model) handleLearnKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.engine.MoveLearnCursor(1)
	case "k", "up":
		m.engine.MoveLearnCursor(-1)
	case "g":
		return m, m.beginLearningPath()
	case "c":
		return m, m.completeModule()
	case "a":
		m.chat.Toggle()
		m.chatInput.Focus()
	}
	return m, nil
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.chat.Toggle()
		m.chatInput.Blur()
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" || m.chat.Loading() {
			return m, nil
		}
		m.chatInput.Reset()
		return m, m.chatCmd(text, m.repoContext())
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m *Model) handleChallengeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.challenge.Phase() {
	case gamify.PhaseLoading:
		if msg.Type == tea.KeyEsc {
			m.challenge.Abort()
		}
	case gamify.PhaseQuestion:
		switch msg.String() {
		case "j", "down":
			m.overlay.MoveCursor(1)
		case "k", "up":
			m.overlay.MoveCursor(-1)
		case "enter":
			m.challenge.Answer(m.overlay.SelectedOption())
		case "s":
			m.challenge.Skip()
		case "esc":
			m.challenge.Abort()
		}
	case gamify.PhaseFeedback:
		switch msg.String() {
		case "enter":
			m.challenge.Advance()
		case "esc":
			m.challenge.Abort()
		}
	case gamify.PhaseResults:
		switch msg.String() {
		case "enter", "esc":
			m.challenge.Dismiss()
		}
	}
	return m, nil
}

// ====================================================================
// Actions
// ====================================================================

// explore validates the URL and loads the repository, cache first. A
// stale in-flight fetch is invalidated by bumping the generation.
func (m *Model) explore(input string) tea.Cmd {
	owner, repo, err := githost.ParseRepoURL(input)
	if err != nil {
		m.store.SetError(friendlyError(err))
		return nil
	}
	fullName := owner + "/" + repo

	if snap, ok := m.cache.LoadRepoSnapshot(fullName); ok {
		m.log.Debug("repo served from cache", "repo", fullName)
		m.store.NextGeneration()
		m.applyRepo(&snap.Info, snap.Tree)
		return nil
	}

	m.store.SetLoading(true)
	gen := m.store.NextGeneration()
	return m.fetchRepoCmd(gen, owner, repo)
}

// Explore is the programmatic entry used by the `explore <url>`
// subcommand: it pre-fills the input and starts the load.
func (m *Model) Explore(input string) tea.Cmd {
	m.urlInput.SetValue(input)
	m.store.SetRepoURL(input)
	return m.explore(input)
}

func (m *Model) handleRepoFetched(msg repoFetchedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.store.GetState().Generation {
		m.log.Debug("dropping stale repo response", "generation", msg.gen)
		return m, nil
	}
	if msg.err != nil {
		m.store.SetError(friendlyError(msg.err))
		return m, nil
	}
	m.cache.SaveRepoSnapshot(cachestore.RepoSnapshot{Info: *msg.info, Tree: msg.tree})
	m.applyRepo(msg.info, msg.tree)
	return m, nil
}

func (m *Model) applyRepo(info *githost.RepoInfo, tree *githost.FileNode) {
	m.store.SetRepoData(info, tree)
	m.cache.AddHistory(*info)
	if entries, ok := m.cache.History(); ok {
		m.engine.SetHistory(entries)
	}
	if p, ok := m.cache.LoadLearningPath(info.FullName); ok {
		m.engine.SetLearningPath(p, "")
	}
}

func (m *Model) goToLanding() {
	m.chat.Reset()
	m.challenge.Abort()
	m.store.GoToLanding()
	m.urlInput.Focus()
	m.chatInput.Blur()
}

// takePendingPreview consumes a selection made through the graph's
// observer callback during the current keystroke.
func (m *Model) takePendingPreview() tea.Cmd {
	node := m.pendingPreview
	m.pendingPreview = nil
	return m.beginPreviewFor(node)
}

func (m *Model) beginPreviewFor(node *githost.FileNode) tea.Cmd {
	st := m.store.GetState()
	if st.CurrentRepo == nil || node == nil || !node.IsFile() {
		return nil
	}
	m.engine.BeginPreview(node.Path)
	return m.fetchFileCmd(st.CurrentRepo.Owner, st.CurrentRepo.Repo, node.Path)
}

func (m *Model) beginExplain() tea.Cmd {
	st := m.store.GetState()
	if st.CurrentRepo == nil || st.SelectedFile == nil {
		return nil
	}
	path := st.SelectedFile.Path
	m.engine.BeginExplanation(path)
	return m.explainCmd(ai.FileContext{
		RepoFullName: st.CurrentRepo.FullName,
		Path:         path,
		Language:     st.SelectedFile.Extension,
		Content:      m.engine.Preview(),
	})
}

func (m *Model) beginLearningPath() tea.Cmd {
	st := m.store.GetState()
	if st.CurrentRepo == nil {
		return nil
	}
	if p, ok := m.cache.LoadLearningPath(st.CurrentRepo.FullName); ok {
		m.engine.SetLearningPath(p, "")
		return nil
	}
	m.engine.BeginLearningPath()
	return m.learningPathCmd(m.repoContext())
}

func (m *Model) handleLearnPath(msg learnPathMsg) (tea.Model, tea.Cmd) {
	st := m.store.GetState()
	if st.CurrentRepo == nil || st.CurrentRepo.FullName != msg.repoFullName {
		return m, nil // path for a repository no longer open
	}
	if msg.err != nil {
		m.engine.SetLearningPath(nil, "Could not generate a learning path: "+msg.err.Error())
		return m, nil
	}
	m.cache.SaveLearningPath(msg.repoFullName, msg.path)
	m.engine.SetLearningPath(msg.path, "")
	return m, nil
}

// completeModule toggles the highlighted module. Marking a module
// complete (not un-completing it) starts the challenge flow for that
// module, cache first.
func (m *Model) completeModule() tea.Cmd {
	st := m.store.GetState()
	p := m.engine.LearningPath()
	if st.CurrentRepo == nil || p == nil || p.RawFallback {
		return nil
	}
	idx := m.engine.LearnCursor()
	if idx < 0 || idx >= len(p.Modules) {
		return nil
	}

	mod := &p.Modules[idx]
	mod.Completed = !mod.Completed
	m.cache.SaveLearningPath(st.CurrentRepo.FullName, p)
	if !mod.Completed {
		return nil
	}

	key := learn.ChallengeKey{RepoFullName: st.CurrentRepo.FullName, ModuleIndex: idx}
	if cs, ok := m.cache.LoadChallengeSet(key); ok {
		m.challenge.BeginLoading(key)
		m.challenge.Begin(key, cs)
		return nil
	}
	m.challenge.BeginLoading(key)
	return m.challengesCmd(key, ai.ModuleContext{
		RepoFullName: st.CurrentRepo.FullName,
		ModuleTitle:  mod.Title,
		Description:  mod.Description,
		Files:        mod.Files,
		Objectives:   mod.Objectives,
	})
}

func (m *Model) handleChallenges(msg challengesMsg) (tea.Model, tea.Cmd) {
	if m.challenge.Phase() != gamify.PhaseLoading || m.challenge.Key() != msg.key {
		return m, nil // user escaped or moved on
	}
	if msg.err != nil {
		m.log.Warn("challenge generation failed", "key", msg.key.String(), "error", msg.err)
		m.challenge.Abort()
		return m, nil
	}
	m.cache.SaveChallengeSet(msg.key, msg.challenges)
	m.challenge.Begin(msg.key, msg.challenges)
	return m, nil
}

// repoContext summarizes the open repository for AI prompts.
func (m *Model) repoContext() ai.RepoContext {
	st := m.store.GetState()
	if st.CurrentRepo == nil {
		return ai.RepoContext{}
	}
	return ai.RepoContext{
		FullName:    st.CurrentRepo.FullName,
		Description: st.CurrentRepo.Description,
		Language:    st.CurrentRepo.Language,
		TreeOutline: treeOutline(st.FileTree),
	}
}

// treeOutline renders the top two levels of the tree as an indented
// listing, enough structure for prompts without flooding the context.
func treeOutline(root *githost.FileNode) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range root.Children {
		fmt.Fprintf(&b, "%s\n", c.Name)
		if c.IsFolder() {
			for _, g := range c.Children {
				fmt.Fprintf(&b, "  %s\n", g.Name)
			}
		}
	}
	return b.String()
}
