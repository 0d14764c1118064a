// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reposage/reposage/internal/ai"
	"github.com/reposage/reposage/internal/githost"
	"github.com/reposage/reposage/internal/learn"
)

// ====================================================================
// Messages
// ====================================================================

// repoFetchedMsg carries a repository fetch result, stamped with the
// request generation it belongs to. Results from a superseded
// generation are dropped on arrival.
type repoFetchedMsg struct {
	gen  uint64
	info *githost.RepoInfo
	tree *githost.FileNode
	err  error
}

type trendingMsg struct {
	repos []githost.RepoInfo
	err   error
}

type fileContentMsg struct {
	path    string
	content string
	err     error
}

type explainMsg struct {
	path string
	text string
	err  error
}

type learnPathMsg struct {
	repoFullName string
	path         *learn.Path
	err          error
}

type challengesMsg struct {
	key        learn.ChallengeKey
	challenges []learn.Challenge
	err        error
}

// chatRepliedMsg signals that a blocking chat exchange finished; the
// transcript itself lives in the chat session.
type chatRepliedMsg struct{}

// graphFrameMsg asks for a repaint because the simulation advanced.
type graphFrameMsg struct{}

// storeChangedMsg asks for a repaint because a notifying state update
// was applied outside a keystroke handler.
type storeChangedMsg struct{}

const requestTimeout = 30 * time.Second

// ====================================================================
// Commands
// ====================================================================

func (m *Model) fetchRepoCmd(gen uint64, owner, repo string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		info, tree, err := m.github.FetchRepository(ctx, owner, repo)
		return repoFetchedMsg{gen: gen, info: info, tree: tree, err: err}
	}
}

func (m *Model) fetchTrendingCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		repos, err := m.github.TrendingRepositories(ctx)
		return trendingMsg{repos: repos, err: err}
	}
}

func (m *Model) fetchFileCmd(owner, repo, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		content, err := m.github.FetchFileContent(ctx, owner, repo, path)
		return fileContentMsg{path: path, content: content, err: err}
	}
}

func (m *Model) explainCmd(file ai.FileContext) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		text, err := m.assistant.ExplainFile(ctx, file)
		return explainMsg{path: file.Path, text: text, err: err}
	}
}

func (m *Model) learningPathCmd(repo ai.RepoContext) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := m.assistant.LearningPath(ctx, repo)
		return learnPathMsg{repoFullName: repo.FullName, path: p, err: err}
	}
}

func (m *Model) challengesCmd(key learn.ChallengeKey, mod ai.ModuleContext) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		cs, err := m.assistant.GenerateChallenges(ctx, mod)
		return challengesMsg{key: key, challenges: cs, err: err}
	}
}

func (m *Model) chatCmd(text string, repo ai.RepoContext) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		m.chat.Send(ctx, text, repo)
		return chatRepliedMsg{}
	}
}

// waitFrameCmd blocks until the graph simulation produces a frame.
// Re-issued after every graphFrameMsg so the loop keeps running.
func (m *Model) waitFrameCmd() tea.Cmd {
	return func() tea.Msg {
		<-m.frames
		return graphFrameMsg{}
	}
}

// waitStoreCmd blocks until a store notification arrives from outside
// the Update loop.
func (m *Model) waitStoreCmd() tea.Cmd {
	return func() tea.Msg {
		<-m.storeEvents
		return storeChangedMsg{}
	}
}

// friendlyError maps the error taxonomy to a one-line user message.
func friendlyError(err error) string {
	var input *githost.UserInputError
	if errors.As(err, &input) {
		return input.Reason
	}
	var notFound *githost.NotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("%s was not found. Is it public?", notFound.Resource)
	}
	var limited *githost.RateLimitedError
	if errors.As(err, &limited) {
		return fmt.Sprintf("GitHub rate limit hit; try again in %s", limited.RetryAfter().Round(time.Second))
	}
	return "Something went wrong: " + err.Error()
}
