// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reposage/reposage/internal/chat"
)

// ====================================================================
// Chat sidebar
// ====================================================================

var (
	chatBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	chatTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	chatUserStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	chatAssistantStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))
)

// ChatPanel renders the chat session as a right-hand sidebar. It is an
// Overlay: its open/closed flag and transcript live in the session, not
// in application state.
type ChatPanel struct {
	session   *chat.Session
	inputView func() string
}

// NewChatPanel binds the panel to a session and the text input it
// should display when open.
func NewChatPanel(s *chat.Session, inputView func() string) *ChatPanel {
	return &ChatPanel{session: s, inputView: inputView}
}

func (p *ChatPanel) Active() bool { return p.session.IsOpen() }

func (p *ChatPanel) View(width, height int) string {
	inner := width - 3
	var b strings.Builder
	b.WriteString(chatTitleStyle.Render("Ask about this repo"))
	b.WriteString("\n\n")

	msgs := p.session.Messages()
	if len(msgs) == 0 {
		b.WriteString(dimStyle.Render("Ask anything about the code,\nstructure, or purpose of this\nrepository."))
		b.WriteString("\n")
	}

	// Show the most recent turns that fit.
	budget := height - 7
	lines := make([]string, 0, budget)
	for i := len(msgs) - 1; i >= 0 && len(lines) < budget; i-- {
		m := msgs[i]
		style := chatAssistantStyle
		prefix := "sage: "
		if m.Role == chat.RoleUser {
			style = chatUserStyle
			prefix = "you:  "
		}
		wrapped := wrap(prefix+m.Content, inner)
		// prepend, keeping turn order
		for j := len(wrapped) - 1; j >= 0 && len(lines) < budget; j-- {
			lines = append(lines, style.Render(wrapped[j]))
		}
		lines = append(lines, "")
	}
	for i := len(lines) - 1; i >= 0; i-- {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}

	if p.session.Loading() {
		b.WriteString(dimStyle.Render("thinking…"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if p.inputView != nil {
		b.WriteString(truncate(p.inputView(), inner))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send · esc close"))

	return chatBorderStyle.Width(width - 2).Height(height - 1).Render(
		strings.TrimRight(b.String(), "\n"))
}

// wrap splits s into lines no wider than width, breaking on spaces
// where possible.
func wrap(s string, width int) []string {
	if width < 4 {
		width = 4
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if lipgloss.Width(line)+1+lipgloss.Width(w) > width {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return out
}
