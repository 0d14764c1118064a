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

	"github.com/reposage/reposage/internal/gamify"
)

// ====================================================================
// Challenge modal
// ====================================================================

var (
	modalBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("212")).
				Padding(1, 2)

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	optionCursorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true)

	correctStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78")).
			Bold(true)

	wrongStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)
)

// ChallengeOverlay renders the quiz session as a centered modal. The
// option cursor is the overlay's own: it never touches application
// state and resets on every question.
type ChallengeOverlay struct {
	session     *gamify.Session
	spinnerView func() string

	cursor   int
	cursorAt int // question index the cursor belongs to
}

// NewChallengeOverlay binds the overlay to a quiz session.
func NewChallengeOverlay(s *gamify.Session, spinnerView func() string) *ChallengeOverlay {
	return &ChallengeOverlay{session: s, spinnerView: spinnerView}
}

func (o *ChallengeOverlay) Active() bool {
	return o.session.Phase() != gamify.PhaseIdle
}

// MoveCursor moves the option highlight, clamped to the current
// question's options.
func (o *ChallengeOverlay) MoveCursor(delta int) {
	c, idx, _ := o.session.Current()
	if c == nil {
		return
	}
	o.syncCursor(idx)
	o.cursor += delta
	if o.cursor < 0 {
		o.cursor = 0
	}
	if o.cursor >= len(c.Options) {
		o.cursor = len(c.Options) - 1
	}
}

// SelectedOption returns the option text under the cursor, or "".
func (o *ChallengeOverlay) SelectedOption() string {
	c, idx, _ := o.session.Current()
	if c == nil || len(c.Options) == 0 {
		return ""
	}
	o.syncCursor(idx)
	return c.Options[o.cursor]
}

func (o *ChallengeOverlay) syncCursor(questionIdx int) {
	if o.cursorAt != questionIdx {
		o.cursorAt = questionIdx
		o.cursor = 0
	}
}

func (o *ChallengeOverlay) View(width, height int) string {
	inner := width - 6
	var b strings.Builder

	switch o.session.Phase() {
	case gamify.PhaseLoading:
		spin := ""
		if o.spinnerView != nil {
			spin = o.spinnerView() + " "
		}
		b.WriteString(dimStyle.Render(spin + "writing challenge questions…"))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("esc cancel"))

	case gamify.PhaseQuestion:
		c, idx, total := o.session.Current()
		o.syncCursor(idx)
		b.WriteString(dimStyle.Render(fmt.Sprintf("Question %d of %d · %d pts", idx+1, total, c.Points)))
		b.WriteString("\n\n")
		b.WriteString(wrapText(questionStyle.Render(c.Question), inner))
		b.WriteString("\n\n")
		for i, opt := range c.Options {
			if i == o.cursor {
				b.WriteString(optionCursorStyle.Render("› " + opt))
			} else {
				b.WriteString(optionStyle.Render("  " + opt))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("j/k move · enter answer · s skip · esc quit"))

	case gamify.PhaseFeedback:
		c, idx, total := o.session.Current()
		_, correct, skipped := o.session.LastOutcome()
		b.WriteString(dimStyle.Render(fmt.Sprintf("Question %d of %d", idx+1, total)))
		b.WriteString("\n\n")
		switch {
		case skipped:
			b.WriteString(dimStyle.Render("Skipped."))
		case correct:
			b.WriteString(correctStyle.Render(fmt.Sprintf("✓ Correct! +%d XP", c.Points)))
		default:
			b.WriteString(wrongStyle.Render("✗ Not quite."))
			b.WriteString("\n")
			b.WriteString(dimStyle.Render("Answer: " + c.CorrectAnswer))
		}
		if c.Explanation != "" {
			b.WriteString("\n\n")
			b.WriteString(wrapText(c.Explanation, inner))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue"))

	case gamify.PhaseResults:
		correct, answered, skipped, points := o.session.Summary()
		b.WriteString(titleStyle.Render("Challenge complete"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			correctStyle.Render(fmt.Sprintf("%d correct", correct)),
			wrongStyle.Render(fmt.Sprintf("%d wrong", answered-correct)),
			dimStyle.Render(fmt.Sprintf("%d skipped", skipped))))
		b.WriteString(xpStyle.Render(fmt.Sprintf("+%d XP earned", points)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter close"))
	}

	return modalBorderStyle.Width(width).Render(
		strings.TrimRight(b.String(), "\n"))
}

func wrapText(s string, width int) string {
	return strings.Join(wrap(s, width), "\n")
}
