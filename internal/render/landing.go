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
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/reposage/reposage/internal/store"
)

func (e *Engine) renderLanding(st store.AppState, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("RepoSage"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Learn any codebase, one repository at a time."))
	b.WriteString("\n\n")

	b.WriteString("Repository URL (owner/repo or a github.com link):\n")
	if e.inputView != nil {
		b.WriteString(e.inputView())
	}
	b.WriteString("\n")

	if st.Err != "" {
		b.WriteString(errorStyle.Render("✗ " + st.Err))
		b.WriteString("\n")
	}
	if st.Loading {
		spin := ""
		if e.spinnerView != nil {
			spin = e.spinnerView() + " "
		}
		b.WriteString(dimStyle.Render(spin + "fetching repository…"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(e.trending) > 0 {
		b.WriteString(titleStyle.Render("Trending"))
		b.WriteString("\n")
		for i, r := range e.trending {
			if i >= 5 {
				break
			}
			line := fmt.Sprintf("  %s %s %s",
				repoNameStyle.Render(r.FullName),
				statStyle.Render(fmt.Sprintf("★ %d", r.Stars)),
				dimStyle.Render(r.Language))
			b.WriteString(truncate(line, width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(e.history) > 0 {
		b.WriteString(titleStyle.Render("Recently explored"))
		b.WriteString("\n")
		for i, h := range e.history {
			if i >= 5 {
				break
			}
			b.WriteString(truncate(fmt.Sprintf("  %s %s",
				repoNameStyle.Render(h.FullName),
				dimStyle.Render(h.VisitedAt.Format("Jan 2"))), width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(e.renderRateFooter())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter explore · ctrl+c quit"))

	return lipgloss.NewStyle().Width(width).Height(e.height).Render(b.String())
}

func (e *Engine) renderRateFooter() string {
	if e.rateLimit == nil {
		return ""
	}
	rl := e.rateLimit()
	if rl.Limit == 0 {
		return ""
	}
	s := fmt.Sprintf("API quota %d/%d", rl.Remaining, rl.Limit)
	if rl.Remaining == 0 && !rl.ResetAt.IsZero() {
		s += fmt.Sprintf(", retry in %s", time.Until(rl.ResetAt).Round(time.Minute))
	}
	return dimStyle.Render(s)
}

// truncate cuts a rendered line to width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
