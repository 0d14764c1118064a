// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// NeedsSetup reports whether the interactive first-run form should be
// shown: no API key anywhere and a real terminal to ask on.
func NeedsSetup(cfg Config) bool {
	return cfg.AI.APIKey == "" && isatty.IsTerminal(os.Stdin.Fd())
}

// RunSetup walks the user through the first-run form and persists the
// answers. The API key is required; everything else keeps its default.
func RunSetup(path string, cfg *Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API key").
				Description("Used for file explanations, learning paths, and quizzes.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.AI.APIKey).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("an API key is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Model").
				Description("Any chat-completion model your endpoint serves.").
				Value(&cfg.AI.Model),
			huh.NewInput().
				Title("GitHub token (optional)").
				Description("Raises the API rate limit from 60 to 5000 requests/hour.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.GitHub.Token),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if err := Save(path, *cfg); err != nil {
		return fmt.Errorf("failed to save the config: %w", err)
	}
	return nil
}
