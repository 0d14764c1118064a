// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/reposage/reposage/internal/ai"
	"github.com/reposage/reposage/internal/app"
	"github.com/reposage/reposage/internal/cachestore"
	"github.com/reposage/reposage/internal/config"
	"github.com/reposage/reposage/internal/gamify"
	"github.com/reposage/reposage/internal/githost"
	"github.com/reposage/reposage/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "reposage",
	Short: "Explore GitHub repositories with AI guidance in your terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI("")
	},
}

var exploreCmd = &cobra.Command{
	Use:   "explore <owner/repo or URL>",
	Short: "Open the explorer directly on a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(args[0])
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Print your learning progress and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := cachestore.Open(dataDir(), logger.Slog())
		if err != nil {
			return fmt.Errorf("failed to open the local cache: %w", err)
		}
		defer cache.Close()

		p := gamify.NewTracker(cache).Progress()
		fmt.Printf("Total XP:             %d\n", p.TotalXP)
		fmt.Printf("Current streak:       %d\n", p.CurrentStreak)
		fmt.Printf("Longest streak:       %d\n", p.LongestStreak)
		fmt.Printf("Challenges completed: %d\n", p.ChallengesCompleted)
		fmt.Printf("Answers:              %d (%.0f%% correct)\n", p.TotalAnswers, p.Accuracy()*100)
		if p.LastActivityDate != "" {
			fmt.Printf("Last activity:        %s\n", p.LastActivityDate)
		}
		return nil
	},
}

func runTUI(exploreArg string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("reposage is interactive and needs a terminal")
	}

	if config.NeedsSetup(cfg) {
		if err := config.RunSetup(cfgPath, &cfg); err != nil {
			return err
		}
	}
	if cfg.AI.APIKey == "" {
		return fmt.Errorf("no AI API key configured; set OPENAI_API_KEY or edit %s", cfgPath)
	}

	log := logger.Slog()
	cache, err := cachestore.Open(dataDir(), log)
	if err != nil {
		return fmt.Errorf("failed to open the local cache: %w", err)
	}
	defer cache.Close()

	assistant, err := ai.New(ai.Config{
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		BaseURL: cfg.AI.BaseURL,
	}, log)
	if err != nil {
		return err
	}

	model := app.New(app.Deps{
		Store:     store.New(),
		Cache:     cache,
		GitHub:    githost.NewClient(cfg.GitHub.Token, "", log),
		Assistant: assistant,
		Tracker:   gamify.NewTracker(cache),
		Log:       log,
	})
	defer model.Close()
	if exploreArg != "" {
		model.SetInitialRepo(exploreArg)
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func dataDir() string {
	return filepath.Join(cfg.DataDir, "cache")
}
