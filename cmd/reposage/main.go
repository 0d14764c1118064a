// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command reposage is a terminal GitHub repository explorer with AI
// explanations, learning paths, quiz challenges, and progress tracking.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reposage/reposage/internal/config"
	"github.com/reposage/reposage/internal/logging"
)

var (
	cfg     config.Config
	cfgPath string
	verbose bool
	logger  *logging.Logger
)

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.yaml (default ~/.reposage/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			var err error
			cfgPath, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger = logging.New(logging.Config{
			Verbose: verbose,
			Dir:     filepath.Join(cfg.DataDir, "logs"),
		})
		return nil
	}

	rootCmd.AddCommand(exploreCmd, progressCmd)
}
