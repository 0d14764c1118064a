// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package learn defines the AI-generated curriculum model: learning
// paths, their modules, and the quiz challenges tied to a module.
package learn

import "fmt"

// Path is a generated curriculum for one repository.
type Path struct {
	Overview      string   `json:"overview"`
	Prerequisites []string `json:"prerequisites"`
	Modules       []Module `json:"modules"`
	Projects      []string `json:"projects"`

	// RawFallback carries the assistant's unparsed answer when
	// structured extraction failed; Overview holds the raw text then.
	RawFallback bool `json:"raw_fallback,omitempty"`
}

// Module is one step of a learning path.
type Module struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Files         []string `json:"files"`
	Objectives    []string `json:"objectives"`
	EstimatedTime string   `json:"estimated_time"`

	// Completed is toggled by the user and persisted with the stored
	// path. Marking a module complete triggers the challenge flow.
	Completed bool `json:"completed"`
}

// Challenge is one generated quiz question.
type Challenge struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points"`
}

// ChallengeKey identifies a cached challenge set: one set per
// (repository, module) pair. A typed composite key, not string
// concatenation, so distinct repositories can never collide.
type ChallengeKey struct {
	RepoFullName string
	ModuleIndex  int
}

// String renders the key deterministically for storage.
func (k ChallengeKey) String() string {
	return fmt.Sprintf("%s#%d", k.RepoFullName, k.ModuleIndex)
}
