// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ai

import (
	"fmt"
	"strings"
)

const explainSystemPrompt = `You are a senior engineer explaining source code to a learner.
Answer in concise markdown: what the file does, its key pieces, and how it fits the project.`

const learningPathSystemPrompt = `You design learning curricula for codebases.
Respond with JSON only, matching exactly:
{
  "overview": "string",
  "prerequisites": ["string"],
  "modules": [
    {
      "title": "string",
      "description": "string",
      "files": ["path"],
      "objectives": ["string"],
      "estimated_time": "string"
    }
  ],
  "projects": ["string"]
}`

const challengeSystemPrompt = `You write multiple-choice quiz questions about a codebase.
Respond with a JSON array only, each element matching exactly:
{
  "id": "string",
  "type": "multiple-choice",
  "question": "string",
  "options": ["string", "string", "string", "string"],
  "correctAnswer": "string equal to one option",
  "explanation": "string",
  "points": 10
}`

func explainPrompt(file FileContext, content string) string {
	return fmt.Sprintf("Repository: %s\nFile: %s\nLanguage: %s\n\n```\n%s\n```\n\nExplain this file.",
		file.RepoFullName, file.Path, file.Language, content)
}

func learningPathPrompt(repo RepoContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", repo.FullName)
	if repo.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", repo.Description)
	}
	if repo.Language != "" {
		fmt.Fprintf(&b, "Primary language: %s\n", repo.Language)
	}
	if repo.TreeOutline != "" {
		fmt.Fprintf(&b, "\nStructure:\n%s\n", repo.TreeOutline)
	}
	b.WriteString("\nCreate a learning path of 4-6 modules for understanding this codebase.")
	return b.String()
}

func chatSystemPrompt(repo RepoContext) string {
	var b strings.Builder
	b.WriteString("You are a helpful guide for the repository ")
	b.WriteString(repo.FullName)
	b.WriteString(".")
	if repo.Description != "" {
		fmt.Fprintf(&b, " Description: %s.", repo.Description)
	}
	if repo.TreeOutline != "" {
		fmt.Fprintf(&b, "\nStructure:\n%s", repo.TreeOutline)
	}
	b.WriteString("\nAnswer questions about this codebase concisely.")
	return b.String()
}

func challengePrompt(mod ModuleContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\nModule: %s\n", mod.RepoFullName, mod.ModuleTitle)
	if mod.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", mod.Description)
	}
	if len(mod.Files) > 0 {
		fmt.Fprintf(&b, "Files studied: %s\n", strings.Join(mod.Files, ", "))
	}
	if len(mod.Objectives) > 0 {
		fmt.Fprintf(&b, "Objectives: %s\n", strings.Join(mod.Objectives, "; "))
	}
	b.WriteString("\nWrite 3-5 multiple-choice questions testing these objectives.")
	return b.String()
}
