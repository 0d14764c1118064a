// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ai is the AI collaborator: four independent request/response
// operations (explain, learning path, chat, challenge generation) over
// an OpenAI-compatible chat-completion endpoint.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/reposage/reposage/internal/learn"
)

const (
	defaultModel = "gpt-4o-mini"

	// maxFileChars bounds the file excerpt sent with explain requests.
	maxFileChars = 8000

	// HistoryWindow is how many prior turns accompany a chat request.
	HistoryWindow = 8
)

// Turn is one prior conversation message.
type Turn struct {
	Role    string // openai.ChatMessageRoleUser or ...Assistant
	Content string
}

// RepoContext describes the explored repository for prompt building.
type RepoContext struct {
	FullName    string
	Description string
	Language    string
	TreeOutline string // indented top-level listing
}

// FileContext describes one file for explanation.
type FileContext struct {
	RepoFullName string
	Path         string
	Language     string
	Content      string
}

// ModuleContext describes one learning module for challenge generation.
type ModuleContext struct {
	RepoFullName string
	ModuleTitle  string
	Description  string
	Files        []string
	Objectives   []string
}

// Config configures the assistant.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional proxy in front of the real endpoint
}

// Assistant issues chat-completion requests.
//
// Thread Safety: safe for concurrent use.
type Assistant struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// New creates an assistant. The API key is required; the base URL is
// optional and lets the key-holding proxy sit between client and
// provider.
func New(cfg Config, logger *slog.Logger) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("AI API key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Assistant{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		log:    logger,
	}, nil
}

// ExplainFile returns a markdown explanation of one file.
func (a *Assistant) ExplainFile(ctx context.Context, file FileContext) (string, error) {
	return a.complete(ctx, explainSystemPrompt, explainPrompt(file, truncate(file.Content, maxFileChars)))
}

// truncate bounds s to at most limit bytes without splitting a UTF-8
// sequence. The cut backs up to the nearest rune start.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// LearningPath generates a structured curriculum for the repository.
// When the response cannot be parsed as the expected JSON shape, the
// raw text is returned as a fallback path rather than an error.
func (a *Assistant) LearningPath(ctx context.Context, repo RepoContext) (*learn.Path, error) {
	raw, err := a.complete(ctx, learningPathSystemPrompt, learningPathPrompt(repo))
	if err != nil {
		return nil, err
	}

	var p learn.Path
	if jerr := json.Unmarshal([]byte(extractJSON(raw)), &p); jerr != nil || len(p.Modules) == 0 {
		a.log.Warn("learning path response not structured, using raw fallback",
			"repo", repo.FullName)
		return &learn.Path{Overview: raw, RawFallback: true}, nil
	}
	return &p, nil
}

// Chat answers one user message with repository context and the last
// HistoryWindow turns of conversation.
func (a *Assistant) Chat(ctx context.Context, message string, repo RepoContext, history []Turn) (string, error) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt(repo)},
	}
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	for _, t := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: msgs,
	})
	if err != nil {
		a.log.Error("chat completion failed", "error", err)
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("assistant returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateChallenges generates a quiz for one learning module. Returned
// challenges always carry an ID and a positive point value.
func (a *Assistant) GenerateChallenges(ctx context.Context, mod ModuleContext) ([]learn.Challenge, error) {
	raw, err := a.complete(ctx, challengeSystemPrompt, challengePrompt(mod))
	if err != nil {
		return nil, err
	}

	challenges, err := parseChallenges(raw)
	if err != nil {
		return nil, fmt.Errorf("parse challenge response: %w", err)
	}
	return challenges, nil
}

func (a *Assistant) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		a.log.Error("completion failed", "error", err)
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("assistant returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseChallenges decodes the generated quiz, tolerating a fenced code
// block and either a bare array or an object with a "challenges" field.
func parseChallenges(raw string) ([]learn.Challenge, error) {
	text := extractJSON(raw)

	var challenges []learn.Challenge
	if err := json.Unmarshal([]byte(text), &challenges); err != nil {
		var wrapper struct {
			Challenges []learn.Challenge `json:"challenges"`
		}
		if werr := json.Unmarshal([]byte(text), &wrapper); werr != nil {
			return nil, err
		}
		challenges = wrapper.Challenges
	}

	for i := range challenges {
		if challenges[i].ID == "" {
			challenges[i].ID = uuid.NewString()
		}
		if challenges[i].Points <= 0 {
			challenges[i].Points = 10
		}
	}
	return challenges, nil
}

// extractJSON strips a markdown code fence and trims to the outermost
// JSON value. Models wrap structured answers inconsistently.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}
