// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package chat holds the sidebar conversation state.
//
// The session lives outside the application state store: its own
// updates repaint the sidebar without triggering, or being torn down
// by, a full-page re-render. Messages are kept in memory only and are
// discarded when the user leaves the repository view.
package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/reposage/reposage/internal/ai"
)

// Role identifies a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Responder answers one chat message with context and history. The AI
// assistant implements it; tests substitute fakes.
type Responder interface {
	Chat(ctx context.Context, message string, repo ai.RepoContext, history []ai.Turn) (string, error)
}

// Session is the per-repo-visit conversation.
//
// Thread Safety: Send runs in a background command goroutine while the
// render loop reads; all state is mutex-protected.
type Session struct {
	mu        sync.Mutex
	responder Responder
	open      bool
	loading   bool
	messages  []Message
}

// NewSession creates a closed, empty session.
func NewSession(responder Responder) *Session {
	return &Session{responder: responder}
}

// Toggle flips the sidebar open or closed.
func (s *Session) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
}

// IsOpen reports whether the sidebar is showing.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Loading reports whether a reply is outstanding.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send appends the user message, asks the responder with the trailing
// history as context, and appends the reply. A failure becomes an
// inline assistant-turn error message rather than propagating: a chat
// failure must not disturb unrelated panels.
func (s *Session) Send(ctx context.Context, text string, repo ai.RepoContext) {
	s.mu.Lock()
	if s.loading || text == "" {
		s.mu.Unlock()
		return
	}
	s.messages = append(s.messages, Message{Role: RoleUser, Content: text})
	history := s.historyLocked()
	s.loading = true
	s.mu.Unlock()

	reply, err := s.responder.Chat(ctx, text, repo, history)
	if err != nil {
		reply = fmt.Sprintf("Sorry, I couldn't answer that: %v", err)
	}

	s.mu.Lock()
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: reply})
	s.loading = false
	s.mu.Unlock()
}

// Reset closes the sidebar and discards the conversation. Called when
// returning to the landing view.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.loading = false
	s.messages = nil
}

// historyLocked converts all turns before the just-appended user
// message; the responder applies its own window.
func (s *Session) historyLocked() []ai.Turn {
	if len(s.messages) == 0 {
		return nil
	}
	prior := s.messages[:len(s.messages)-1]
	history := make([]ai.Turn, 0, len(prior))
	for _, m := range prior {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		history = append(history, ai.Turn{Role: role, Content: m.Content})
	}
	return history
}
