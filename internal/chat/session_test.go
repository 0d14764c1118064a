// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reposage/reposage/internal/ai"
)

type fakeResponder struct {
	reply   string
	err     error
	history []ai.Turn
}

func (f *fakeResponder) Chat(_ context.Context, _ string, _ ai.RepoContext, history []ai.Turn) (string, error) {
	f.history = history
	return f.reply, f.err
}

func TestSendAppendsBothTurns(t *testing.T) {
	f := &fakeResponder{reply: "It renders the tree."}
	s := NewSession(f)

	s.Send(context.Background(), "What does render.go do?", ai.RepoContext{FullName: "a/b"})

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "It renders the tree.", msgs[1].Content)
	assert.False(t, s.Loading())
}

func TestSendErrorBecomesInlineAssistantTurn(t *testing.T) {
	f := &fakeResponder{err: errors.New("service unavailable")}
	s := NewSession(f)

	s.Send(context.Background(), "hello", ai.RepoContext{})

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "service unavailable")
	assert.False(t, s.Loading(), "loading clears even on failure")
}

func TestSendPassesPriorHistoryOnly(t *testing.T) {
	f := &fakeResponder{reply: "ok"}
	s := NewSession(f)

	s.Send(context.Background(), "first", ai.RepoContext{})
	s.Send(context.Background(), "second", ai.RepoContext{})

	require.Len(t, f.history, 2, "history excludes the message being sent")
	assert.Equal(t, "first", f.history[0].Content)
	assert.Equal(t, "ok", f.history[1].Content)
}

func TestSendIgnoresEmptyInput(t *testing.T) {
	s := NewSession(&fakeResponder{reply: "x"})
	s.Send(context.Background(), "", ai.RepoContext{})
	assert.Empty(t, s.Messages())
}

func TestResetDiscardsConversation(t *testing.T) {
	s := NewSession(&fakeResponder{reply: "x"})
	s.Toggle()
	s.Send(context.Background(), "hello", ai.RepoContext{})
	require.True(t, s.IsOpen())

	s.Reset()
	assert.False(t, s.IsOpen())
	assert.Empty(t, s.Messages())
}
