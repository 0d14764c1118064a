// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store holds the single mutable application state and its
// subscriber list.
//
// # Description
//
// The whole base UI is rendered as a function of one AppState value.
// Every mutation goes through SetState or one of the intention-revealing
// action helpers, which encode the correct silent/non-silent choice for
// each transition. A silent update keeps the single source of truth
// consistent without triggering a full re-render; it exists so that
// keystroke-level input mirroring and graph-driven file selection cannot
// tear down live UI resources.
//
// # Thread Safety
//
// All methods are mutex-protected. Subscribers run synchronously, with
// the lock released, in registration order.
package store

import (
	"sync"

	"github.com/reposage/reposage/internal/githost"
)

// View selects the top-level render branch.
type View int

const (
	// ViewLanding is the URL-entry landing screen.
	ViewLanding View = iota

	// ViewRepo is the repository exploration screen.
	ViewRepo
)

// String returns the view name.
func (v View) String() string {
	switch v {
	case ViewLanding:
		return "landing"
	case ViewRepo:
		return "repo"
	default:
		return "unknown"
	}
}

// AppState is the single application state object. It is replaced
// wholesale on every update; callers receive value copies and can never
// mutate stored state through them.
type AppState struct {
	// View controls the top-level render branch.
	View View

	// RepoURL mirrors the URL input. Free text until validated.
	RepoURL string

	// Loading is true while an asynchronous repository fetch is
	// outstanding.
	Loading bool

	// Err is the last user-facing failure message. Cleared on the next
	// successful input or loading transition.
	Err string

	// CurrentRepo is an immutable metadata snapshot, fetched once per
	// exploration.
	CurrentRepo *githost.RepoInfo

	// FileTree is the root of the file/folder hierarchy.
	FileTree *githost.FileNode

	// SelectedFile is the currently inspected leaf. Nil means no file
	// is focused.
	SelectedFile *githost.FileNode

	// Generation is a monotonic counter bumped on every explore action.
	// A fetch result carrying a stale generation is discarded instead of
	// overwriting newer state.
	Generation uint64
}

func initialState() AppState {
	return AppState{View: ViewLanding}
}

// Listener observes non-silent state updates.
type Listener func(AppState)

type subscription struct {
	id int
	fn Listener
}

// Store owns the AppState and the subscriber list.
type Store struct {
	mu     sync.Mutex
	state  AppState
	subs   []subscription
	nextID int
}

// New creates a store holding the initial landing-view state.
func New() *Store {
	return &Store{state: initialState()}
}

// GetState returns a copy of the current state. The copy shares the
// immutable RepoInfo/FileNode pointers; mutating the copy's fields does
// not affect stored state.
func (s *Store) GetState() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState applies mutate to the current state. When silent is false,
// every registered subscriber is invoked, in registration order, with
// the post-merge state. When silent is true the state is updated but no
// subscriber runs.
func (s *Store) SetState(mutate func(*AppState), silent bool) {
	s.mu.Lock()
	mutate(&s.state)
	next := s.state
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if silent {
		return
	}
	for _, sub := range subs {
		sub.fn(next)
	}
}

// Subscribe registers a listener for non-silent updates and returns a
// function that removes it. Every listener sees every non-silent update
// regardless of which fields changed; there is no dependency tracking.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// ResetState restores all fields to their defaults and always notifies,
// even when called consecutively. Used when returning to the landing
// view.
func (s *Store) ResetState() {
	s.SetState(func(st *AppState) {
		gen := st.Generation
		*st = initialState()
		st.Generation = gen
	}, false)
}
