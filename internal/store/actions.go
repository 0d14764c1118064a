// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import "github.com/reposage/reposage/internal/githost"

// Action helpers. Each encodes one logical user-visible transition with
// the correct field combination and silent/non-silent choice, so callers
// produce exactly one notification per action that should redraw.

// SetLoading marks an asynchronous repository fetch as outstanding and
// clears any previous error. Notifying: the spinner must appear.
func (s *Store) SetLoading(loading bool) {
	s.SetState(func(st *AppState) {
		st.Loading = loading
		if loading {
			st.Err = ""
		}
	}, false)
}

// SetError surfaces a user-facing failure inline and clears loading.
func (s *Store) SetError(msg string) {
	s.SetState(func(st *AppState) {
		st.Err = msg
		st.Loading = false
	}, false)
}

// SetRepoURL mirrors the URL input. Silent: keystroke-level entry must
// not re-render (and refocus) the input on every character.
func (s *Store) SetRepoURL(url string) {
	s.SetState(func(st *AppState) {
		st.RepoURL = url
	}, true)
}

// NextGeneration bumps the explore-request generation and returns the
// new value. Silent: bumping alone changes nothing visible.
func (s *Store) NextGeneration() uint64 {
	var gen uint64
	s.SetState(func(st *AppState) {
		st.Generation++
		gen = st.Generation
	}, true)
	return gen
}

// SetRepoData atomically installs a fetched repository: metadata, tree,
// view switch, loading and error cleared, in a single notification
// rather than four. SelectedFile keeps its prior value.
func (s *Store) SetRepoData(info *githost.RepoInfo, tree *githost.FileNode) {
	s.SetState(func(st *AppState) {
		st.CurrentRepo = info
		st.FileTree = tree
		st.View = ViewRepo
		st.Loading = false
		st.Err = ""
	}, false)
}

// SelectFile focuses a file and notifies, driving a full re-render of
// the detail panel. Tree-view selection uses this path.
func (s *Store) SelectFile(node *githost.FileNode) {
	s.SetState(func(st *AppState) {
		st.SelectedFile = node
	}, false)
}

// SelectFileSilent focuses a file without notifying. Graph-view
// selection uses this path so the running simulation is not destroyed
// by an incidental full re-render; interested panels are told through
// the visualization controller's observer registration instead.
func (s *Store) SelectFileSilent(node *githost.FileNode) {
	s.SetState(func(st *AppState) {
		st.SelectedFile = node
	}, true)
}

// GoToLanding returns to the landing view, dropping the explored
// repository. Always notifies.
func (s *Store) GoToLanding() {
	s.ResetState()
}
