// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cachestore

import (
	"time"

	"github.com/reposage/reposage/internal/gamify"
	"github.com/reposage/reposage/internal/githost"
	"github.com/reposage/reposage/internal/learn"
)

// RepoSnapshot pairs the metadata and tree fetched for one exploration.
type RepoSnapshot struct {
	Info githost.RepoInfo  `json:"info"`
	Tree *githost.FileNode `json:"tree"`
}

// SaveRepoSnapshot caches a fetched repository for one hour.
func (s *Store) SaveRepoSnapshot(snap RepoSnapshot) {
	s.putJSON("repo:"+snap.Info.FullName, snap, repoSnapshotTTL)
}

// LoadRepoSnapshot returns a cached repository, if fresh.
func (s *Store) LoadRepoSnapshot(fullName string) (RepoSnapshot, bool) {
	var snap RepoSnapshot
	ok := s.getJSON("repo:"+fullName, &snap)
	return snap, ok
}

// SaveTrending caches the landing view's trending list.
func (s *Store) SaveTrending(repos []githost.RepoInfo) {
	s.putJSON("trending", repos, trendingTTL)
}

// LoadTrending returns the cached trending list, if fresh.
func (s *Store) LoadTrending() ([]githost.RepoInfo, bool) {
	var repos []githost.RepoInfo
	ok := s.getJSON("trending", &repos)
	return repos, ok
}

// HistoryEntry is one explored repository, most recent first.
type HistoryEntry struct {
	FullName    string    `json:"full_name"`
	VisitedAt   time.Time `json:"visited_at"`
	Stars       int       `json:"stars"`
	Language    string    `json:"language"`
	Description string    `json:"description"`
}

// AddHistory prepends an exploration, de-duplicating by full name and
// capping the list.
func (s *Store) AddHistory(info githost.RepoInfo) {
	entries, _ := s.History()
	next := []HistoryEntry{{
		FullName:    info.FullName,
		VisitedAt:   s.now(),
		Stars:       info.Stars,
		Language:    info.Language,
		Description: info.Description,
	}}
	for _, e := range entries {
		if e.FullName == info.FullName {
			continue
		}
		next = append(next, e)
		if len(next) == historyLimit {
			break
		}
	}
	s.putJSON("history", next, 0)
}

// History returns explored repositories, most recent first.
func (s *Store) History() ([]HistoryEntry, bool) {
	var entries []HistoryEntry
	ok := s.getJSON("history", &entries)
	return entries, ok
}

// SaveLearningPath persists a generated path for a repository. Paths do
// not expire; module completion state is stored with them.
func (s *Store) SaveLearningPath(repoFullName string, p *learn.Path) {
	s.putJSON("path:"+repoFullName, p, 0)
}

// LoadLearningPath returns a previously saved path.
func (s *Store) LoadLearningPath(repoFullName string) (*learn.Path, bool) {
	var p learn.Path
	if !s.getJSON("path:"+repoFullName, &p) {
		return nil, false
	}
	return &p, true
}

// SaveChallengeSet caches a generated quiz for 24 hours, keyed by the
// typed (repository, module) composite.
func (s *Store) SaveChallengeSet(key learn.ChallengeKey, challenges []learn.Challenge) {
	s.putJSON("challenges:"+key.String(), challenges, challengeSetTTL)
}

// LoadChallengeSet returns a cached quiz, if fresh.
func (s *Store) LoadChallengeSet(key learn.ChallengeKey) ([]learn.Challenge, bool) {
	var challenges []learn.Challenge
	ok := s.getJSON("challenges:"+key.String(), &challenges)
	return challenges, ok
}

// LoadProgress implements gamify.ProgressStore.
func (s *Store) LoadProgress() (gamify.Progress, bool) {
	var p gamify.Progress
	ok := s.getJSON("progress", &p)
	return p, ok
}

// SaveProgress implements gamify.ProgressStore. Persisted synchronously
// after every mutation.
func (s *Store) SaveProgress(p gamify.Progress) {
	s.putJSON("progress", p, 0)
}

// ActiveTab returns the repo view's persisted tab selector, or "" when
// never set. Deliberately view-local: tab switching is not part of the
// application state object.
func (s *Store) ActiveTab() string {
	var tab string
	if !s.getJSON("prefs:active_tab", &tab) {
		return ""
	}
	return tab
}

// SetActiveTab persists the repo view's tab selector.
func (s *Store) SetActiveTab(tab string) {
	s.putJSON("prefs:active_tab", tab, 0)
}
