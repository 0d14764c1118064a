// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package gamify owns durable learning progress and the challenge-modal
// state machine.
//
// Both live deliberately outside the application state store: every
// challenge transition happens inside a transient overlay that must not
// be discarded by, and must not trigger, a full-page re-render.
package gamify

import "time"

// Progress is the durable gamification record. Created lazily on first
// read with all-zero defaults; mutated only through RecordAnswer and
// CompleteChallengeSet; persisted synchronously after each mutation.
type Progress struct {
	TotalXP             int    `json:"total_xp"`
	CurrentStreak       int    `json:"current_streak"`
	LongestStreak       int    `json:"longest_streak"`
	ChallengesCompleted int    `json:"challenges_completed"`
	CorrectAnswers      int    `json:"correct_answers"`
	TotalAnswers        int    `json:"total_answers"`
	LastActivityDate    string `json:"last_activity_date"`
}

// Accuracy returns the fraction of answered questions that were correct,
// in [0,1]. Zero when nothing has been answered.
func (p Progress) Accuracy() float64 {
	if p.TotalAnswers == 0 {
		return 0
	}
	return float64(p.CorrectAnswers) / float64(p.TotalAnswers)
}

// ProgressStore persists Progress. Implemented by the cache layer;
// failures there are swallowed, so these calls cannot fail.
type ProgressStore interface {
	LoadProgress() (Progress, bool)
	SaveProgress(Progress)
}

// Tracker applies progress mutations and persists each one.
type Tracker struct {
	store ProgressStore
	now   func() time.Time
}

// NewTracker creates a tracker over the given store.
func NewTracker(store ProgressStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Progress returns the durable record, defaulting to all-zero when none
// has ever been written.
func (t *Tracker) Progress() Progress {
	p, _ := t.store.LoadProgress()
	return p
}

// RecordAnswer applies one non-skipped answer: XP increases by points
// only when correct, the streak increments on correct and resets to
// zero on incorrect. Skips never reach this method.
func (t *Tracker) RecordAnswer(correct bool, points int) Progress {
	p := t.Progress()
	p.TotalAnswers++
	if correct {
		p.CorrectAnswers++
		p.TotalXP += points
		p.CurrentStreak++
		if p.CurrentStreak > p.LongestStreak {
			p.LongestStreak = p.CurrentStreak
		}
	} else {
		p.CurrentStreak = 0
	}
	p.LastActivityDate = t.now().Format("2006-01-02")
	t.store.SaveProgress(p)
	return p
}

// CompleteChallengeSet increments the completed-sets counter exactly
// once, independent of how many questions were answered correctly.
func (t *Tracker) CompleteChallengeSet() Progress {
	p := t.Progress()
	p.ChallengesCompleted++
	p.LastActivityDate = t.now().Format("2006-01-02")
	t.store.SaveProgress(p)
	return p
}
