// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gamify

import (
	"github.com/google/uuid"

	"github.com/reposage/reposage/internal/learn"
)

// Phase is the challenge-modal state.
//
// Idle → Loading → Question(i) → Feedback(i) → … → Results → Idle
type Phase int

const (
	// PhaseIdle means no live session.
	PhaseIdle Phase = iota

	// PhaseLoading means a challenge set is being generated.
	PhaseLoading

	// PhaseQuestion presents the current question.
	PhaseQuestion

	// PhaseFeedback shows the outcome of the current question.
	PhaseFeedback

	// PhaseResults summarizes the finished set.
	PhaseResults
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseQuestion:
		return "question"
	case PhaseFeedback:
		return "feedback"
	case PhaseResults:
		return "results"
	default:
		return "unknown"
	}
}

// Result is one per-question outcome.
type Result struct {
	Skipped bool
	Correct bool
	Points  int
}

// Session is the one live challenge set, at most one instance at a time.
// Created when a learning module is marked complete; destroyed when
// results are dismissed or generation aborts.
type Session struct {
	id      string
	key     learn.ChallengeKey
	tracker *Tracker

	phase      Phase
	challenges []learn.Challenge
	index      int
	results    []Result

	// last answer, for the feedback screen
	lastChoice  string
	lastCorrect bool
	lastSkipped bool
}

// NewSession creates an idle session bound to the durable tracker.
func NewSession(tracker *Tracker) *Session {
	return &Session{id: uuid.NewString(), tracker: tracker, phase: PhaseIdle}
}

// Phase returns the current state-machine phase.
func (s *Session) Phase() Phase { return s.phase }

// Key returns the (repository, module) identity of the live set.
func (s *Session) Key() learn.ChallengeKey { return s.key }

// BeginLoading enters Loading for the given module. Only legal from
// Idle; anything else is ignored.
func (s *Session) BeginLoading(key learn.ChallengeKey) {
	if s.phase != PhaseIdle {
		return
	}
	s.key = key
	s.phase = PhaseLoading
}

// Begin installs a generated (or cached) challenge set and moves to
// Question(0). An empty set aborts silently back to Idle: no partial
// session.
func (s *Session) Begin(key learn.ChallengeKey, challenges []learn.Challenge) {
	if len(challenges) == 0 {
		s.reset()
		return
	}
	s.key = key
	s.challenges = challenges
	s.index = 0
	s.results = make([]Result, 0, len(challenges))
	s.phase = PhaseQuestion
}

// Abort tears the session down without touching durable counters. Used
// for generation failures and user escape before Results.
func (s *Session) Abort() {
	s.reset()
}

// Current returns the live question plus its position (index, total).
// Nil when no session is running.
func (s *Session) Current() (*learn.Challenge, int, int) {
	if s.phase != PhaseQuestion && s.phase != PhaseFeedback {
		return nil, 0, 0
	}
	return &s.challenges[s.index], s.index, len(s.challenges)
}

// Answer records the chosen option for the current question. A choice
// whose text exactly equals the declared correct answer is correct:
// plain string equality, no normalization. The durable record is
// updated synchronously. Moves to Feedback.
func (s *Session) Answer(option string) {
	if s.phase != PhaseQuestion {
		return
	}
	q := s.challenges[s.index]
	correct := option == q.CorrectAnswer

	points := 0
	if correct {
		points = q.Points
	}
	s.results = append(s.results, Result{Correct: correct, Points: points})
	s.tracker.RecordAnswer(correct, q.Points)

	s.lastChoice = option
	s.lastCorrect = correct
	s.lastSkipped = false
	s.phase = PhaseFeedback
}

// Skip advances past the current question without awarding points and
// without touching the streak. Moves to Feedback.
func (s *Session) Skip() {
	if s.phase != PhaseQuestion {
		return
	}
	s.results = append(s.results, Result{Skipped: true})
	s.lastChoice = ""
	s.lastCorrect = false
	s.lastSkipped = true
	s.phase = PhaseFeedback
}

// Advance moves from Feedback to the next Question, or to Results past
// the last question.
func (s *Session) Advance() {
	if s.phase != PhaseFeedback {
		return
	}
	if s.index+1 < len(s.challenges) {
		s.index++
		s.phase = PhaseQuestion
		return
	}
	s.phase = PhaseResults
}

// Dismiss leaves Results: the durable completed-sets counter is
// incremented exactly once per completed set, then the session is torn
// down.
func (s *Session) Dismiss() {
	if s.phase != PhaseResults {
		return
	}
	s.tracker.CompleteChallengeSet()
	s.reset()
}

// Summary reports the finished (or in-flight) set's totals.
func (s *Session) Summary() (correct, answered, skipped, points int) {
	for _, r := range s.results {
		if r.Skipped {
			skipped++
			continue
		}
		answered++
		if r.Correct {
			correct++
			points += r.Points
		}
	}
	return correct, answered, skipped, points
}

// LastOutcome describes the most recent question for the feedback
// screen: the chosen option, whether it was correct, and whether it was
// skipped.
func (s *Session) LastOutcome() (choice string, correct, skipped bool) {
	return s.lastChoice, s.lastCorrect, s.lastSkipped
}

func (s *Session) reset() {
	s.id = uuid.NewString()
	s.key = learn.ChallengeKey{}
	s.phase = PhaseIdle
	s.challenges = nil
	s.index = 0
	s.results = nil
	s.lastChoice = ""
	s.lastCorrect = false
	s.lastSkipped = false
}
