// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package githost

import (
	"fmt"
	"time"
)

// UserInputError reports a malformed or empty repository URL. It is
// surfaced inline near the input and never propagated past the handler
// that triggered validation.
type UserInputError struct {
	Input  string
	Reason string
}

func (e *UserInputError) Error() string {
	return e.Reason
}

// NotFoundError reports a 404 from the host for a repository or path.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// RateLimitedError reports an exhausted API quota. ResetAt is taken from
// the host's rate-limit headers and drives the retry-after hint.
type RateLimitedError struct {
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exhausted, resets at %s", e.ResetAt.Format(time.Kitchen))
}

// RetryAfter returns how long until the quota resets, floored at zero.
func (e *RateLimitedError) RetryAfter() time.Duration {
	d := time.Until(e.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}
