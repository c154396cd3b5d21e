// internal/probe/retrychecker.go
package probe

import (
	"context"
	"time"
)

// RetryChecker wraps another Checker and re-runs failed probes. The CLI runs
// with Attempts=1 (a diagnostic probe reports what it saw, it does not
// retry); the API and the scheduler may opt in.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, browseID string) Outcome {
	if r.Attempts < 1 {
		r.Attempts = 1
	}
	var last Outcome
	for i := 0; i < r.Attempts; i++ {
		last = r.Inner.Check(ctx, browseID)
		if last.Success() {
			return last
		}
		if i < r.Attempts-1 {
			time.Sleep(r.Backoff)
		}
	}
	if r.Attempts > 1 && last.Err != "" {
		last.Err = last.Err + " (after retries)"
	}
	return last
}
