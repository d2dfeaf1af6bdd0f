// Package pipeline implements the daily processing stages: summarize,
// analyze, rank and generate, plus the orchestrator that sequences them
// together with the crawler. Stages are stateless between invocations;
// every stage reads its input from the store and writes its output back.
package pipeline

import (
	"context"
	"time"
)

// PendingIDs returns the candidate ids that have no counterpart in existing.
// The store offers no NOT-IN subqueries, so "pending" sets are computed here
// from both sides of the would-be anti-join, preserving candidate order.
func PendingIDs(candidates, existing []int64) []int64 {
	seen := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	var pending []int64
	for _, id := range candidates {
		if _, ok := seen[id]; !ok {
			pending = append(pending, id)
		}
	}
	return pending
}

// sleep pauses for d or until ctx is cancelled. Stages call it after every
// item regardless of outcome to stay under the model provider's rate limit.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
