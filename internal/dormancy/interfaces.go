// Package dormancy classifies tracked accounts as active or dormant and
// runs the fetch-and-merge cycle that keeps the activity database current.
package dormancy

import (
	"context"
	"time"

	"github.com/spiffcs/dormant/internal/model"
)

// FetchContext carries check-scoped information into an ActivityFetcher.
type FetchContext struct {
	// LastFetchTime is the lower bound of the activity window: the
	// caller-supplied override, or the store's last successful run.
	LastFetchTime time.Time

	// CheckType identifies the check requesting the fetch.
	CheckType string

	// DryRun is true when side effects must be suppressed.
	DryRun bool
}

// ActivityFetcher produces a batch of fresh activity records. A fetcher
// must not fail for expected "no data" cases; return an empty batch
// instead. A returned error aborts the whole cycle.
type ActivityFetcher interface {
	Fetch(ctx context.Context, fc FetchContext) ([]model.Account, error)
}

// DormancyPredicate decides whether an account counts as dormant at the
// given instant. The default compares inactivity against the engine
// threshold and treats unknown activity as dormant.
type DormancyPredicate interface {
	IsDormant(a model.Account, now time.Time) (bool, error)
}

// WhitelistPredicate exempts accounts from dormancy classification.
// The default whitelists nothing.
type WhitelistPredicate interface {
	IsWhitelisted(a model.Account) (bool, error)
}

// RemovalHook removes an account from the upstream source. The boolean
// reports whether the hook actually performed the removal. A nil hook
// means removal is not supported.
type RemovalHook interface {
	Remove(ctx context.Context, a model.Account) (bool, error)
}

// Recorder is the per-account persistence step of a fetch cycle. The
// default upserts into the activity store; override it to redirect
// persistence elsewhere.
type Recorder interface {
	Record(ctx context.Context, a model.Account) error
}
