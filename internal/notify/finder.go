package notify

import (
	"context"

	"github.com/spiffcs/dormant/internal/log"
	"github.com/spiffcs/dormant/internal/model"
)

// FinderChain tries each finder in order, falling back to the next when
// one fails. This models the structured-search-first, list-and-filter
// second lookup strategy: the search backend is less reliable in some
// deployments, so its failure downgrades to the listing path instead of
// failing the account.
type FinderChain struct {
	finders []TicketFinder
}

// NewFinderChain builds a chain from the given finders.
func NewFinderChain(finders ...TicketFinder) *FinderChain {
	return &FinderChain{finders: finders}
}

// Find consults each finder until one answers. Only the last finder's
// error is surfaced; earlier failures are logged and skipped.
func (c *FinderChain) Find(ctx context.Context, login string) (*model.Ticket, error) {
	var lastErr error
	for i, f := range c.finders {
		t, err := f.Find(ctx, login)
		if err != nil {
			if i < len(c.finders)-1 {
				log.Debug("ticket finder failed, trying fallback", "login", login, "error", err)
			}
			lastErr = err
			continue
		}
		return t, nil
	}
	return nil, lastErr
}

// ListFinder finds tickets by listing every ticket matching the base
// labels and filtering by title in memory.
type ListFinder struct {
	tracker TicketTracker
	labels  []string
	state   string
}

// NewListFinder builds a finder over the given tracker, scoped to tickets
// carrying labels in the given state.
func NewListFinder(tracker TicketTracker, labels []string, state string) *ListFinder {
	return &ListFinder{tracker: tracker, labels: labels, state: state}
}

func (f *ListFinder) Find(ctx context.Context, login string) (*model.Ticket, error) {
	tickets, err := f.tracker.List(ctx, f.labels, f.state)
	if err != nil {
		return nil, err
	}
	for _, t := range tickets {
		if t.Title == login {
			return &t, nil
		}
	}
	return nil, nil
}
