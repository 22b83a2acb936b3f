// Package notify maintains at most one open notification ticket per
// dormant account and advances each through a grace-period state machine.
package notify

import (
	"context"

	"github.com/spiffcs/dormant/internal/model"
)

// TicketTracker is the minimal surface the lifecycle needs from an
// external issue tracker.
type TicketTracker interface {
	// Create opens a new ticket and returns it with its assigned number.
	Create(ctx context.Context, t model.Ticket) (model.Ticket, error)

	// List returns tickets carrying all the given labels in the given state.
	List(ctx context.Context, labels []string, state string) ([]model.Ticket, error)

	// AddLabel applies a label to a ticket.
	AddLabel(ctx context.Context, t model.Ticket, label string) error

	// RemoveLabel strips a label from a ticket. Stripping an absent
	// label must not be an error.
	RemoveLabel(ctx context.Context, t model.Ticket, label string) error

	// Comment appends a comment to a ticket.
	Comment(ctx context.Context, t model.Ticket, body string) error

	// Close closes a ticket.
	Close(ctx context.Context, t model.Ticket) error
}

// TicketFinder locates the open ticket for one login, returning nil when
// none exists. Implementations are tried in order; a finder that cannot
// serve the query returns an error and the next one is consulted.
type TicketFinder interface {
	Find(ctx context.Context, login string) (*model.Ticket, error)
}
