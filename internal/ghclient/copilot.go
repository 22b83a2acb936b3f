package ghclient

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v61/github"

	"github.com/spiffcs/dormant/internal/dormancy"
	"github.com/spiffcs/dormant/internal/log"
	"github.com/spiffcs/dormant/internal/model"
)

// ActivitySource selects which seat timestamp counts as activity when
// the seat has never been used.
type ActivitySource string

const (
	// SourceMostRecent uses the newer of last-activity and seat creation.
	SourceMostRecent ActivitySource = "most-recent"

	// SourceFallback uses seat creation only when last-activity is absent.
	SourceFallback ActivitySource = "fallback"

	// SourceIgnore uses last-activity alone; an unused seat has no
	// recorded activity and classifies dormant.
	SourceIgnore ActivitySource = "ignore"
)

// activityTypeCopilot tags records produced by this fetcher.
const activityTypeCopilot = "copilot"

// CopilotSeatsFetcher lists the organization's Copilot seats and maps
// each seat to an activity record. Seat listings are always the full
// current assignment set, so this fetcher pairs with complete snapshot
// mode.
type CopilotSeatsFetcher struct {
	client *Client
	org    string
	source ActivitySource
}

// NewCopilotSeatsFetcher creates a fetcher for the given organization.
func NewCopilotSeatsFetcher(client *Client, org string, source ActivitySource) (*CopilotSeatsFetcher, error) {
	if org == "" {
		return nil, fmt.Errorf("organization must not be empty")
	}
	switch source {
	case SourceMostRecent, SourceFallback, SourceIgnore:
	case "":
		source = SourceFallback
	default:
		return nil, fmt.Errorf("unknown activity source %q", source)
	}
	return &CopilotSeatsFetcher{client: client, org: org, source: source}, nil
}

// Fetch lists every Copilot seat in the organization. The since bound is
// not applied: the seats API has no activity filter, and complete-mode
// reconciliation needs the full membership anyway.
func (f *CopilotSeatsFetcher) Fetch(ctx context.Context, fc dormancy.FetchContext) ([]model.Account, error) {
	opts := &gh.ListOptions{PerPage: 100}

	var accounts []model.Account
	for {
		seats, resp, err := f.client.client.Copilot.ListCopilotSeats(ctx, f.org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list copilot seats for %s: %w", f.org, err)
		}

		for _, seat := range seats.Seats {
			account, ok := f.seatToAccount(seat)
			if !ok {
				continue
			}
			accounts = append(accounts, account)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("listed copilot seats", "org", f.org, "count", len(accounts))
	return accounts, nil
}

// seatToAccount maps one seat to an activity record. Seats assigned to
// teams or organizations have no login and are skipped.
func (f *CopilotSeatsFetcher) seatToAccount(seat *gh.CopilotSeatDetails) (model.Account, bool) {
	user, ok := seat.GetUser()
	if !ok || user.GetLogin() == "" {
		log.Debug("skipping seat without a user assignee")
		return model.Account{}, false
	}

	account := model.Account{
		Login:        user.GetLogin(),
		Type:         activityTypeCopilot,
		LastActivity: seatActivity(seat, f.source),
		Metadata: map[string]any{
			"last_activity_editor": seat.GetLastActivityEditor(),
		},
	}
	if seat.GetPendingCancellationDate() != "" {
		account.Metadata["pending_cancellation_date"] = seat.GetPendingCancellationDate()
	}
	return account, true
}

// seatActivity resolves the activity timestamp per the configured source.
func seatActivity(seat *gh.CopilotSeatDetails, source ActivitySource) *time.Time {
	var last *time.Time
	if seat.LastActivityAt != nil {
		t := seat.LastActivityAt.Time
		last = &t
	}

	var created *time.Time
	if seat.CreatedAt != nil {
		t := seat.CreatedAt.Time
		created = &t
	}

	switch source {
	case SourceIgnore:
		return last
	case SourceMostRecent:
		if last == nil {
			return created
		}
		if created != nil && created.After(*last) {
			return created
		}
		return last
	default: // SourceFallback
		if last != nil {
			return last
		}
		return created
	}
}

// CopilotSeatRemover is a RemovalHook that cancels the account's
// Copilot seat.
type CopilotSeatRemover struct {
	client *Client
	org    string
}

// NewCopilotSeatRemover creates a remover for the given organization.
func NewCopilotSeatRemover(client *Client, org string) *CopilotSeatRemover {
	return &CopilotSeatRemover{client: client, org: org}
}

// Remove cancels the seat. It confirms removal only when the API
// reports a cancelled seat.
func (r *CopilotSeatRemover) Remove(ctx context.Context, a model.Account) (bool, error) {
	cancellations, _, err := r.client.client.Copilot.RemoveCopilotUsers(ctx, r.org, []string{a.Login})
	if err != nil {
		return false, fmt.Errorf("failed to cancel copilot seat for %s: %w", a.Login, err)
	}

	cancelled := cancellations.SeatsCancelled > 0
	if !cancelled {
		log.Warn("copilot seat cancellation reported no cancelled seats", "login", a.Login)
	}
	return cancelled, nil
}
