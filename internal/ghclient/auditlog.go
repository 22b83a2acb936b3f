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

// activityTypeAuditLog tags records produced by the audit log fetcher.
const activityTypeAuditLog = "audit-log"

// AuditLogFetcher derives activity from the organization audit log:
// one record per actor, stamped with their newest event in the window.
// The audit log only covers actors who did something, so this fetcher
// yields partial snapshots.
type AuditLogFetcher struct {
	client *Client
	org    string
}

// NewAuditLogFetcher creates a fetcher for the given organization.
func NewAuditLogFetcher(client *Client, org string) (*AuditLogFetcher, error) {
	if org == "" {
		return nil, fmt.Errorf("organization must not be empty")
	}
	return &AuditLogFetcher{client: client, org: org}, nil
}

// Fetch pages through audit log events since the window lower bound and
// keeps the newest event per actor.
func (f *AuditLogFetcher) Fetch(ctx context.Context, fc dormancy.FetchContext) ([]model.Account, error) {
	phrase := fmt.Sprintf("created:>=%s", fc.LastFetchTime.UTC().Format("2006-01-02T15:04:05Z"))
	opts := &gh.GetAuditLogOptions{
		Phrase: gh.String(phrase),
		ListCursorOptions: gh.ListCursorOptions{
			PerPage: 100,
		},
	}

	newest := make(map[string]time.Time)
	actions := make(map[string]string)
	for {
		entries, resp, err := f.client.client.Organizations.GetAuditLog(ctx, f.org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch audit log for %s: %w", f.org, err)
		}

		for _, entry := range entries {
			actor := entry.GetActor()
			if actor == "" || entry.Timestamp == nil {
				continue
			}
			ts := entry.Timestamp.Time
			if prev, ok := newest[actor]; !ok || ts.After(prev) {
				newest[actor] = ts
				actions[actor] = entry.GetAction()
			}
		}

		if resp.After == "" {
			break
		}
		opts.After = resp.After
	}

	accounts := make([]model.Account, 0, len(newest))
	for actor, ts := range newest {
		t := ts
		accounts = append(accounts, model.Account{
			Login:        actor,
			Type:         activityTypeAuditLog,
			LastActivity: &t,
			Metadata: map[string]any{
				"last_action": actions[actor],
			},
		})
	}

	log.Debug("derived activity from audit log", "org", f.org, "actors", len(accounts))
	return accounts, nil
}
