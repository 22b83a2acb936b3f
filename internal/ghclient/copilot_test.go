package ghclient

import (
	"testing"
	"time"

	gh "github.com/google/go-github/v61/github"
)

func seat(lastActivity, created *time.Time) *gh.CopilotSeatDetails {
	s := &gh.CopilotSeatDetails{}
	if lastActivity != nil {
		s.LastActivityAt = &gh.Timestamp{Time: *lastActivity}
	}
	if created != nil {
		s.CreatedAt = &gh.Timestamp{Time: *created}
	}
	return s
}

func TestSeatActivity(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastActivity *time.Time
		created      *time.Time
		source       ActivitySource
		want         *time.Time
	}{
		{"fallback uses last activity when present", &older, &newer, SourceFallback, &older},
		{"fallback falls back to creation", nil, &older, SourceFallback, &older},
		{"fallback with nothing", nil, nil, SourceFallback, nil},
		{"ignore uses last activity only", &older, &newer, SourceIgnore, &older},
		{"ignore never uses creation", nil, &newer, SourceIgnore, nil},
		{"most recent prefers newer creation", &older, &newer, SourceMostRecent, &newer},
		{"most recent prefers newer activity", &newer, &older, SourceMostRecent, &newer},
		{"most recent with only creation", nil, &older, SourceMostRecent, &older},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seatActivity(seat(tt.lastActivity, tt.created), tt.source)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("expected nil, got %v", got)
			case tt.want != nil && got == nil:
				t.Errorf("expected %v, got nil", tt.want)
			case tt.want != nil && !got.Equal(*tt.want):
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewCopilotSeatsFetcherValidation(t *testing.T) {
	if _, err := NewCopilotSeatsFetcher(&Client{}, "", SourceFallback); err == nil {
		t.Error("expected error for empty organization")
	}
	if _, err := NewCopilotSeatsFetcher(&Client{}, "acme", "bogus"); err == nil {
		t.Error("expected error for unknown activity source")
	}

	f, err := NewCopilotSeatsFetcher(&Client{}, "acme", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.source != SourceFallback {
		t.Errorf("empty source should default to fallback, got %q", f.source)
	}
}

func TestSeatToAccount(t *testing.T) {
	activity := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f := &CopilotSeatsFetcher{org: "acme", source: SourceFallback}

	s := seat(&activity, nil)
	s.Assignee = &gh.User{Login: gh.String("alice")}
	s.LastActivityEditor = gh.String("vscode/1.96")
	s.PendingCancellationDate = gh.String("2026-09-01")

	account, ok := f.seatToAccount(s)
	if !ok {
		t.Fatal("expected a user seat to map")
	}
	if account.Login != "alice" {
		t.Errorf("expected login alice, got %q", account.Login)
	}
	if account.Type != activityTypeCopilot {
		t.Errorf("expected copilot type, got %q", account.Type)
	}
	if account.LastActivity == nil || !account.LastActivity.Equal(activity) {
		t.Errorf("unexpected lastActivity: %v", account.LastActivity)
	}
	if account.Metadata["last_activity_editor"] != "vscode/1.96" {
		t.Errorf("editor metadata missing: %v", account.Metadata)
	}
	if account.Metadata["pending_cancellation_date"] != "2026-09-01" {
		t.Errorf("cancellation metadata missing: %v", account.Metadata)
	}
}

func TestSeatToAccountSkipsTeamSeats(t *testing.T) {
	f := &CopilotSeatsFetcher{org: "acme", source: SourceFallback}

	s := seat(nil, nil)
	s.Assignee = &gh.Team{ID: gh.Int64(42)}

	if _, ok := f.seatToAccount(s); ok {
		t.Error("seat assigned to a team must be skipped")
	}
}
