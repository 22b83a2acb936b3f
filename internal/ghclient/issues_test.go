package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gh "github.com/google/go-github/v61/github"
)

func TestNewIssueTrackerValidation(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"acme/notifications", false},
		{"acme", true},
		{"acme/", true},
		{"/notifications", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NewIssueTracker(&Client{}, tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.input, err)
			}
		})
	}
}

func TestIssueToTicket(t *testing.T) {
	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	issue := &gh.Issue{
		Number: gh.Int(42),
		Title:  gh.String("alice"),
		Body:   gh.String("no activity"),
		State:  gh.String("open"),
		Labels: []*gh.Label{
			{Name: gh.String("dormancy-check")},
			{Name: gh.String("pending-removal")},
		},
		Assignee:  &gh.User{Login: gh.String("admin")},
		CreatedAt: &gh.Timestamp{Time: created},
		HTMLURL:   gh.String("https://github.com/acme/notifications/issues/42"),
	}

	ticket := issueToTicket(issue)
	if ticket.Number != 42 || ticket.Title != "alice" || ticket.State != "open" {
		t.Errorf("unexpected ticket: %+v", ticket)
	}
	if !ticket.HasLabel("pending-removal") || !ticket.HasLabel("dormancy-check") {
		t.Errorf("labels not mapped: %v", ticket.Labels)
	}
	if ticket.Assignee != "admin" {
		t.Errorf("expected assignee admin, got %q", ticket.Assignee)
	}
	if !ticket.CreatedAt.Equal(created) {
		t.Errorf("createdAt mismatch: %v", ticket.CreatedAt)
	}
}

func TestSearchFinderFollowsPagination(t *testing.T) {
	// The exact-title hit sits on the second page; substring matches
	// fill the first.
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/issues" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/search/issues?page=2>; rel="next"`, srv.URL))
			fmt.Fprint(w, `{"total_count": 2, "incomplete_results": false, "items": [{"number": 1, "title": "alice-bot"}]}`)
		default:
			fmt.Fprint(w, `{"total_count": 2, "incomplete_results": false, "items": [{"number": 2, "title": "alice", "state": "open"}]}`)
		}
	}))
	defer srv.Close()

	finder, err := NewSearchFinder(testClient(t, srv), "acme/notifications", []string{"dormancy-check"}, "open", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ticket, err := finder.Find(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket == nil || ticket.Number != 2 || ticket.Title != "alice" {
		t.Errorf("expected the second-page match, got %+v", ticket)
	}
}

func TestSearchFinderNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count": 1, "incomplete_results": false, "items": [{"number": 1, "title": "alice-bot"}]}`)
	}))
	defer srv.Close()

	finder, err := NewSearchFinder(testClient(t, srv), "acme/notifications", nil, "open", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ticket, err := finder.Find(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket != nil {
		t.Errorf("substring match must not count, got %+v", ticket)
	}
}

func TestIssueToTicketSparseIssue(t *testing.T) {
	ticket := issueToTicket(&gh.Issue{Number: gh.Int(7), Title: gh.String("bob")})

	if ticket.Assignee != "" {
		t.Errorf("expected empty assignee, got %q", ticket.Assignee)
	}
	if len(ticket.Labels) != 0 {
		t.Errorf("expected no labels, got %v", ticket.Labels)
	}
	if ticket.HasLabel("pending-removal") {
		t.Error("sparse issue must not report labels")
	}
}
