package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v61/github"

	"github.com/spiffcs/dormant/internal/log"
	"github.com/spiffcs/dormant/internal/model"
)

// IssueTracker implements the ticket tracker contract on top of GitHub
// Issues in a single repository.
type IssueTracker struct {
	client *Client
	owner  string
	repo   string
}

// NewIssueTracker creates a tracker for "owner/repo".
func NewIssueTracker(client *Client, fullName string) (*IssueTracker, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("notification repository must be owner/repo, got %q", fullName)
	}
	return &IssueTracker{client: client, owner: owner, repo: repo}, nil
}

// Create opens a new issue for the ticket.
func (t *IssueTracker) Create(ctx context.Context, ticket model.Ticket) (model.Ticket, error) {
	req := &gh.IssueRequest{
		Title:  gh.String(ticket.Title),
		Body:   gh.String(ticket.Body),
		Labels: &ticket.Labels,
	}
	if ticket.Assignee != "" {
		req.Assignee = gh.String(ticket.Assignee)
	}

	issue, _, err := t.client.client.Issues.Create(ctx, t.owner, t.repo, req)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("failed to create issue for %s: %w", ticket.Title, err)
	}
	return issueToTicket(issue), nil
}

// List returns issues carrying all the given labels in the given state.
func (t *IssueTracker) List(ctx context.Context, labels []string, state string) ([]model.Ticket, error) {
	opts := &gh.IssueListByRepoOptions{
		State:  state,
		Labels: labels,
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	var tickets []model.Ticket
	for {
		issues, resp, err := t.client.client.Issues.ListByRepo(ctx, t.owner, t.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues in %s/%s: %w", t.owner, t.repo, err)
		}

		for _, issue := range issues {
			// The issues listing includes pull requests.
			if issue.IsPullRequest() {
				continue
			}
			tickets = append(tickets, issueToTicket(issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return tickets, nil
}

// AddLabel applies a label to the ticket's issue.
func (t *IssueTracker) AddLabel(ctx context.Context, ticket model.Ticket, label string) error {
	_, _, err := t.client.client.Issues.AddLabelsToIssue(ctx, t.owner, t.repo, ticket.Number, []string{label})
	if err != nil {
		return fmt.Errorf("failed to label issue #%d with %q: %w", ticket.Number, label, err)
	}
	return nil
}

// RemoveLabel strips a label from the ticket's issue. Stripping an
// absent label is not an error.
func (t *IssueTracker) RemoveLabel(ctx context.Context, ticket model.Ticket, label string) error {
	resp, err := t.client.client.Issues.RemoveLabelForIssue(ctx, t.owner, t.repo, ticket.Number, label)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			log.Debug("label already absent", "issue", ticket.Number, "label", label)
			return nil
		}
		return fmt.Errorf("failed to remove label %q from issue #%d: %w", label, ticket.Number, err)
	}
	return nil
}

// Comment appends a comment to the ticket's issue.
func (t *IssueTracker) Comment(ctx context.Context, ticket model.Ticket, body string) error {
	_, _, err := t.client.client.Issues.CreateComment(ctx, t.owner, t.repo, ticket.Number, &gh.IssueComment{
		Body: gh.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to comment on issue #%d: %w", ticket.Number, err)
	}
	return nil
}

// Close closes the ticket's issue as completed.
func (t *IssueTracker) Close(ctx context.Context, ticket model.Ticket) error {
	_, _, err := t.client.client.Issues.Edit(ctx, t.owner, t.repo, ticket.Number, &gh.IssueRequest{
		State:       gh.String("closed"),
		StateReason: gh.String("completed"),
	})
	if err != nil {
		return fmt.Errorf("failed to close issue #%d: %w", ticket.Number, err)
	}
	return nil
}

// SearchFinder locates the open ticket for a login with a structured
// search query (exact title plus label/state/assignee qualifiers).
// The search API is less reliable in some deployments; failures here
// should fall back to the listing path via a finder chain.
type SearchFinder struct {
	client   *Client
	owner    string
	repo     string
	labels   []string
	state    string
	assignee string
}

// NewSearchFinder creates a search-backed finder scoped to the given
// repository, labels, and state.
func NewSearchFinder(client *Client, fullName string, labels []string, state, assignee string) (*SearchFinder, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("notification repository must be owner/repo, got %q", fullName)
	}
	return &SearchFinder{
		client:   client,
		owner:    owner,
		repo:     repo,
		labels:   labels,
		state:    state,
		assignee: assignee,
	}, nil
}

// Find searches for the login's ticket, matching the title exactly.
func (f *SearchFinder) Find(ctx context.Context, login string) (*model.Ticket, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "repo:%s/%s is:issue state:%s in:title %q", f.owner, f.repo, f.state, login)
	for _, label := range f.labels {
		fmt.Fprintf(&sb, " label:%q", label)
	}
	if f.assignee != "" {
		fmt.Fprintf(&sb, " assignee:%s", f.assignee)
	}

	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		result, resp, err := f.client.client.Search.Issues(ctx, sb.String(), opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search for ticket of %s: %w", login, err)
		}

		// The title qualifier matches substrings; require exact identity.
		for _, issue := range result.Issues {
			if issue.GetTitle() == login {
				ticket := issueToTicket(issue)
				return &ticket, nil
			}
		}

		if resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

// issueToTicket converts a GitHub issue to the generic ticket shape.
func issueToTicket(issue *gh.Issue) model.Ticket {
	var labels []string
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return model.Ticket{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		Labels:    labels,
		Assignee:  issue.GetAssignee().GetLogin(),
		CreatedAt: issue.GetCreatedAt().Time,
		HTMLURL:   issue.GetHTMLURL(),
	}
}
