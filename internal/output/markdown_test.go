package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spiffcs/dormant/internal/model"
)

func TestMarkdownFormatAccounts(t *testing.T) {
	last := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	accounts := []model.Account{
		{Login: "alice", Type: "copilot", LastActivity: &last},
		{Login: "bob", Type: "copilot"},
	}

	var buf bytes.Buffer
	if err := (&MarkdownFormatter{}).FormatAccounts(accounts, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"| Login | Last Activity | Type |",
		"| alice | 2026-03-01T08:30:00Z | copilot |",
		"| bob | never | copilot |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownFormatAccountsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownFormatter{}).FormatAccounts(nil, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No accounts found.") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestMarkdownFormatSummary(t *testing.T) {
	summary := model.Summary{
		LastActivityFetch:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		TotalAccounts:            3,
		ActiveAccounts:           2,
		DormantAccounts:          1,
		ActiveAccountPercentage:  66.67,
		DormantAccountPercentage: 33.33,
		Duration:                 "90d",
	}

	var buf bytes.Buffer
	if err := (&MarkdownFormatter{}).FormatSummary(summary, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"**Threshold:** 90d",
		"**Active:** 2 (66.67%)",
		"**Dormant:** 1 (33.33%)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownFormatReport(t *testing.T) {
	report := model.Report{
		Notified: []model.NotificationResult{
			{Login: "alice", Ticket: &model.Ticket{Number: 1, HTMLURL: "https://github.com/acme/n/issues/1"}},
		},
		Removed: []model.NotificationResult{{Login: "bob"}},
		Errors:  map[string]string{"carol": "api unavailable"},
	}

	var buf bytes.Buffer
	if err := (&MarkdownFormatter{}).FormatReport(report, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"## Notified (1)",
		"- alice ([#1](https://github.com/acme/n/issues/1))",
		"## Removed (1)",
		"- bob",
		"## Errors (1)",
		"- **carol**: api unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Grace Period") {
		t.Error("empty sections must be omitted")
	}
}
