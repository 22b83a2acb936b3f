package output

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spiffcs/dormant/internal/model"
)

// MarkdownFormatter formats output as Markdown, suitable for pasting
// into an issue or a job summary.
type MarkdownFormatter struct{}

// FormatAccounts outputs accounts as a Markdown table
func (f *MarkdownFormatter) FormatAccounts(accounts []model.Account, w io.Writer) error {
	if len(accounts) == 0 {
		fmt.Fprintln(w, "No accounts found.")
		return nil
	}

	fmt.Fprintln(w, "| Login | Last Activity | Type |")
	fmt.Fprintln(w, "|-------|---------------|------|")
	for _, a := range accounts {
		last := "never"
		if a.LastActivity != nil {
			last = a.LastActivity.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "| %s | %s | %s |\n", a.Login, last, a.Type)
	}
	return nil
}

// FormatSummary outputs a summary as Markdown
func (f *MarkdownFormatter) FormatSummary(summary model.Summary, w io.Writer) error {
	fmt.Fprintln(w, "# Dormancy Summary")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "- **Last activity fetch:** %s\n", summary.LastActivityFetch.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "- **Threshold:** %s\n", summary.Duration)
	fmt.Fprintf(w, "- **Total accounts:** %d\n", summary.TotalAccounts)
	fmt.Fprintf(w, "- **Active:** %d (%.2f%%)\n", summary.ActiveAccounts, summary.ActiveAccountPercentage)
	fmt.Fprintf(w, "- **Dormant:** %d (%.2f%%)\n", summary.DormantAccounts, summary.DormantAccountPercentage)
	return nil
}

// FormatReport outputs a notification report as Markdown
func (f *MarkdownFormatter) FormatReport(report model.Report, w io.Writer) error {
	fmt.Fprintln(w, "# Notification Report")

	sections := []struct {
		name    string
		results []model.NotificationResult
	}{
		{"Notified", report.Notified},
		{"In Grace Period", report.InGracePeriod},
		{"Removed", report.Removed},
		{"Removal Failed", report.RemovalFailed},
		{"Excluded", report.Excluded},
		{"Reactivated", report.Reactivated},
	}

	for _, s := range sections {
		if len(s.results) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n## %s (%d)\n\n", s.name, len(s.results))
		for _, r := range s.results {
			if r.Ticket != nil && r.Ticket.HTMLURL != "" {
				fmt.Fprintf(w, "- %s ([#%d](%s))\n", r.Login, r.Ticket.Number, r.Ticket.HTMLURL)
			} else {
				fmt.Fprintf(w, "- %s\n", r.Login)
			}
		}
	}

	if report.HasErrors() {
		logins := make([]string, 0, len(report.Errors))
		for login := range report.Errors {
			logins = append(logins, login)
		}
		sort.Strings(logins)

		fmt.Fprintf(w, "\n## Errors (%d)\n\n", len(logins))
		for _, login := range logins {
			fmt.Fprintf(w, "- **%s**: %s\n", login, report.Errors[login])
		}
	}

	return nil
}
