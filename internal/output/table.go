package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/spiffcs/dormant/internal/model"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct{}

var (
	headerColor  = color.New(color.Bold)
	dormantColor = color.New(color.FgYellow)
	removedColor = color.New(color.FgRed)
	activeColor  = color.New(color.FgGreen)
	dimColor     = color.New(color.Faint)
)

// hyperlink creates a clickable terminal hyperlink using OSC 8
func hyperlink(text, url string) string {
	if url == "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// truncate shortens a string to fit maxWidth display columns.
func truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// pad pads a string with spaces to the target display width.
func pad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// ageString renders how long ago a timestamp was, in the largest unit.
func ageString(t *time.Time) string {
	if t == nil {
		return "never"
	}
	d := time.Since(*t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// FormatAccounts outputs accounts as a table
func (f *TableFormatter) FormatAccounts(accounts []model.Account, w io.Writer) error {
	if len(accounts) == 0 {
		fmt.Fprintln(w, "No accounts found.")
		return nil
	}

	const (
		colLogin = 30
		colLast  = 22
		colAge   = 8
	)

	headerColor.Fprintf(w, "%s  %s  %s  %s\n",
		pad("Login", colLogin),
		pad("Last Activity", colLast),
		pad("Inactive", colAge),
		"Type")
	fmt.Fprintln(w, strings.Repeat("-", colLogin+colLast+colAge+12))

	for _, a := range accounts {
		last := "never"
		if a.LastActivity != nil {
			last = a.LastActivity.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			pad(truncate(a.Login, colLogin), colLogin),
			pad(last, colLast),
			pad(ageString(a.LastActivity), colAge),
			a.Type)
	}

	dimColor.Fprintf(w, "\n%d accounts\n", len(accounts))
	return nil
}

// FormatSummary outputs the summary card
func (f *TableFormatter) FormatSummary(summary model.Summary, w io.Writer) error {
	fmt.Fprintln(w, renderSummaryCard(summary))
	return nil
}

// FormatReport outputs a notification report grouped by state
func (f *TableFormatter) FormatReport(report model.Report, w io.Writer) error {
	sections := []struct {
		name    string
		color   *color.Color
		results []model.NotificationResult
	}{
		{"Notified", dormantColor, report.Notified},
		{"In grace period", dimColor, report.InGracePeriod},
		{"Removed", removedColor, report.Removed},
		{"Removal failed", removedColor, report.RemovalFailed},
		{"Excluded", dimColor, report.Excluded},
		{"Reactivated", activeColor, report.Reactivated},
	}

	if report.Total() == 0 && !report.HasErrors() {
		fmt.Fprintln(w, "Nothing to do.")
		return nil
	}

	for _, s := range sections {
		if len(s.results) == 0 {
			continue
		}
		s.color.Fprintf(w, "%s (%d)\n", s.name, len(s.results))
		for _, r := range s.results {
			line := "  " + r.Login
			if r.Ticket != nil && r.Ticket.Number > 0 {
				line += dimColor.Sprintf("  #%d", r.Ticket.Number)
				line = hyperlink(line, r.Ticket.HTMLURL)
			}
			fmt.Fprintln(w, line)
		}
	}

	if report.HasErrors() {
		logins := make([]string, 0, len(report.Errors))
		for login := range report.Errors {
			logins = append(logins, login)
		}
		sort.Strings(logins)

		removedColor.Fprintf(w, "Errors (%d)\n", len(logins))
		for _, login := range logins {
			fmt.Fprintf(w, "  %s: %s\n", login, report.Errors[login])
		}
	}

	return nil
}
