// Package output renders account lists, summaries, and notification
// reports in the supported output formats.
package output

import (
	"io"

	"github.com/spiffcs/dormant/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter defines the interface for output formatters
type Formatter interface {
	FormatAccounts(accounts []model.Account, w io.Writer) error
	FormatSummary(summary model.Summary, w io.Writer) error
	FormatReport(report model.Report, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}
