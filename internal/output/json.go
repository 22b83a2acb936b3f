package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/dormant/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

func (f *JSONFormatter) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// FormatAccounts outputs accounts as JSON
func (f *JSONFormatter) FormatAccounts(accounts []model.Account, w io.Writer) error {
	return f.encode(accounts, w)
}

// FormatSummary outputs a summary as JSON
func (f *JSONFormatter) FormatSummary(summary model.Summary, w io.Writer) error {
	return f.encode(summary, w)
}

// FormatReport outputs a notification report as JSON
func (f *JSONFormatter) FormatReport(report model.Report, w io.Writer) error {
	return f.encode(report, w)
}
