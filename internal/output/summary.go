package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/spiffcs/dormant/internal/model"
)

const summaryBarWidth = 30

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	activeBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	dormantBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// renderSummaryCard renders the classification summary as a bordered
// card with an active/dormant split bar.
func renderSummaryCard(s model.Summary) string {
	var b strings.Builder

	b.WriteString(cardTitleStyle.Render("Dormancy summary"))
	b.WriteString("\n\n")

	lastFetch := "never"
	if s.LastActivityFetch.After(time.Unix(0, 0)) {
		lastFetch = s.LastActivityFetch.Local().Format("2006-01-02 15:04")
	}
	fmt.Fprintf(&b, "%s %s\n", cardLabelStyle.Render("Last fetch:"), lastFetch)
	fmt.Fprintf(&b, "%s %s\n", cardLabelStyle.Render("Threshold: "), s.Duration)
	fmt.Fprintf(&b, "%s %d\n\n", cardLabelStyle.Render("Accounts:  "), s.TotalAccounts)

	b.WriteString(renderSplitBar(s.ActiveAccounts, s.DormantAccounts))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d (%.2f%%)\n",
		activeBarStyle.Render("■ active "), s.ActiveAccounts, s.ActiveAccountPercentage)
	fmt.Fprintf(&b, "%s %d (%.2f%%)",
		dormantBarStyle.Render("■ dormant"), s.DormantAccounts, s.DormantAccountPercentage)

	return cardStyle.Render(b.String())
}

// renderSplitBar renders a single horizontal bar split between active
// and dormant counts.
func renderSplitBar(active, dormant int) string {
	total := active + dormant
	if total == 0 {
		return cardLabelStyle.Render(strings.Repeat("░", summaryBarWidth))
	}

	activeChars := active * summaryBarWidth / total
	if active > 0 && activeChars == 0 {
		activeChars = 1
	}
	if activeChars > summaryBarWidth {
		activeChars = summaryBarWidth
	}

	return activeBarStyle.Render(strings.Repeat("█", activeChars)) +
		dormantBarStyle.Render(strings.Repeat("█", summaryBarWidth-activeChars))
}
