// Package model contains domain types for the dormant application.
// These types are independent of any external GitHub library.
package model

import "time"

// Account represents the last observed activity for one tracked account.
type Account struct {
	// Login uniquely identifies the account within one check.
	Login string `json:"login"`

	// LastActivity is the most recent observed activity. A nil value
	// means the account was never observed active.
	LastActivity *time.Time `json:"lastActivity"`

	// Type is the free-form activity category that produced this record,
	// e.g. "copilot" or "audit-log".
	Type string `json:"type"`

	// Metadata holds additional collaborator-supplied fields, passed
	// through storage unmodified.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// CheckState is the per-database metadata record stored under the
// reserved document key.
type CheckState struct {
	LastRun     time.Time `json:"lastRun"`
	CheckType   string    `json:"check-type"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Summary captures aggregate statistics from a single classification pass.
type Summary struct {
	LastActivityFetch        time.Time `json:"lastActivityFetch"`
	TotalAccounts            int       `json:"totalAccounts"`
	ActiveAccounts           int       `json:"activeAccounts"`
	DormantAccounts          int       `json:"dormantAccounts"`
	ActiveAccountPercentage  float64   `json:"activeAccountPercentage"`
	DormantAccountPercentage float64   `json:"dormantAccountPercentage"`
	Duration                 string    `json:"duration"`
}
