package model

// NotificationState describes what happened to one dormant account
// during a notification pass.
type NotificationState string

const (
	StateNotified      NotificationState = "notified"
	StateInGracePeriod NotificationState = "in-grace-period"
	StateRemoved       NotificationState = "removed"
	StateRemovalFailed NotificationState = "removal-failed"
	StateExcluded      NotificationState = "excluded"
	StateReactivated   NotificationState = "reactivated"
)

// NotificationResult pairs a login with the ticket that backs its state.
// Ticket is nil for dry-run placeholders that were never created.
type NotificationResult struct {
	Login  string  `json:"login"`
	Ticket *Ticket `json:"ticket,omitempty"`
}

// Report is the outcome of one notification pass over the dormant set.
// Per-account failures are collected in Errors keyed by login; they do
// not abort the pass.
type Report struct {
	Notified      []NotificationResult `json:"notified"`
	InGracePeriod []NotificationResult `json:"inGracePeriod"`
	Removed       []NotificationResult `json:"removed"`
	RemovalFailed []NotificationResult `json:"removalFailed"`
	Excluded      []NotificationResult `json:"excluded"`
	Reactivated   []NotificationResult `json:"reactivated"`
	Errors        map[string]string    `json:"errors,omitempty"`
}

// HasErrors reports whether any account failed during the pass.
func (r Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Total returns the number of accounts that reached a terminal state
// this pass, excluding errored accounts.
func (r Report) Total() int {
	return len(r.Notified) + len(r.InGracePeriod) + len(r.Removed) +
		len(r.RemovalFailed) + len(r.Excluded) + len(r.Reactivated)
}
