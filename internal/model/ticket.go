package model

import "time"

// Ticket represents one notification record in the external tracker.
// The title carries the subject login; the number is the opaque handle
// used for update operations.
type Ticket struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	State     string    `json:"state"`
	Labels    []string  `json:"labels,omitempty"`
	Assignee  string    `json:"assignee,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	HTMLURL   string    `json:"htmlUrl,omitempty"`
}

// HasLabel reports whether the ticket carries the given label.
func (t Ticket) HasLabel(name string) bool {
	for _, l := range t.Labels {
		if l == name {
			return true
		}
	}
	return false
}
