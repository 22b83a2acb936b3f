// Package constants provides a centralized location for configuration
// values and magic strings used throughout the dormant application.
package constants

import "time"

// Store constants
const (
	// StateKey is the reserved document key holding check-level metadata.
	// It is never a valid login and can never be removed.
	StateKey = "_state"

	// DatabaseFileName is the default file name for the activity database.
	DatabaseFileName = "activity.json"
)

// Notification label constants. These labels drive the ticket state
// machine and must match what admins see in the issue tracker.
const (
	// LabelPendingRemoval marks an open notification awaiting the grace period.
	LabelPendingRemoval = "pending-removal"

	// LabelBecameActive marks a closed notification whose account reactivated.
	LabelBecameActive = "became-active"

	// LabelRemoved marks a closed notification whose account was removed.
	LabelRemoved = "removed"

	// LabelExcluded is applied manually by admins to exempt an account
	// from removal regardless of dormancy.
	LabelExcluded = "exclude-from-removal"

	// LabelDormancyCheck identifies tickets owned by this tool.
	LabelDormancyCheck = "dormancy-check"
)

// Default durations
const (
	// DefaultDormancyThreshold is how long an account may be inactive
	// before it is classified dormant.
	DefaultDormancyThreshold = 90 * 24 * time.Hour

	// DefaultGracePeriod is the window between notification and removal.
	DefaultGracePeriod = 7 * 24 * time.Hour
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Ticket state constants
const (
	// StateOpen indicates a notification ticket is open.
	StateOpen = "open"

	// StateClosed indicates a notification ticket is closed.
	StateClosed = "closed"
)
