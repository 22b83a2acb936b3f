package cmd

// Options holds the shared command-line options for the dormant CLI.
type Options struct {
	Format    string
	Org       string
	Check     string
	Database  string
	Duration  string
	Grace     string
	Mode      string
	Fetcher   string
	Since     string
	Filter    string
	Verbosity int
	DryRun    bool
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Filter: "all",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithOrg sets the GitHub organization.
func WithOrg(org string) Option {
	return func(o *Options) {
		o.Org = org
	}
}

// WithCheck sets the check type.
func WithCheck(check string) Option {
	return func(o *Options) {
		o.Check = check
	}
}

// WithDuration sets the dormancy threshold (e.g., "90d", "12w").
func WithDuration(d string) Option {
	return func(o *Options) {
		o.Duration = d
	}
}

// WithGrace sets the notification grace period (e.g., "7d").
func WithGrace(g string) Option {
	return func(o *Options) {
		o.Grace = g
	}
}

// WithMode sets the snapshot mode (partial, complete).
func WithMode(mode string) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

// WithDryRun suppresses side effects.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}
