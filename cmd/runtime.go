package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spiffcs/dormant/config"
	"github.com/spiffcs/dormant/internal/constants"
	"github.com/spiffcs/dormant/internal/dormancy"
	"github.com/spiffcs/dormant/internal/duration"
	"github.com/spiffcs/dormant/internal/ghclient"
	"github.com/spiffcs/dormant/internal/log"
	"github.com/spiffcs/dormant/internal/notify"
	"github.com/spiffcs/dormant/internal/output"
	"github.com/spiffcs/dormant/internal/store"
)

// runtime bundles the configured collaborators a command needs.
type runtime struct {
	cfg       *config.Config
	store     *store.Store
	engine    *dormancy.Engine
	client    *ghclient.Client
	threshold time.Duration
	grace     time.Duration
}

// newRuntime loads config, applies flag overrides, and wires the store
// and engine. withClient controls whether a GitHub client (and thus a
// token) is required; offline commands pass false.
func newRuntime(ctx context.Context, opts *Options, withClient bool) (*runtime, error) {
	log.Initialize(opts.Verbosity, os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, opts)

	threshold, err := duration.Parse(cfg.Duration)
	if err != nil {
		return nil, fmt.Errorf("invalid duration: %w", err)
	}
	grace, err := duration.Parse(cfg.Grace)
	if err != nil {
		return nil, fmt.Errorf("invalid grace period: %w", err)
	}

	dbPath := cfg.Database
	if dbPath == "" {
		dbPath, err = store.DefaultPath(cfg.Check)
		if err != nil {
			return nil, err
		}
	}

	st, err := store.New(dbPath, cfg.Check)
	if err != nil {
		return nil, err
	}
	log.Debug("opened activity database", "path", st.Path(), "check", cfg.Check)

	rt := &runtime{
		cfg:       cfg,
		store:     st,
		threshold: threshold,
		grace:     grace,
	}

	engineCfg := dormancy.Config{
		Threshold: threshold,
		Mode:      dormancy.SnapshotMode(cfg.Mode),
		DryRun:    cfg.DryRun,
	}
	if len(cfg.Whitelist) > 0 {
		engineCfg.Whitelist = dormancy.NewLoginWhitelist(cfg.Whitelist)
	}

	if withClient {
		client, err := ghclient.NewClient(ctx, cfg.GetGitHubToken())
		if err != nil {
			return nil, err
		}
		// Fail early on a bad or expired token instead of partway
		// through a fetch cycle.
		login, err := client.AuthenticatedUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to verify GitHub credentials: %w", err)
		}
		log.Debug("authenticated to GitHub", "login", login)
		rt.client = client

		engineCfg.Fetcher, err = newFetcher(client, cfg)
		if err != nil {
			return nil, err
		}
		engineCfg.Remover, err = newRemover(client, cfg)
		if err != nil {
			return nil, err
		}
	}

	rt.engine, err = dormancy.New(st, cfg.Check, engineCfg)
	if err != nil {
		return nil, err
	}

	return rt, nil
}

// applyOverrides lets flags win over config file values.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.Org != "" {
		cfg.Organization = opts.Org
	}
	if opts.Check != "" {
		cfg.Check = opts.Check
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Duration != "" {
		cfg.Duration = opts.Duration
	}
	if opts.Grace != "" {
		cfg.Grace = opts.Grace
	}
	if opts.Mode != "" {
		cfg.Mode = opts.Mode
	}
	if opts.Fetcher != "" {
		cfg.Fetcher = opts.Fetcher
	}
	if opts.Format != "" {
		cfg.DefaultFormat = opts.Format
	}
	if opts.DryRun {
		cfg.DryRun = true
	}
}

// newFetcher builds the configured activity fetcher.
func newFetcher(client *ghclient.Client, cfg *config.Config) (dormancy.ActivityFetcher, error) {
	if cfg.Organization == "" {
		return nil, fmt.Errorf("organization not configured; set organization in config or pass --org")
	}

	switch cfg.Fetcher {
	case "", "copilot":
		return ghclient.NewCopilotSeatsFetcher(client, cfg.Organization, ghclient.ActivitySource(cfg.ActivitySource))
	case "audit-log":
		return ghclient.NewAuditLogFetcher(client, cfg.Organization)
	default:
		return nil, fmt.Errorf("unknown fetcher %q (use copilot or audit-log)", cfg.Fetcher)
	}
}

// newRemover builds the configured removal hook; nil means removal is
// not supported.
func newRemover(client *ghclient.Client, cfg *config.Config) (dormancy.RemovalHook, error) {
	switch cfg.Removal {
	case "", config.RemovalNone:
		return nil, nil
	case config.RemovalCopilotSeat:
		return ghclient.NewCopilotSeatRemover(client, cfg.Organization), nil
	case config.RemovalOrgMember:
		return ghclient.NewOrgMemberRemover(client, cfg.Organization), nil
	default:
		return nil, fmt.Errorf("unknown removal hook %q", cfg.Removal)
	}
}

// newLifecycle wires the notification lifecycle against GitHub Issues.
func (rt *runtime) newLifecycle() (*notify.Lifecycle, error) {
	if rt.cfg.Notify == nil || rt.cfg.Notify.Repo == "" {
		return nil, fmt.Errorf("notification repository not configured; set notify.repo in config")
	}

	baseLabels := append([]string{constants.LabelDormancyCheck}, rt.cfg.Notify.Labels...)

	tracker, err := ghclient.NewIssueTracker(rt.client, rt.cfg.Notify.Repo)
	if err != nil {
		return nil, err
	}

	searcher, err := ghclient.NewSearchFinder(rt.client, rt.cfg.Notify.Repo, baseLabels, constants.StateOpen, rt.cfg.Notify.Assignee)
	if err != nil {
		return nil, err
	}
	finder := notify.NewFinderChain(
		searcher,
		notify.NewListFinder(tracker, baseLabels, constants.StateOpen),
	)

	remover, err := newRemover(rt.client, rt.cfg)
	if err != nil {
		return nil, err
	}

	return notify.New(tracker, finder, notify.Config{
		GracePeriod: rt.grace,
		Threshold:   rt.threshold,
		BaseLabels:  baseLabels,
		Assignee:    rt.cfg.Notify.Assignee,
		DryRun:      rt.cfg.DryRun,
		Remover:     remover,
	})
}

// formatter returns the configured output formatter.
func (rt *runtime) formatter() output.Formatter {
	return output.NewFormatter(output.Format(rt.cfg.DefaultFormat))
}

// describeFetchError annotates a failed fetch cycle with a rate limit
// hint when the client tripped the limit mid-cycle.
func describeFetchError(err error) error {
	if ghclient.IsRateLimited() {
		return fmt.Errorf("%w: GitHub rate limit exhausted, retry after it resets", err)
	}
	return err
}
