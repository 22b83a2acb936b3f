package dormancy

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/dormant/internal/duration"
	"github.com/spiffcs/dormant/internal/log"
	"github.com/spiffcs/dormant/internal/model"
)

// SnapshotMode controls how a fetch batch is interpreted.
type SnapshotMode string

const (
	// ModePartial treats the batch as an incremental update; absence
	// from the batch implies nothing.
	ModePartial SnapshotMode = "partial"

	// ModeComplete treats the batch as the full current membership;
	// stored accounts absent from the batch are removed upstream.
	ModeComplete SnapshotMode = "complete"
)

// AccountStore is the persistence surface the engine needs.
type AccountStore interface {
	LastRun() (time.Time, error)
	UpdateLastRun(t time.Time) error
	UpsertAccount(a model.Account) error
	RemoveAccount(login string) (bool, error)
	ListAccounts() ([]model.Account, error)
}

// Config configures an Engine. The predicate and recorder fields fall
// back to documented defaults when nil; Fetcher is only required to run
// fetch cycles.
type Config struct {
	// Threshold is the inactivity duration beyond which an account is
	// dormant (strict greater-than comparison).
	Threshold time.Duration

	// Mode selects partial or complete snapshot interpretation.
	Mode SnapshotMode

	// DryRun suppresses removal side effects.
	DryRun bool

	Fetcher   ActivityFetcher
	Dormant   DormancyPredicate  // default: threshold comparison
	Whitelist WhitelistPredicate // default: nothing whitelisted
	Remover   RemovalHook        // optional; nil means removal unsupported
	Recorder  Recorder           // default: store upsert
}

// Engine classifies accounts for one check and drives the fetch cycle.
// Classification runs fresh on every query; nothing is cached.
type Engine struct {
	store     AccountStore
	checkType string
	cfg       Config
}

// New creates an engine over the given store. checkType names the check
// for fetch-context purposes and must match the store's identity.
func New(st AccountStore, checkType string, cfg Config) (*Engine, error) {
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("dormancy threshold must be positive, got %v", cfg.Threshold)
	}
	switch cfg.Mode {
	case ModePartial, ModeComplete:
	case "":
		cfg.Mode = ModePartial
	default:
		return nil, fmt.Errorf("unknown snapshot mode %q", cfg.Mode)
	}

	if cfg.Dormant == nil {
		cfg.Dormant = thresholdPredicate{threshold: cfg.Threshold}
	}
	if cfg.Whitelist == nil {
		cfg.Whitelist = noWhitelist{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = storeRecorder{store: st}
	}

	return &Engine{store: st, checkType: checkType, cfg: cfg}, nil
}

// Threshold returns the configured inactivity threshold.
func (e *Engine) Threshold() time.Duration {
	return e.cfg.Threshold
}

// FetchActivity runs one fetch-and-merge cycle. since overrides the
// activity window lower bound; when nil the store's last run is used.
// On success lastRun advances to the cycle start time, so activity that
// occurred during a slow fetch is re-observed next cycle. Any failure
// aborts the cycle without advancing lastRun.
func (e *Engine) FetchActivity(ctx context.Context, since *time.Time) error {
	if e.cfg.Fetcher == nil {
		return fmt.Errorf("no activity fetcher configured")
	}

	lower := time.Time{}
	if since != nil {
		lower = *since
	} else {
		lastRun, err := e.store.LastRun()
		if err != nil {
			return err
		}
		lower = lastRun
	}

	cycleStart := time.Now().UTC()

	log.Info("fetching activity", "check", e.checkType, "since", lower.Format(time.RFC3339))
	batch, err := e.cfg.Fetcher.Fetch(ctx, FetchContext{
		LastFetchTime: lower,
		CheckType:     e.checkType,
		DryRun:        e.cfg.DryRun,
	})
	if err != nil {
		return err
	}
	log.Info("fetched activity records", "count", len(batch))

	// Per-record persistence runs as an unordered fan-out; the first
	// failure aborts the cycle.
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range batch {
		g.Go(func() error {
			return e.cfg.Recorder.Record(gctx, a)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if e.cfg.Mode == ModeComplete {
		if err := e.reconcile(ctx, batch); err != nil {
			return err
		}
	}

	return e.store.UpdateLastRun(cycleStart)
}

// reconcile handles removal-by-absence: accounts present in storage but
// absent from a complete snapshot disappeared upstream.
func (e *Engine) reconcile(ctx context.Context, batch []model.Account) error {
	fetched := make(map[string]struct{}, len(batch))
	for _, a := range batch {
		fetched[a.Login] = struct{}{}
	}

	stored, err := e.store.ListAccounts()
	if err != nil {
		return err
	}

	for _, a := range stored {
		if _, ok := fetched[a.Login]; ok {
			continue
		}

		if e.cfg.Remover == nil {
			log.Debug("account gone upstream but removal unsupported", "login", a.Login)
			continue
		}
		if e.cfg.DryRun {
			log.Info("dry run: would remove account gone upstream", "login", a.Login)
			continue
		}

		log.Info("removing account gone upstream", "login", a.Login)
		if _, err := e.cfg.Remover.Remove(ctx, a); err != nil {
			return err
		}
		if _, err := e.store.RemoveAccount(a.Login); err != nil {
			return err
		}
	}

	return nil
}

// ListAccounts returns every tracked account.
func (e *Engine) ListAccounts() ([]model.Account, error) {
	return e.store.ListAccounts()
}

// Partition holds one classification pass over the tracked accounts.
// Both lists are sorted by login so output order is deterministic.
type Partition struct {
	Active  []model.Account
	Dormant []model.Account
}

// Partition classifies every account against a single now instant.
// A failing predicate aborts the whole pass; no partial split is
// returned.
func (e *Engine) Partition() (Partition, error) {
	accounts, err := e.store.ListAccounts()
	if err != nil {
		return Partition{}, err
	}

	now := time.Now().UTC()
	dormant := make([]bool, len(accounts))

	g := new(errgroup.Group)
	for i, a := range accounts {
		g.Go(func() error {
			whitelisted, err := e.cfg.Whitelist.IsWhitelisted(a)
			if err != nil {
				return err
			}
			if whitelisted {
				log.Debug("account whitelisted", "login", a.Login)
				return nil
			}

			d, err := e.cfg.Dormant.IsDormant(a, now)
			if err != nil {
				return err
			}
			dormant[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Partition{}, err
	}

	var p Partition
	for i, a := range accounts {
		if dormant[i] {
			p.Dormant = append(p.Dormant, a)
		} else {
			p.Active = append(p.Active, a)
		}
	}

	sort.Slice(p.Active, func(i, j int) bool { return p.Active[i].Login < p.Active[j].Login })
	sort.Slice(p.Dormant, func(i, j int) bool { return p.Dormant[i].Login < p.Dormant[j].Login })
	return p, nil
}

// ListActiveAccounts returns the active side of a fresh classification pass.
func (e *Engine) ListActiveAccounts() ([]model.Account, error) {
	p, err := e.Partition()
	if err != nil {
		return nil, err
	}
	return p.Active, nil
}

// ListDormantAccounts returns the dormant side of a fresh classification pass.
func (e *Engine) ListDormantAccounts() ([]model.Account, error) {
	p, err := e.Partition()
	if err != nil {
		return nil, err
	}
	return p.Dormant, nil
}

// Summarize computes aggregate statistics from a fresh classification
// pass. Percentages are rounded to two decimals and are zero (not NaN)
// for an empty account set.
func (e *Engine) Summarize() (model.Summary, error) {
	lastRun, err := e.store.LastRun()
	if err != nil {
		return model.Summary{}, err
	}

	p, err := e.Partition()
	if err != nil {
		return model.Summary{}, err
	}

	total := len(p.Active) + len(p.Dormant)
	summary := model.Summary{
		LastActivityFetch: lastRun,
		TotalAccounts:     total,
		ActiveAccounts:    len(p.Active),
		DormantAccounts:   len(p.Dormant),
		Duration:          duration.Humanize(e.cfg.Threshold),
	}
	if total > 0 {
		summary.ActiveAccountPercentage = round2(float64(len(p.Active)) / float64(total) * 100)
		summary.DormantAccountPercentage = round2(float64(len(p.Dormant)) / float64(total) * 100)
	}
	return summary, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
