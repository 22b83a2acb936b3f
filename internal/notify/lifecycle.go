package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/spiffcs/dormant/internal/constants"
	"github.com/spiffcs/dormant/internal/dormancy"
	"github.com/spiffcs/dormant/internal/duration"
	"github.com/spiffcs/dormant/internal/log"
	"github.com/spiffcs/dormant/internal/model"
)

// Config configures a Lifecycle.
type Config struct {
	// GracePeriod is the window between notification and removal.
	GracePeriod time.Duration

	// Threshold is the dormancy threshold, used in ticket bodies only.
	Threshold time.Duration

	// BaseLabels identify tickets owned by this check. Every created
	// ticket carries them, and lookups filter by them.
	BaseLabels []string

	// Assignee is an optional login assigned to created tickets.
	Assignee string

	// DryRun suppresses all tracker and removal side effects.
	DryRun bool

	// Remover removes the account when the grace period expires.
	// Nil means removal is not supported.
	Remover dormancy.RemovalHook
}

// Lifecycle advances per-account notification tickets through the
// notified → grace period → removed/reactivated state machine. Unlike
// the fetch cycle, per-account failures here are isolated: partial
// progress is the expected steady state.
type Lifecycle struct {
	tracker TicketTracker
	finder  TicketFinder
	cfg     Config
}

// New creates a lifecycle over the given tracker. finder locates the
// open ticket for a login; pass a FinderChain to get search-with-fallback
// behavior.
func New(tracker TicketTracker, finder TicketFinder, cfg Config) (*Lifecycle, error) {
	if tracker == nil {
		return nil, fmt.Errorf("notification lifecycle requires a ticket tracker")
	}
	if finder == nil {
		return nil, fmt.Errorf("notification lifecycle requires a ticket finder")
	}
	if cfg.GracePeriod <= 0 {
		return nil, fmt.Errorf("grace period must be positive, got %v", cfg.GracePeriod)
	}
	if len(cfg.BaseLabels) == 0 {
		cfg.BaseLabels = []string{constants.LabelDormancyCheck}
	}
	return &Lifecycle{tracker: tracker, finder: finder, cfg: cfg}, nil
}

// ProcessDormant runs one notification pass over the full current
// dormant set. The returned error covers only the up-front open-ticket
// listing; everything after is isolated per account into Report.Errors.
func (l *Lifecycle) ProcessDormant(ctx context.Context, dormant []model.Account) (model.Report, error) {
	report := model.Report{Errors: make(map[string]string)}
	now := time.Now().UTC()

	open, err := l.tracker.List(ctx, l.cfg.BaseLabels, constants.StateOpen)
	if err != nil {
		return report, fmt.Errorf("failed to list open notification tickets: %w", err)
	}

	dormantSet := make(map[string]struct{}, len(dormant))
	for _, a := range dormant {
		dormantSet[a.Login] = struct{}{}
	}

	// Accounts with an open ticket that are no longer dormant came back.
	for _, t := range open {
		if _, stillDormant := dormantSet[t.Title]; stillDormant {
			continue
		}
		l.reactivate(ctx, t, &report)
	}

	for _, a := range dormant {
		l.processAccount(ctx, a, now, &report)
	}

	if len(report.Errors) == 0 {
		report.Errors = nil
	}
	return report, nil
}

// reactivate closes the ticket for an account that left the dormant set.
func (l *Lifecycle) reactivate(ctx context.Context, t model.Ticket, report *model.Report) {
	login := t.Title
	result := model.NotificationResult{Login: login, Ticket: &t}

	if l.cfg.DryRun {
		log.Info("dry run: would close notification, account became active", "login", login)
		report.Reactivated = append(report.Reactivated, result)
		return
	}

	if err := l.tracker.RemoveLabel(ctx, t, constants.LabelPendingRemoval); err != nil {
		report.Errors[login] = err.Error()
		return
	}
	if err := l.tracker.AddLabel(ctx, t, constants.LabelBecameActive); err != nil {
		report.Errors[login] = err.Error()
		return
	}
	if err := l.tracker.Comment(ctx, t, fmt.Sprintf("@%s became active again, closing.", login)); err != nil {
		report.Errors[login] = err.Error()
		return
	}
	if err := l.tracker.Close(ctx, t); err != nil {
		report.Errors[login] = err.Error()
		return
	}

	log.Info("account reactivated, notification closed", "login", login, "ticket", t.Number)
	report.Reactivated = append(report.Reactivated, result)
}

// processAccount advances one dormant account through the state machine.
func (l *Lifecycle) processAccount(ctx context.Context, a model.Account, now time.Time, report *model.Report) {
	ticket, err := l.finder.Find(ctx, a.Login)
	if err != nil {
		report.Errors[a.Login] = err.Error()
		return
	}

	switch {
	case ticket == nil:
		l.notifyAccount(ctx, a, report)

	case ticket.HasLabel(constants.LabelExcluded):
		// Manual override escape hatch: admins excluded this account.
		log.Debug("account excluded from removal", "login", a.Login, "ticket", ticket.Number)
		report.Excluded = append(report.Excluded, model.NotificationResult{Login: a.Login, Ticket: ticket})

	case now.Sub(ticket.CreatedAt) > l.cfg.GracePeriod:
		l.removeAccount(ctx, a, *ticket, report)

	default:
		report.InGracePeriod = append(report.InGracePeriod, model.NotificationResult{Login: a.Login, Ticket: ticket})
	}
}

// notifyAccount opens the notification ticket for a newly-dormant account.
func (l *Lifecycle) notifyAccount(ctx context.Context, a model.Account, report *model.Report) {
	t := l.newTicket(a)

	if l.cfg.DryRun {
		log.Info("dry run: would create notification", "login", a.Login)
		report.Notified = append(report.Notified, model.NotificationResult{Login: a.Login, Ticket: &t})
		return
	}

	created, err := l.tracker.Create(ctx, t)
	if err != nil {
		report.Errors[a.Login] = err.Error()
		return
	}

	log.Info("account notified", "login", a.Login, "ticket", created.Number)
	report.Notified = append(report.Notified, model.NotificationResult{Login: a.Login, Ticket: &created})
}

// removeAccount handles grace-period expiry. An account only counts as
// removed when the hook ran and confirmed; a declining hook is reported
// separately and the ticket stays open.
func (l *Lifecycle) removeAccount(ctx context.Context, a model.Account, t model.Ticket, report *model.Report) {
	result := model.NotificationResult{Login: a.Login, Ticket: &t}

	if l.cfg.DryRun {
		log.Info("dry run: would remove account", "login", a.Login, "ticket", t.Number)
		report.Removed = append(report.Removed, result)
		return
	}

	if l.cfg.Remover == nil {
		log.Warn("grace period expired but removal is not supported", "login", a.Login)
		report.RemovalFailed = append(report.RemovalFailed, result)
		return
	}

	ok, err := l.cfg.Remover.Remove(ctx, a)
	if err != nil {
		report.Errors[a.Login] = err.Error()
		return
	}
	if !ok {
		log.Warn("removal hook declined to remove account", "login", a.Login)
		report.RemovalFailed = append(report.RemovalFailed, result)
		return
	}

	// The account is gone; ticket cleanup failures are recorded but do
	// not change the removed outcome.
	report.Removed = append(report.Removed, result)
	if err := l.closeRemoved(ctx, a.Login, t); err != nil {
		report.Errors[a.Login] = err.Error()
	}
}

func (l *Lifecycle) closeRemoved(ctx context.Context, login string, t model.Ticket) error {
	if err := l.tracker.AddLabel(ctx, t, constants.LabelRemoved); err != nil {
		return err
	}
	if err := l.tracker.Comment(ctx, t, fmt.Sprintf("@%s was removed after the grace period expired.", login)); err != nil {
		return err
	}
	if err := l.tracker.Close(ctx, t); err != nil {
		return err
	}
	log.Info("account removed, notification closed", "login", login, "ticket", t.Number)
	return nil
}

// newTicket builds the notification ticket for an account. The title is
// exactly the login; lookups depend on that.
func (l *Lifecycle) newTicket(a model.Account) model.Ticket {
	lastActivity := "never"
	if a.LastActivity != nil {
		lastActivity = a.LastActivity.UTC().Format(time.RFC3339)
	}

	body := fmt.Sprintf(
		"@%s has shown no activity for more than %s (last activity: %s).\n\n"+
			"Unless activity resumes, the account will be removed after %s.\n"+
			"Apply the `%s` label to exempt this account.",
		a.Login,
		duration.Humanize(l.cfg.Threshold),
		lastActivity,
		duration.Humanize(l.cfg.GracePeriod),
		constants.LabelExcluded,
	)

	labels := make([]string, 0, len(l.cfg.BaseLabels)+1)
	labels = append(labels, l.cfg.BaseLabels...)
	labels = append(labels, constants.LabelPendingRemoval)

	return model.Ticket{
		Title:     a.Login,
		Body:      body,
		State:     constants.StateOpen,
		Labels:    labels,
		Assignee:  l.cfg.Assignee,
		CreatedAt: time.Now().UTC(),
	}
}
