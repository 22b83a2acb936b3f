package dormancy

import (
	"context"
	"strings"
	"time"

	"github.com/spiffcs/dormant/internal/log"
	"github.com/spiffcs/dormant/internal/model"
)

// thresholdPredicate is the default DormancyPredicate: dormant iff the
// time since last activity strictly exceeds the threshold. An account
// that was never observed active is always dormant.
type thresholdPredicate struct {
	threshold time.Duration
}

func (p thresholdPredicate) IsDormant(a model.Account, now time.Time) (bool, error) {
	if a.LastActivity == nil {
		log.Warn("account has no recorded activity, treating as dormant", "login", a.Login)
		return true, nil
	}
	return now.Sub(*a.LastActivity) > p.threshold, nil
}

// noWhitelist is the default WhitelistPredicate: nothing is exempt.
type noWhitelist struct{}

func (noWhitelist) IsWhitelisted(model.Account) (bool, error) {
	return false, nil
}

// LoginWhitelist exempts a fixed set of logins, matched case-insensitively.
type LoginWhitelist struct {
	logins map[string]struct{}
}

// NewLoginWhitelist builds a whitelist from the given logins.
func NewLoginWhitelist(logins []string) *LoginWhitelist {
	set := make(map[string]struct{}, len(logins))
	for _, l := range logins {
		set[strings.ToLower(l)] = struct{}{}
	}
	return &LoginWhitelist{logins: set}
}

func (w *LoginWhitelist) IsWhitelisted(a model.Account) (bool, error) {
	_, ok := w.logins[strings.ToLower(a.Login)]
	return ok, nil
}

// storeRecorder is the default Recorder: upsert into the activity store.
type storeRecorder struct {
	store AccountStore
}

func (r storeRecorder) Record(_ context.Context, a model.Account) error {
	return r.store.UpsertAccount(a)
}
