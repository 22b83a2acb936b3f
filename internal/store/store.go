// Package store persists per-account activity records in a single JSON
// document keyed by login, with one reserved metadata entry.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spiffcs/dormant/internal/constants"
	"github.com/spiffcs/dormant/internal/log"
	"github.com/spiffcs/dormant/internal/model"
)

// Store manages the activity database for one check. Every mutation
// rewrites the whole document with keys sorted lexicographically and the
// metadata entry restored to front position. The document is assumed
// single-writer per process; the mutex serializes writers in-process only.
type Store struct {
	path      string
	checkType string

	mu      sync.Mutex
	state   model.CheckState
	entries map[string]map[string]any // keyed by login, login itself not stored
	stamped string                    // check type found on disk, "" if fresh
}

// New opens (or initializes) the activity database at path for the given
// check type. A database stamped with a different check type is not
// rejected here; every subsequent read/write fails with ErrIdentityMismatch.
func New(path, checkType string) (*Store, error) {
	if checkType == "" {
		return nil, fmt.Errorf("check type must not be empty")
	}

	s := &Store{
		path:      path,
		checkType: checkType,
		state: model.CheckState{
			LastRun:   time.Unix(0, 0).UTC(),
			CheckType: checkType,
		},
		entries: make(map[string]map[string]any),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// DefaultPath returns the default database location under the user cache
// directory, namespaced by check type.
func DefaultPath(checkType string) (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(cacheDir, "dormant", checkType)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(dir, constants.DatabaseFileName), nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// CheckType returns the check identity this store was opened for.
func (s *Store) CheckType() string {
	return s.checkType
}

// load reads the document from disk. A missing file leaves the store in
// its freshly-initialized state.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read activity database: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse activity database %s: %w", s.path, err)
	}

	for key, raw := range doc {
		if key == constants.StateKey {
			var state model.CheckState
			if err := json.Unmarshal(raw, &state); err != nil {
				return fmt.Errorf("failed to parse %s entry: %w", constants.StateKey, err)
			}
			s.stamped = state.CheckType
			if state.LastRun.IsZero() {
				state.LastRun = time.Unix(0, 0).UTC()
			}
			s.state = state
			continue
		}

		var entry map[string]any
		if err := json.Unmarshal(raw, &entry); err != nil {
			// Shape problems surface as ErrMalformedRecord on read
			// operations; an entry that is not even an object is kept
			// as nil so ListAccounts can report it.
			log.Debug("entry is not an object", "login", key)
			entry = nil
		}
		s.entries[key] = entry
	}

	return nil
}

// checkIdentity guards every read and write against cross-check misuse.
func (s *Store) checkIdentity() error {
	if s.stamped != "" && s.stamped != s.checkType {
		return fmt.Errorf("%w: database is %q, store is %q", ErrIdentityMismatch, s.stamped, s.checkType)
	}
	return nil
}

// LastRun returns the timestamp of the last successful fetch cycle
// (epoch if no cycle completed yet).
func (s *Store) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIdentity(); err != nil {
		return time.Time{}, err
	}
	return s.state.LastRun, nil
}

// UpdateLastRun records the start time of a successful fetch cycle and
// rewrites the document. A zero timestamp means now.
func (s *Store) UpdateLastRun(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIdentity(); err != nil {
		return err
	}

	if t.IsZero() {
		t = time.Now().UTC()
	}
	s.state.LastRun = t

	return s.write()
}

// UpsertAccount creates or overwrites the record for an account. The
// login carries identity through the document key and is not duplicated
// in the stored value.
func (s *Store) UpsertAccount(a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIdentity(); err != nil {
		return err
	}
	if a.Login == "" || a.Login == constants.StateKey {
		return fmt.Errorf("invalid login %q", a.Login)
	}

	entry := map[string]any{
		"lastActivity": nil,
		"type":         a.Type,
	}
	if a.LastActivity != nil {
		entry["lastActivity"] = a.LastActivity.UTC().Format(time.RFC3339)
	}
	if a.Metadata != nil {
		entry["metadata"] = a.Metadata
	}
	s.entries[a.Login] = entry

	return s.write()
}

// RemoveAccount deletes the record for a login. It returns false without
// writing when the login is absent or names the reserved metadata key.
func (s *Store) RemoveAccount(login string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIdentity(); err != nil {
		return false, err
	}
	if login == constants.StateKey {
		return false, nil
	}
	if _, ok := s.entries[login]; !ok {
		return false, nil
	}

	delete(s.entries, login)
	if err := s.write(); err != nil {
		return false, err
	}
	return true, nil
}

// ListAccounts reconstructs full records from the document, re-attaching
// the login from each key.
func (s *Store) ListAccounts() ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIdentity(); err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(s.entries))
	for login, entry := range s.entries {
		a, err := decodeAccount(login, entry)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Login < accounts[j].Login
	})
	return accounts, nil
}

// RawDocument returns an identity-checked snapshot of the full document,
// including the metadata entry. Used for export and audit.
func (s *Store) RawDocument() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIdentity(); err != nil {
		return nil, err
	}

	doc := make(map[string]any, len(s.entries)+1)
	doc[constants.StateKey] = map[string]any{
		"lastRun":     s.state.LastRun.UTC().Format(time.RFC3339),
		"check-type":  s.state.CheckType,
		"lastUpdated": s.state.LastUpdated.UTC().Format(time.RFC3339),
	}
	for login, entry := range s.entries {
		copied := make(map[string]any, len(entry))
		for k, v := range entry {
			copied[k] = v
		}
		doc[login] = copied
	}
	return doc, nil
}

// decodeAccount validates the minimal shape of a stored entry.
func decodeAccount(login string, entry map[string]any) (model.Account, error) {
	if entry == nil {
		return model.Account{}, fmt.Errorf("%w: entry %q is not an object", ErrMalformedRecord, login)
	}

	typ, ok := entry["type"].(string)
	if !ok || typ == "" {
		return model.Account{}, fmt.Errorf("%w: entry %q has no activity type", ErrMalformedRecord, login)
	}

	raw, ok := entry["lastActivity"]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: entry %q has no lastActivity field", ErrMalformedRecord, login)
	}

	a := model.Account{Login: login, Type: typ}

	switch v := raw.(type) {
	case nil:
		// never observed active, preserved as-is
	case string:
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return model.Account{}, fmt.Errorf("%w: entry %q has unparseable lastActivity %q", ErrMalformedRecord, login, v)
		}
		a.LastActivity = &ts
	default:
		return model.Account{}, fmt.Errorf("%w: entry %q has non-string lastActivity", ErrMalformedRecord, login)
	}

	if md, ok := entry["metadata"].(map[string]any); ok {
		a.Metadata = md
	}

	return a, nil
}

// write rewrites the entire document atomically: metadata entry first,
// then all logins sorted lexicographically, stamping lastUpdated.
// Callers must hold the mutex.
func (s *Store) write() error {
	s.state.LastUpdated = time.Now().UTC()

	logins := make([]string, 0, len(s.entries))
	for login := range s.entries {
		logins = append(logins, login)
	}
	sort.Strings(logins)

	var buf bytes.Buffer
	buf.WriteString("{\n")
	if err := writeEntry(&buf, constants.StateKey, s.state, len(logins) == 0); err != nil {
		return err
	}
	for i, login := range logins {
		if err := writeEntry(&buf, login, s.entries[login], i == len(logins)-1); err != nil {
			return err
		}
	}
	buf.WriteString("}\n")

	// Write to a temp file and rename so readers never observe a
	// half-written document.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write activity database: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace activity database: %w", err)
	}

	log.Trace("activity database written", "path", s.path, "accounts", len(logins))
	return nil
}

func writeEntry(buf *bytes.Buffer, key string, value any, last bool) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode entry %q: %w", key, err)
	}

	buf.WriteString("  ")
	buf.Write(k)
	buf.WriteString(": ")
	buf.Write(v)
	if !last {
		buf.WriteString(",")
	}
	buf.WriteString("\n")
	return nil
}
