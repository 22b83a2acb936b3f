package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spiffcs/dormant/internal/constants"
	"github.com/spiffcs/dormant/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "activity.json"), "copilot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func ts(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", value, err)
	}
	return &parsed
}

func TestNewRequiresCheckType(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "activity.json"), ""); err == nil {
		t.Error("expected error for empty check type")
	}
}

func TestLastRunDefaultsToEpoch(t *testing.T) {
	s := newTestStore(t)

	lastRun, err := s.LastRun()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lastRun.Equal(time.Unix(0, 0)) {
		t.Errorf("expected epoch, got %v", lastRun)
	}
}

func TestUpsertAndList(t *testing.T) {
	s := newTestStore(t)

	accounts := []model.Account{
		{Login: "carol", Type: "copilot", LastActivity: ts(t, "2026-01-02T10:00:00Z")},
		{Login: "alice", Type: "copilot", LastActivity: nil},
		{Login: "bob", Type: "copilot", LastActivity: ts(t, "2026-03-01T08:30:00Z"), Metadata: map[string]any{"editor": "vscode"}},
	}
	for _, a := range accounts {
		if err := s.UpsertAccount(a); err != nil {
			t.Fatalf("upsert %s: %v", a.Login, err)
		}
	}

	got, err := s.ListAccounts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(got))
	}

	// Sorted by login
	wantOrder := []string{"alice", "bob", "carol"}
	for i, login := range wantOrder {
		if got[i].Login != login {
			t.Errorf("position %d: expected %s, got %s", i, login, got[i].Login)
		}
	}

	if got[0].LastActivity != nil {
		t.Error("alice should have nil lastActivity")
	}
	if got[1].LastActivity == nil || !got[1].LastActivity.Equal(*ts(t, "2026-03-01T08:30:00Z")) {
		t.Errorf("bob lastActivity mismatch: %v", got[1].LastActivity)
	}
	if got[1].Metadata["editor"] != "vscode" {
		t.Errorf("bob metadata not preserved: %v", got[1].Metadata)
	}
}

func TestUpsertOverwrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertAccount(model.Account{Login: "alice", Type: "copilot"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.UpsertAccount(model.Account{Login: "alice", Type: "copilot", LastActivity: ts(t, "2026-05-01T00:00:00Z")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.ListAccounts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 account, got %d", len(got))
	}
	if got[0].LastActivity == nil {
		t.Error("expected overwritten lastActivity")
	}
}

func TestUpsertRejectsReservedKey(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertAccount(model.Account{Login: constants.StateKey, Type: "copilot"}); err == nil {
		t.Error("expected error upserting the reserved key")
	}
	if err := s.UpsertAccount(model.Account{Type: "copilot"}); err == nil {
		t.Error("expected error upserting an empty login")
	}
}

func TestRemoveAccountIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertAccount(model.Account{Login: "alice", Type: "copilot"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := s.RemoveAccount("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !removed {
		t.Error("first removal should return true")
	}

	removed, err = s.RemoveAccount("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Error("second removal should return false")
	}
}

func TestRemoveAccountNeverRemovesMetadata(t *testing.T) {
	s := newTestStore(t)

	removed, err := s.RemoveAccount(constants.StateKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Error("reserved metadata key must not be removable")
	}
}

func TestDocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.json")
	s, err := New(path, "copilot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, login := range []string{"zoe", "alice", "mike"} {
		if err := s.UpsertAccount(model.Account{Login: login, Type: "copilot"}); err != nil {
			t.Fatalf("upsert %s: %v", login, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The metadata entry leads, then logins sorted lexicographically.
	text := string(data)
	order := []string{`"_state"`, `"alice"`, `"mike"`, `"zoe"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key)
		if idx < 0 {
			t.Fatalf("key %s missing from document", key)
		}
		if idx < last {
			t.Errorf("key %s out of order", key)
		}
		last = idx
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}

	var state model.CheckState
	if err := json.Unmarshal(doc[constants.StateKey], &state); err != nil {
		t.Fatalf("state entry is not valid: %v", err)
	}
	if state.CheckType != "copilot" {
		t.Errorf("expected check-type copilot, got %q", state.CheckType)
	}
	if state.LastUpdated.IsZero() {
		t.Error("lastUpdated not stamped")
	}
}

func TestIdentityMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.json")

	s, err := New(path, "copilot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.UpsertAccount(model.Account{Login: "alice", Type: "copilot"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other, err := New(path, "audit-log")
	if err != nil {
		t.Fatalf("constructing against a foreign database should not fail: %v", err)
	}

	if _, err := other.LastRun(); !errors.Is(err, ErrIdentityMismatch) {
		t.Errorf("LastRun: expected ErrIdentityMismatch, got %v", err)
	}
	if err := other.UpdateLastRun(time.Now()); !errors.Is(err, ErrIdentityMismatch) {
		t.Errorf("UpdateLastRun: expected ErrIdentityMismatch, got %v", err)
	}
	if err := other.UpsertAccount(model.Account{Login: "bob", Type: "audit-log"}); !errors.Is(err, ErrIdentityMismatch) {
		t.Errorf("UpsertAccount: expected ErrIdentityMismatch, got %v", err)
	}
	if _, err := other.RemoveAccount("alice"); !errors.Is(err, ErrIdentityMismatch) {
		t.Errorf("RemoveAccount: expected ErrIdentityMismatch, got %v", err)
	}
	if _, err := other.ListAccounts(); !errors.Is(err, ErrIdentityMismatch) {
		t.Errorf("ListAccounts: expected ErrIdentityMismatch, got %v", err)
	}
	if _, err := other.RawDocument(); !errors.Is(err, ErrIdentityMismatch) {
		t.Errorf("RawDocument: expected ErrIdentityMismatch, got %v", err)
	}
}

func TestMalformedRecord(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"missing type", `{"lastActivity": null}`},
		{"empty type", `{"lastActivity": null, "type": ""}`},
		{"missing lastActivity", `{"type": "copilot"}`},
		{"unparseable lastActivity", `{"lastActivity": "not-a-time", "type": "copilot"}`},
		{"numeric lastActivity", `{"lastActivity": 12345, "type": "copilot"}`},
		{"not an object", `"just a string"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "activity.json")
			doc := `{"_state": {"lastRun": "2026-01-01T00:00:00Z", "check-type": "copilot", "lastUpdated": "2026-01-01T00:00:00Z"}, "broken": ` + tt.entry + `}`
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			s, err := New(path, "copilot")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if _, err := s.ListAccounts(); !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

func TestUpdateLastRunPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.json")
	s, err := New(path, "copilot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ts(t, "2026-06-15T12:00:00Z")
	if err := s.UpdateLastRun(*want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := New(path, "copilot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lastRun, err := reopened.LastRun()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lastRun.Equal(*want) {
		t.Errorf("expected %v, got %v", want, lastRun)
	}
}

func TestRawDocument(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertAccount(model.Account{Login: "alice", Type: "copilot"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := s.RawDocument()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := doc[constants.StateKey]; !ok {
		t.Error("raw document missing metadata entry")
	}
	if _, ok := doc["alice"]; !ok {
		t.Error("raw document missing account entry")
	}

	// Mutating the snapshot must not affect the store.
	doc["alice"].(map[string]any)["type"] = "tampered"
	got, err := s.ListAccounts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Type != "copilot" {
		t.Error("raw document snapshot leaked store internals")
	}
}
