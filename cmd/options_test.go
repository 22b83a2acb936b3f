package cmd

import "testing"

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()

	if o.Filter != "all" {
		t.Errorf("expected filter all, got %q", o.Filter)
	}
	if o.DryRun {
		t.Error("dry run should default to false")
	}
	if o.Verbosity != 0 {
		t.Errorf("expected verbosity 0, got %d", o.Verbosity)
	}
}

func TestNewOptionsApplies(t *testing.T) {
	o := NewOptions(
		WithFormat("json"),
		WithOrg("acme"),
		WithCheck("audit-log"),
		WithDuration("60d"),
		WithGrace("14d"),
		WithMode("partial"),
		WithDryRun(true),
		WithVerbosity(2),
	)

	if o.Format != "json" {
		t.Errorf("expected format json, got %q", o.Format)
	}
	if o.Org != "acme" {
		t.Errorf("expected org acme, got %q", o.Org)
	}
	if o.Check != "audit-log" {
		t.Errorf("expected check audit-log, got %q", o.Check)
	}
	if o.Duration != "60d" {
		t.Errorf("expected duration 60d, got %q", o.Duration)
	}
	if o.Grace != "14d" {
		t.Errorf("expected grace 14d, got %q", o.Grace)
	}
	if o.Mode != "partial" {
		t.Errorf("expected mode partial, got %q", o.Mode)
	}
	if !o.DryRun {
		t.Error("expected dry run set")
	}
	if o.Verbosity != 2 {
		t.Errorf("expected verbosity 2, got %d", o.Verbosity)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := New()

	if root.Use != "dormant" {
		t.Errorf("unexpected root use: %q", root.Use)
	}

	want := []string{"check", "fetch", "list", "notify", "export", "config", "version"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
