package store

import (
	"context"
	"testing"
)

func TestState_LastNamespace_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	s := &State{Dir: dir}

	// Missing row => empty.
	got, err := s.LastNamespace(ctx)
	if err != nil {
		t.Fatalf("LastNamespace: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty namespace, got %q", got)
	}

	if err := s.SetLastNamespace(ctx, "web"); err != nil {
		t.Fatalf("SetLastNamespace: %v", err)
	}
	if err := s.SetLastNamespace(ctx, "media"); err != nil {
		t.Fatalf("SetLastNamespace (overwrite): %v", err)
	}

	// A fresh State over the same dir sees the persisted value.
	got, err = (&State{Dir: dir}).LastNamespace(ctx)
	if err != nil {
		t.Fatalf("LastNamespace (reopen): %v", err)
	}
	if got != "media" {
		t.Fatalf("expected media, got %q", got)
	}
}

func TestState_InMemoryWhenDirEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := &State{}
	if err := s.SetLastNamespace(ctx, "web"); err != nil {
		t.Fatalf("SetLastNamespace: %v", err)
	}
	got, err := s.LastNamespace(ctx)
	if err != nil || got != "web" {
		t.Fatalf("expected web, got %q (%v)", got, err)
	}
}
