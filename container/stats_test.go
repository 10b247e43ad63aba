package container

import (
	"context"
	"os"
	"testing"

	"runc-go/spec"
)

func TestStats_UnknownContainer(t *testing.T) {
	_, err := Stats(context.Background(), "does-not-exist", t.TempDir())
	if err == nil {
		t.Error("expected error reading stats for an unknown container")
	}
}

func TestStats_ToleratesMissingCgroupFiles(t *testing.T) {
	if os.Getuid() != 0 {
		t.Skip("skipping stats test: requires root to create a cgroup directory")
	}
	// A freshly created container has no resource files populated yet; the
	// cgroup backend zeroes absent counters instead of failing.
	stateRoot, ctx := setupLifecycleContainer(t, "stats-test", spec.StatusCreated)
	stats, err := Stats(ctx, "stats-test", stateRoot)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats == nil {
		t.Fatal("expected non-nil stats")
	}
}
