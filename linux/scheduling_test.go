package linux

import (
	"os"
	"testing"

	"runc-go/spec"
)

func TestSetIOPriority_Nil(t *testing.T) {
	if err := SetIOPriority(nil); err != nil {
		t.Errorf("expected nil error for nil priority, got %v", err)
	}
}

func TestSetIOPriority_UnknownClass(t *testing.T) {
	err := SetIOPriority(&spec.LinuxIOPriority{Class: "IOPRIO_CLASS_BOGUS", Priority: 4})
	if err == nil {
		t.Error("expected error for unknown ioprio class")
	}
}

func TestSetIOPriority_AppliesSelf(t *testing.T) {
	if os.Getuid() != 0 {
		t.Skip("skipping ioprio_set test: requires root")
	}
	err := SetIOPriority(&spec.LinuxIOPriority{Class: spec.IOPRIOClassBE, Priority: 4})
	if err != nil {
		t.Errorf("SetIOPriority failed: %v", err)
	}
}

func TestSetScheduler_Nil(t *testing.T) {
	if err := SetScheduler(nil); err != nil {
		t.Errorf("expected nil error for nil scheduler, got %v", err)
	}
}

func TestSetScheduler_UnknownPolicy(t *testing.T) {
	err := SetScheduler(&spec.Scheduler{Policy: "SCHED_BOGUS"})
	if err == nil {
		t.Error("expected error for unknown scheduler policy")
	}
}

func TestSchedFlagsBitmask_Empty(t *testing.T) {
	if mask := schedFlagsBitmask(nil); mask != 0 {
		t.Errorf("expected 0 for no flags, got %#x", mask)
	}
}

func TestSchedFlagsBitmask_Combines(t *testing.T) {
	mask := schedFlagsBitmask([]string{"SCHED_FLAG_RESET_ON_FORK", "SCHED_FLAG_DL_OVERRUN"})
	want := schedFlagValue["SCHED_FLAG_RESET_ON_FORK"] | schedFlagValue["SCHED_FLAG_DL_OVERRUN"]
	if mask != want {
		t.Errorf("schedFlagsBitmask() = %#x, want %#x", mask, want)
	}
}

func TestSchedFlagsBitmask_UnknownFlagIgnored(t *testing.T) {
	mask := schedFlagsBitmask([]string{"SCHED_FLAG_NONSENSE"})
	if mask != 0 {
		t.Errorf("expected unknown flag to contribute 0 bits, got %#x", mask)
	}
}

func TestIoprioClassValue_KnownClasses(t *testing.T) {
	for _, class := range []string{spec.IOPRIOClassRT, spec.IOPRIOClassBE, spec.IOPRIOClassIdle} {
		if _, ok := ioprioClassValue[class]; !ok {
			t.Errorf("ioprioClassValue missing entry for %s", class)
		}
	}
}

func TestSchedPolicyValue_KnownPolicies(t *testing.T) {
	for _, policy := range []string{spec.SchedOther, spec.SchedFIFO, spec.SchedRR, spec.SchedBatch, spec.SchedIdle, spec.SchedDeadline} {
		if _, ok := schedPolicyValue[policy]; !ok {
			t.Errorf("schedPolicyValue missing entry for %s", policy)
		}
	}
}
