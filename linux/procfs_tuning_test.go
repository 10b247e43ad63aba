package linux

import (
	"os"
	"testing"
)

func TestSysctlPath(t *testing.T) {
	cases := map[string]string{
		"net.ipv4.ip_forward": "/proc/sys/net/ipv4/ip_forward",
		"kernel.shmmax":       "/proc/sys/kernel/shmmax",
	}
	for key, want := range cases {
		if got := sysctlPath(key); got != want {
			t.Errorf("sysctlPath(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestApplySysctl_Empty(t *testing.T) {
	if err := ApplySysctl(nil); err != nil {
		t.Errorf("expected nil error for empty sysctl map, got %v", err)
	}
}

func TestSetOOMScoreAdj_Self(t *testing.T) {
	if os.Getuid() != 0 {
		t.Skip("skipping oom_score_adj test: requires root to reliably lower the score back")
	}
	if err := SetOOMScoreAdj(0); err != nil {
		t.Errorf("SetOOMScoreAdj failed: %v", err)
	}
}
