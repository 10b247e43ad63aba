package linux

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"runc-go/spec"
)

const resctrlRoot = "/sys/fs/resctrl"

// ApplyIntelRdt creates (or joins) the Intel RDT resctrl group named by
// ClosID and assigns the given pid to it, writing the L3 cache and memory
// bandwidth schemata requested by linux.intelRdt. No example repo in the
// pack vendors an Intel RDT library, so this talks to the resctrl
// pseudo-filesystem directly, the same way the cgroup backends talk to
// cgroupfs.
func ApplyIntelRdt(r *spec.LinuxIntelRdt, pid int) error {
	if r == nil {
		return nil
	}
	if r.ClosID == "" {
		return fmt.Errorf("intelRdt: closID is required")
	}

	groupPath := filepath.Join(resctrlRoot, r.ClosID)
	if err := os.MkdirAll(groupPath, 0755); err != nil {
		return fmt.Errorf("create resctrl group: %w", err)
	}

	if r.L3CacheSchema != "" {
		if err := os.WriteFile(filepath.Join(groupPath, "schemata"), []byte(r.L3CacheSchema+"\n"), 0644); err != nil {
			return fmt.Errorf("write L3 schema: %w", err)
		}
	}
	if r.MemBwSchema != "" {
		if err := os.WriteFile(filepath.Join(groupPath, "schemata"), []byte(r.MemBwSchema+"\n"), 0644); err != nil {
			return fmt.Errorf("write membw schema: %w", err)
		}
	}

	tasksPath := filepath.Join(groupPath, "tasks")
	if err := os.WriteFile(tasksPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("assign pid to resctrl group: %w", err)
	}
	return nil
}
