// Package linux provides cgroup resource management across the legacy
// (v1, per-controller) and unified (v2, single-hierarchy) layouts.
package linux

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"runc-go/spec"
)

// validCgroupKey matches valid cgroup v2 controller file names.
// Valid keys are like: cpu.max, memory.max, pids.max, io.bfq.weight
var validCgroupKey = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*(\.[a-zA-Z][a-zA-Z0-9]*)*$`)

const cgroupRoot = "/sys/fs/cgroup"

// unifiedMagic is the statfs f_type value of cgroup2's single hierarchy.
const unifiedMagic = 0x63677270

// CgroupStats reports the resource counters a controller can read back.
// Fields that a given backend or kernel build does not expose are left zero.
type CgroupStats struct {
	MemoryUsage     uint64
	MemoryMaxUsage  uint64
	MemoryLimit     uint64
	MemoryFailCount uint64
	PidsCurrent     uint64
	PidsLimit       uint64
	CPUUsageNanos   uint64
}

// CgroupManager is the capability every backend implements: placing a
// process, writing resource limits, reading back stats, freezing, and
// tearing down. Two incompatible host layouts exist (legacy per-controller,
// unified single-tree); a third variant drives unit creation through a
// systemd transport instead of writing cgroupfs directly.
type CgroupManager interface {
	// Apply places pid into the cgroup (created by the backend's
	// constructor) and then applies resources.
	Apply(pid int, resources *spec.LinuxResources) error

	// SetResources updates resource limits on an already-created cgroup.
	SetResources(resources *spec.LinuxResources) error

	// Stats reads back current usage counters.
	Stats() (*CgroupStats, error)

	// Freeze sets the freezer state to frozen (true) or thawed (false) and
	// polls until the kernel confirms the transition.
	Freeze(frozen bool) error

	// Remove destroys the cgroup. The cgroup must be empty.
	Remove() error

	// Path returns the cgroup's filesystem path (or systemd unit name).
	Path() string
}

// DetectUnified reports whether /sys/fs/cgroup is mounted as the cgroup2
// unified hierarchy (as opposed to legacy per-controller or hybrid mode).
func DetectUnified() bool {
	var st unix.Statfs_t
	if err := unix.Statfs(cgroupRoot, &st); err != nil {
		return false
	}
	return uint32(st.Type) == unifiedMagic
}

// NewCgroupManager selects and constructs the right backend: LegacyViaUnit
// when systemdCgroup is set, otherwise Legacy or Unified based on host
// detection. cgroupPath follows the OCI convention (absolute path relative
// to the cgroup root, or, under systemd, "slice:prefix:name").
func NewCgroupManager(cgroupPath string, systemdCgroup bool) (CgroupManager, error) {
	if systemdCgroup {
		return newSystemdManager(cgroupPath, DetectUnified())
	}
	if DetectUnified() {
		return NewCgroup(cgroupPath)
	}
	return NewLegacyCgroup(cgroupPath)
}

// Cgroup is the Unified (v2) backend: a single hierarchy at /sys/fs/cgroup.
type Cgroup struct {
	path string
}

// NewCgroup creates or opens a cgroup at the given path.
// Path should be relative to /sys/fs/cgroup (e.g., "runc-go/container-id").
func NewCgroup(cgroupPath string) (*Cgroup, error) {
	fullPath := filepath.Join(cgroupRoot, cgroupPath)

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return nil, fmt.Errorf("create cgroup directory: %w", err)
	}

	return &Cgroup{path: fullPath}, nil
}

// Path returns the filesystem path of the cgroup.
func (c *Cgroup) Path() string {
	return c.path
}

// AddProcess adds a process to this cgroup.
func (c *Cgroup) AddProcess(pid int) error {
	procsPath := filepath.Join(c.path, "cgroup.procs")
	return os.WriteFile(procsPath, []byte(strconv.Itoa(pid)), 0644)
}

// Apply places pid into the cgroup, then applies resources.
func (c *Cgroup) Apply(pid int, resources *spec.LinuxResources) error {
	if err := c.AddProcess(pid); err != nil {
		return fmt.Errorf("add process to cgroup: %w", err)
	}
	return c.SetResources(resources)
}

// SetResources applies OCI resource limits to the cgroup.
func (c *Cgroup) SetResources(resources *spec.LinuxResources) error {
	return c.ApplyResources(resources)
}

// ApplyResources applies OCI resource limits to the cgroup.
func (c *Cgroup) ApplyResources(resources *spec.LinuxResources) error {
	if resources == nil {
		return nil
	}

	if err := c.applyMemory(resources.Memory); err != nil {
		return err
	}

	if err := c.applyCPU(resources.CPU); err != nil {
		return err
	}

	if err := c.applyPids(resources.Pids); err != nil {
		return err
	}

	if err := c.applyHugetlb(resources.HugepageLimits); err != nil {
		return err
	}

	// Apply unified cgroup v2 settings directly
	for key, value := range resources.Unified {
		// SECURITY: Validate cgroup key to prevent path traversal
		if err := validateCgroupKey(key); err != nil {
			return fmt.Errorf("invalid cgroup key %q: %w", key, err)
		}

		path := filepath.Join(c.path, key)
		if err := os.WriteFile(path, []byte(value), 0644); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}

	return nil
}

// currentMemoryLimit reads the memory.max value installed before this apply
// call; an unreadable or "max" file is treated as unlimited so a fresh
// cgroup's default never forces a spurious swap-first ordering.
func (c *Cgroup) currentMemoryLimit() int64 {
	data, err := os.ReadFile(filepath.Join(c.path, "memory.max"))
	if err != nil {
		return math.MaxInt64
	}
	s := strings.TrimSpace(string(data))
	if s == "max" || s == "" {
		return math.MaxInt64
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return v
}

// applyMemory applies memory limits. Writing limit/swap has an ordering
// requirement: when the new swap exceeds the currently installed limit, swap
// must be written first or the kernel rejects the limit write with EBUSY.
func (c *Cgroup) applyMemory(memory *spec.LinuxMemory) error {
	if memory == nil {
		return nil
	}

	writeLimit := func() error {
		if memory.Limit == nil || *memory.Limit == 0 {
			return nil
		}
		value := strconv.FormatInt(*memory.Limit, 10)
		if *memory.Limit < 0 {
			value = "max"
		}
		path := filepath.Join(c.path, "memory.max")
		if err := os.WriteFile(path, []byte(value), 0644); err != nil {
			if errors.Is(err, syscall.EBUSY) {
				usage, _ := readUint(filepath.Join(c.path, "memory.current"))
				peak, _ := readUint(filepath.Join(c.path, "memory.peak"))
				return fmt.Errorf("set memory.max: %w (current usage=%d peak=%d)", err, usage, peak)
			}
			return fmt.Errorf("set memory.max: %w", err)
		}
		return nil
	}

	writeSwap := func() error {
		if memory.Swap == nil {
			return nil
		}
		swapLimit := *memory.Swap
		if memory.Limit != nil && *memory.Limit > 0 && *memory.Swap >= 0 {
			swapLimit = *memory.Swap - *memory.Limit
			if swapLimit < 0 {
				swapLimit = 0
			}
		}
		path := filepath.Join(c.path, "memory.swap.max")
		value := strconv.FormatInt(swapLimit, 10)
		if swapLimit < 0 {
			value = "max"
		}
		if err := os.WriteFile(path, []byte(value), 0644); err != nil {
			// Swap might not be enabled on the host.
			return nil
		}
		return nil
	}

	swapExceedsLimit := memory.Swap != nil && (*memory.Swap < 0 || *memory.Swap > c.currentMemoryLimit())
	if swapExceedsLimit {
		if err := writeSwap(); err != nil {
			return err
		}
		if err := writeLimit(); err != nil {
			return err
		}
	} else {
		if err := writeLimit(); err != nil {
			return err
		}
		if err := writeSwap(); err != nil {
			return err
		}
	}

	if memory.Reservation != nil && *memory.Reservation > 0 {
		path := filepath.Join(c.path, "memory.low")
		if err := os.WriteFile(path, []byte(strconv.FormatInt(*memory.Reservation, 10)), 0644); err != nil {
			return fmt.Errorf("set memory.low: %w", err)
		}
	}

	if memory.Swappiness != nil {
		if *memory.Swappiness > 100 {
			return fmt.Errorf("memory.swappiness %d out of range [0,100]", *memory.Swappiness)
		}
	}

	return nil
}

// applyCPU applies CPU limits.
func (c *Cgroup) applyCPU(cpu *spec.LinuxCPU) error {
	if cpu == nil {
		return nil
	}

	if cpu.RealtimeRuntime != nil || cpu.RealtimePeriod != nil {
		return fmt.Errorf("realtime scheduling is not supported under cgroup v2")
	}

	// cpu.max - quota and period
	if cpu.Quota != nil || cpu.Period != nil {
		quota := "max"
		if cpu.Quota != nil && *cpu.Quota > 0 {
			quota = strconv.FormatInt(*cpu.Quota, 10)
		}
		period := uint64(100000) // Default 100ms
		if cpu.Period != nil && *cpu.Period > 0 {
			period = *cpu.Period
		}
		value := fmt.Sprintf("%s %d", quota, period)
		path := filepath.Join(c.path, "cpu.max")
		if err := os.WriteFile(path, []byte(value), 0644); err != nil {
			return fmt.Errorf("set cpu.max: %w", err)
		}
	}

	// cpu.weight (replaces cpu.shares). A shares value of 0 leaves
	// cpu.weight untouched. Shares of 1 or 2 yield weight=1: the formula
	// is applied only above 2, since (shares-2) would underflow.
	if cpu.Shares != nil && *cpu.Shares > 0 {
		shares := *cpu.Shares
		var weight uint64 = 1
		if shares > 2 {
			weight = 1 + (shares-2)*9999/262142
		}
		if weight > 10000 {
			weight = 10000
		}
		path := filepath.Join(c.path, "cpu.weight")
		if err := os.WriteFile(path, []byte(strconv.FormatUint(weight, 10)), 0644); err != nil {
			return fmt.Errorf("set cpu.weight: %w", err)
		}
	}

	if cpu.Idle != nil {
		path := filepath.Join(c.path, "cpu.idle")
		if err := os.WriteFile(path, []byte(strconv.FormatInt(*cpu.Idle, 10)), 0644); err != nil {
			return fmt.Errorf("set cpu.idle: %w", err)
		}
	}

	if cpu.Cpus != "" {
		path := filepath.Join(c.path, "cpuset.cpus")
		if err := os.WriteFile(path, []byte(cpu.Cpus), 0644); err != nil {
			return fmt.Errorf("set cpuset.cpus: %w", err)
		}
	}

	if cpu.Mems != "" {
		path := filepath.Join(c.path, "cpuset.mems")
		if err := os.WriteFile(path, []byte(cpu.Mems), 0644); err != nil {
			return fmt.Errorf("set cpuset.mems: %w", err)
		}
	}

	return nil
}

// applyPids applies process count limits.
func (c *Cgroup) applyPids(pids *spec.LinuxPids) error {
	if pids == nil {
		return nil
	}

	value := "max"
	if pids.Limit > 0 {
		value = strconv.FormatInt(pids.Limit, 10)
	}
	path := filepath.Join(c.path, "pids.max")
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("set pids.max: %w", err)
	}

	return nil
}

// applyHugetlb writes per-page-size hugetlb byte limits. Page size strings
// are of the form "<N>(K|M|G)B"; N must be a power of two.
func (c *Cgroup) applyHugetlb(limits []spec.LinuxHugepageLimit) error {
	for _, l := range limits {
		n, unit, err := parseHugepageSize(l.Pagesize)
		if err != nil {
			return fmt.Errorf("hugetlb page size %q: %w", l.Pagesize, err)
		}
		if n == 0 || n&(n-1) != 0 {
			return fmt.Errorf("hugetlb page size %q is not a power of two", l.Pagesize)
		}
		base := fmt.Sprintf("hugetlb.%d%s.limit_in_bytes", n, unit)
		path := filepath.Join(c.path, base)
		if err := os.WriteFile(path, []byte(strconv.FormatUint(l.Limit, 10)), 0644); err != nil {
			continue // kernel build may not expose this page size
		}
		rsvdPath := filepath.Join(c.path, fmt.Sprintf("hugetlb.%d%s.rsvd.limit_in_bytes", n, unit))
		os.WriteFile(rsvdPath, []byte(strconv.FormatUint(l.Limit, 10)), 0644)
	}
	return nil
}

// parseHugepageSize splits "2MB" into (2, "M").
func parseHugepageSize(s string) (uint64, string, error) {
	if len(s) < 3 || s[len(s)-1] != 'B' {
		return 0, "", fmt.Errorf("expected form <N>(K|M|G)B")
	}
	unit := string(s[len(s)-2])
	switch unit {
	case "K", "M", "G":
	default:
		return 0, "", fmt.Errorf("unknown unit %q", unit)
	}
	n, err := strconv.ParseUint(s[:len(s)-2], 10, 64)
	if err != nil {
		return 0, "", err
	}
	return n, unit, nil
}

// Remove removes the cgroup. The cgroup must be empty.
func (c *Cgroup) Remove() error {
	return os.Remove(c.path)
}

// Destroy is an alias for Remove, kept for existing call sites.
func (c *Cgroup) Destroy() error {
	return c.Remove()
}

// Stats reads back current usage counters, tolerating absent optional files.
func (c *Cgroup) Stats() (*CgroupStats, error) {
	s := &CgroupStats{}
	if v, err := readUint(filepath.Join(c.path, "memory.current")); err == nil {
		s.MemoryUsage = v
	}
	if v, err := readUint(filepath.Join(c.path, "memory.max")); err == nil {
		s.MemoryLimit = v
	}
	if v, err := readUint(filepath.Join(c.path, "pids.current")); err == nil {
		s.PidsCurrent = v
	}
	if v, err := readUint(filepath.Join(c.path, "pids.max")); err == nil {
		s.PidsLimit = v
	}
	return s, nil
}

// GetMemoryCurrent returns current memory usage.
func (c *Cgroup) GetMemoryCurrent() (int64, error) {
	data, err := os.ReadFile(filepath.Join(c.path, "memory.current"))
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

// GetPidsCurrent returns current number of processes.
func (c *Cgroup) GetPidsCurrent() (int64, error) {
	data, err := os.ReadFile(filepath.Join(c.path, "pids.current"))
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

// freezePollInterval and freezePollAttempts bound how long Freeze waits for
// the kernel to confirm a frozen/thawed transition.
const (
	freezePollInterval = 10 * time.Millisecond
	freezePollAttempts = 1000
)

// Freeze writes cgroup.freeze and polls cgroup.events until the kernel
// reports the requested state, reverting to thawed on failure.
func (c *Cgroup) Freeze(frozen bool) error {
	value := "0"
	want := "frozen 0"
	if frozen {
		value = "1"
		want = "frozen 1"
	}
	path := filepath.Join(c.path, "cgroup.freeze")
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("write cgroup.freeze: %w", err)
	}

	eventsPath := filepath.Join(c.path, "cgroup.events")
	for i := 0; i < freezePollAttempts; i++ {
		data, err := os.ReadFile(eventsPath)
		if err == nil && strings.Contains(string(data), want) {
			return nil
		}
		time.Sleep(freezePollInterval)
	}
	if frozen {
		os.WriteFile(path, []byte("0"), 0644)
	}
	return fmt.Errorf("freezer did not confirm transition to frozen=%v", frozen)
}

// readUint reads a trimmed numeric cgroup file, returning 0 for "max".
func readUint(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	if s == "max" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// EnsureParentControllers enables controllers on parent cgroups under the
// unified hierarchy; a no-op (returns nil) when the host is legacy/hybrid.
func EnsureParentControllers(cgroupPath string) error {
	if !DetectUnified() {
		return nil
	}
	parts := strings.Split(strings.Trim(cgroupPath, "/"), "/")
	current := cgroupRoot

	controllers := "+cpu +io +memory +pids"

	for _, part := range parts {
		controlFile := filepath.Join(current, "cgroup.subtree_control")
		os.WriteFile(controlFile, []byte(controllers), 0644) // best effort
		current = filepath.Join(current, part)
	}

	return nil
}

// GetCgroupPath returns the default cgroup path for a container.
func GetCgroupPath(containerID string, specPath string) string {
	if specPath != "" {
		return specPath
	}
	return filepath.Join("runc-go", containerID)
}

// validateCgroupKey validates a cgroup controller file key.
// This prevents path traversal attacks via crafted unified keys.
func validateCgroupKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key not allowed")
	}
	if strings.ContainsAny(key, "/\\") {
		return fmt.Errorf("key contains path separator")
	}
	if key == "." || key == ".." {
		return fmt.Errorf("key is relative path component")
	}
	if strings.HasPrefix(key, ".") {
		return fmt.Errorf("key starts with dot")
	}
	if !validCgroupKey.MatchString(key) {
		return fmt.Errorf("key does not match valid cgroup key pattern")
	}
	return nil
}
