package linux

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"runc-go/spec"
)

// legacyControllers is every v1 controller this backend places the
// container's cgroup under. Comounted controllers (cpu,cpuacct and
// net_cls,net_prio) are detected by mount-point name and represented once.
var legacyControllers = []string{
	"cpu", "cpuacct", "cpuset", "memory", "pids",
	"blkio", "hugetlb", "freezer", "devices", "net_cls", "net_prio", "perf_event",
}

// LegacyCgroup is the v1 backend: one directory per controller mount.
type LegacyCgroup struct {
	relPath string
	mounts  map[string]string // controller name -> mount point
}

// NewLegacyCgroup discovers the v1 controller mounts from /proc/self/mountinfo
// and creates the container's cgroup directory under each one.
func NewLegacyCgroup(cgroupPath string) (*LegacyCgroup, error) {
	mounts, err := discoverV1Mounts()
	if err != nil {
		return nil, fmt.Errorf("discover cgroup v1 mounts: %w", err)
	}

	lc := &LegacyCgroup{relPath: strings.TrimPrefix(cgroupPath, "/"), mounts: mounts}

	for _, ctrl := range legacyControllers {
		mount, ok := mounts[ctrl]
		if !ok {
			continue
		}
		dir := filepath.Join(mount, lc.relPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s cgroup dir: %w", ctrl, err)
		}
		linkComountedAliases(mount, ctrl)
	}

	return lc, nil
}

// discoverV1Mounts parses /proc/self/mountinfo for cgroup v1 mount points,
// mapping each controller name (including comounted aliases) to its mount
// directory.
func discoverV1Mounts() (map[string]string, error) {
	f, err := os.Open("/proc/self/mountinfo")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		// mountinfo fields are separated by a "-" marker; superoptions follow it.
		dashIdx := -1
		for i, fld := range fields {
			if fld == "-" {
				dashIdx = i
				break
			}
		}
		if dashIdx < 0 || dashIdx+2 >= len(fields) {
			continue
		}
		fsType := fields[dashIdx+1]
		if fsType != "cgroup" {
			continue
		}
		mountPoint := fields[4]
		superOpts := fields[dashIdx+3]
		for _, opt := range strings.Split(superOpts, ",") {
			switch opt {
			case "rw", "ro", "noexec", "nosuid", "nodev", "relatime":
				continue
			}
			result[opt] = mountPoint
		}
	}
	return result, scanner.Err()
}

// linkComountedAliases symlinks a comounted controller's siblings (e.g.
// cpu,cpuacct) to the same directory name inside the parent mount so both
// names resolve.
func linkComountedAliases(mount, ctrl string) {
	base := filepath.Base(mount)
	if !strings.Contains(base, ",") {
		return
	}
	for _, alias := range strings.Split(base, ",") {
		if alias == ctrl {
			continue
		}
		aliasPath := filepath.Join(filepath.Dir(mount), alias)
		os.Symlink(mount, aliasPath)
	}
}

func (lc *LegacyCgroup) controllerDir(ctrl string) (string, bool) {
	mount, ok := lc.mounts[ctrl]
	if !ok {
		return "", false
	}
	return filepath.Join(mount, lc.relPath), true
}

// Path returns the cgroup's relative path (identical across controllers).
func (lc *LegacyCgroup) Path() string {
	return lc.relPath
}

// Apply writes pid into every controller's cgroup.procs, then applies
// resources.
func (lc *LegacyCgroup) Apply(pid int, resources *spec.LinuxResources) error {
	for _, ctrl := range legacyControllers {
		dir, ok := lc.controllerDir(ctrl)
		if !ok {
			continue
		}
		procsPath := filepath.Join(dir, "cgroup.procs")
		if err := os.WriteFile(procsPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
			return fmt.Errorf("add process to %s cgroup: %w", ctrl, err)
		}
	}
	return lc.SetResources(resources)
}

// SetResources applies per-controller resource writes, tolerating missing
// files for optional/kernel-policy-dependent controllers.
func (lc *LegacyCgroup) SetResources(resources *spec.LinuxResources) error {
	if resources == nil {
		return nil
	}
	if err := lc.applyCPU(resources.CPU); err != nil {
		return err
	}
	if err := lc.applyMemory(resources.Memory); err != nil {
		return err
	}
	if err := lc.applyPids(resources.Pids); err != nil {
		return err
	}
	if err := lc.applyBlockIO(resources.BlockIO); err != nil {
		return err
	}
	if err := lc.applyDevices(resources.Devices); err != nil {
		return err
	}
	if err := lc.applyHugetlb(resources.HugepageLimits); err != nil {
		return err
	}
	return nil
}

func (lc *LegacyCgroup) write(ctrl, file, value string) error {
	dir, ok := lc.controllerDir(ctrl)
	if !ok {
		return nil // controller not mounted on this host
	}
	return os.WriteFile(filepath.Join(dir, file), []byte(value), 0644)
}

// read reads back a single controller file, trimmed of surrounding whitespace.
func (lc *LegacyCgroup) read(ctrl, file string) (string, error) {
	dir, ok := lc.controllerDir(ctrl)
	if !ok {
		return "", fmt.Errorf("controller %s not mounted", ctrl)
	}
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// currentMemoryLimit reads the memory.limit_in_bytes value installed before
// this apply call; unreadable means a freshly mounted cgroup, which the
// kernel defaults to effectively unlimited.
func (lc *LegacyCgroup) currentMemoryLimit() int64 {
	s, err := lc.read("memory", "memory.limit_in_bytes")
	if err != nil {
		return math.MaxInt64
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return v
}

// applyCPU: shares, quota/period (zero means do-not-touch, -1 unlimited),
// realtime runtime/period, cpuset.
func (lc *LegacyCgroup) applyCPU(cpu *spec.LinuxCPU) error {
	if cpu == nil {
		return nil
	}
	if cpu.Shares != nil && *cpu.Shares != 0 {
		if err := lc.write("cpu", "cpu.shares", strconv.FormatUint(*cpu.Shares, 10)); err != nil {
			return fmt.Errorf("set cpu.shares: %w", err)
		}
	}
	if cpu.Quota != nil && *cpu.Quota != 0 {
		if err := lc.write("cpu", "cpu.cfs_quota_us", strconv.FormatInt(*cpu.Quota, 10)); err != nil {
			return fmt.Errorf("set cpu.cfs_quota_us: %w", err)
		}
	}
	if cpu.Period != nil && *cpu.Period != 0 {
		if err := lc.write("cpu", "cpu.cfs_period_us", strconv.FormatUint(*cpu.Period, 10)); err != nil {
			return fmt.Errorf("set cpu.cfs_period_us: %w", err)
		}
	}
	if cpu.RealtimeRuntime != nil && *cpu.RealtimeRuntime != 0 {
		lc.write("cpu", "cpu.rt_runtime_us", strconv.FormatInt(*cpu.RealtimeRuntime, 10))
	}
	if cpu.RealtimePeriod != nil && *cpu.RealtimePeriod != 0 {
		lc.write("cpu", "cpu.rt_period_us", strconv.FormatUint(*cpu.RealtimePeriod, 10))
	}
	if cpu.Cpus != "" {
		if err := lc.write("cpuset", "cpuset.cpus", cpu.Cpus); err != nil {
			return fmt.Errorf("set cpuset.cpus: %w", err)
		}
	}
	if cpu.Mems != "" {
		if err := lc.write("cpuset", "cpuset.mems", cpu.Mems); err != nil {
			return fmt.Errorf("set cpuset.mems: %w", err)
		}
	}
	return nil
}

// applyMemory: same ordering rule as v2 (swap first if it would exceed the
// currently installed limit).
func (lc *LegacyCgroup) applyMemory(memory *spec.LinuxMemory) error {
	if memory == nil {
		return nil
	}

	writeLimit := func() error {
		if memory.Limit == nil || *memory.Limit == 0 {
			return nil
		}
		if err := lc.write("memory", "memory.limit_in_bytes", strconv.FormatInt(*memory.Limit, 10)); err != nil {
			if errors.Is(err, syscall.EBUSY) {
				usage, _ := lc.read("memory", "memory.usage_in_bytes")
				maxUsage, _ := lc.read("memory", "memory.max_usage_in_bytes")
				return fmt.Errorf("set memory.limit_in_bytes: %w (usage=%s max_usage=%s)", err, usage, maxUsage)
			}
			return fmt.Errorf("set memory.limit_in_bytes: %w", err)
		}
		return nil
	}
	writeSwap := func() error {
		if memory.Swap == nil {
			return nil
		}
		return lc.write("memory", "memory.memsw.limit_in_bytes", strconv.FormatInt(*memory.Swap, 10))
	}

	swapExceedsLimit := memory.Swap != nil && (*memory.Swap < 0 || *memory.Swap > lc.currentMemoryLimit())
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
		lc.write("memory", "memory.soft_limit_in_bytes", strconv.FormatInt(*memory.Reservation, 10))
	}
	if memory.Swappiness != nil {
		if *memory.Swappiness > 100 {
			return fmt.Errorf("memory.swappiness %d out of range [0,100]", *memory.Swappiness)
		}
		lc.write("memory", "memory.swappiness", strconv.FormatUint(*memory.Swappiness, 10))
	}
	if memory.DisableOOMKiller != nil && *memory.DisableOOMKiller {
		lc.write("memory", "memory.oom_control", "1")
	}
	return nil
}

func (lc *LegacyCgroup) applyPids(pids *spec.LinuxPids) error {
	if pids == nil {
		return nil
	}
	value := "max"
	if pids.Limit > 0 {
		value = strconv.FormatInt(pids.Limit, 10)
	}
	return lc.write("pids", "pids.max", value)
}

// applyBlockIO writes global weight/leaf_weight and per-device weight and
// throttle files, one line per device as "<major>:<minor> <value>". Missing
// files (kernels without CFQ) are silently skipped.
func (lc *LegacyCgroup) applyBlockIO(blkio *spec.LinuxBlockIO) error {
	if blkio == nil {
		return nil
	}
	if blkio.Weight != nil {
		lc.write("blkio", "blkio.weight", strconv.FormatUint(uint64(*blkio.Weight), 10))
	}
	if blkio.LeafWeight != nil {
		lc.write("blkio", "blkio.leaf_weight", strconv.FormatUint(uint64(*blkio.LeafWeight), 10))
	}
	for _, d := range blkio.WeightDevice {
		if d.Weight != nil {
			lc.write("blkio", "blkio.weight_device", fmt.Sprintf("%d:%d %d", d.Major, d.Minor, *d.Weight))
		}
		if d.LeafWeight != nil {
			lc.write("blkio", "blkio.leaf_weight_device", fmt.Sprintf("%d:%d %d", d.Major, d.Minor, *d.LeafWeight))
		}
	}
	writeThrottle := func(file string, devices []spec.LinuxThrottleDevice) {
		for _, d := range devices {
			lc.write("blkio", file, fmt.Sprintf("%d:%d %d", d.Major, d.Minor, d.Rate))
		}
	}
	writeThrottle("blkio.throttle.read_bps_device", blkio.ThrottleReadBpsDevice)
	writeThrottle("blkio.throttle.write_bps_device", blkio.ThrottleWriteBpsDevice)
	writeThrottle("blkio.throttle.read_iops_device", blkio.ThrottleReadIOPSDevice)
	writeThrottle("blkio.throttle.write_iops_device", blkio.ThrottleWriteIOPSDevice)
	return nil
}

// defaultDeviceAllowRules mirrors the default allow-list every container
// gets regardless of spec rules: mknod for char/block, and the device nodes
// a working terminal and network stack need.
var defaultDeviceAllowRules = []string{
	"c *:* m", // mknod any char device
	"b *:* m", // mknod any block device
	"c 5:1 rwm", "c 5:0 rwm", "c 5:2 rwm", // /dev/console, /dev/null-adjacent tty, /dev/ptmx
	"c 136:* rwm", // /dev/pts/*
	"c 10:200 rwm", // /dev/net/tun
}

// applyDevices writes the default allow-list then the spec's own rules.
func (lc *LegacyCgroup) applyDevices(rules []spec.LinuxDeviceCgroup) error {
	for _, r := range defaultDeviceAllowRules {
		lc.write("devices", "devices.allow", r)
	}
	for _, r := range rules {
		file := "devices.deny"
		if r.Allow {
			file = "devices.allow"
		}
		typ := r.Type
		if typ == "" {
			typ = "a"
		}
		major := "*"
		if r.Major != nil {
			major = strconv.FormatInt(*r.Major, 10)
		}
		minor := "*"
		if r.Minor != nil {
			minor = strconv.FormatInt(*r.Minor, 10)
		}
		access := r.Access
		if access == "" {
			access = "rwm"
		}
		lc.write("devices", file, fmt.Sprintf("%s %s:%s %s", typ, major, minor, access))
	}
	return nil
}

func (lc *LegacyCgroup) applyHugetlb(limits []spec.LinuxHugepageLimit) error {
	for _, l := range limits {
		n, unit, err := parseHugepageSize(l.Pagesize)
		if err != nil {
			return fmt.Errorf("hugetlb page size %q: %w", l.Pagesize, err)
		}
		if n == 0 || n&(n-1) != 0 {
			return fmt.Errorf("hugetlb page size %q is not a power of two", l.Pagesize)
		}
		lc.write("hugetlb", fmt.Sprintf("hugetlb.%d%s.limit_in_bytes", n, unit), strconv.FormatUint(l.Limit, 10))
		lc.write("hugetlb", fmt.Sprintf("hugetlb.%d%s.rsvd.limit_in_bytes", n, unit), strconv.FormatUint(l.Limit, 10))
	}
	return nil
}

// Freeze writes FROZEN/THAWED to freezer.state and polls until the kernel
// confirms the transition, reverting to THAWED on failure.
func (lc *LegacyCgroup) Freeze(frozen bool) error {
	dir, ok := lc.controllerDir("freezer")
	if !ok {
		return fmt.Errorf("freezer controller not mounted")
	}
	statePath := filepath.Join(dir, "freezer.state")
	want := "THAWED"
	value := "THAWED"
	if frozen {
		want = "FROZEN"
		value = "FROZEN"
	}
	if err := os.WriteFile(statePath, []byte(value), 0644); err != nil {
		return fmt.Errorf("write freezer.state: %w", err)
	}
	for i := 0; i < freezePollAttempts; i++ {
		data, err := os.ReadFile(statePath)
		if err == nil && strings.TrimSpace(string(data)) == want {
			return nil
		}
		time.Sleep(freezePollInterval)
	}
	if frozen {
		os.WriteFile(statePath, []byte("THAWED"), 0644)
	}
	return fmt.Errorf("freezer did not confirm transition to frozen=%v", frozen)
}

// Stats reads back memory and pids counters, tolerating absent files.
func (lc *LegacyCgroup) Stats() (*CgroupStats, error) {
	s := &CgroupStats{}
	if dir, ok := lc.controllerDir("memory"); ok {
		if v, err := readUint(filepath.Join(dir, "memory.usage_in_bytes")); err == nil {
			s.MemoryUsage = v
		}
		if v, err := readUint(filepath.Join(dir, "memory.max_usage_in_bytes")); err == nil {
			s.MemoryMaxUsage = v
		}
		if v, err := readUint(filepath.Join(dir, "memory.limit_in_bytes")); err == nil {
			s.MemoryLimit = v
		}
		if v, err := readUint(filepath.Join(dir, "memory.failcnt")); err == nil {
			s.MemoryFailCount = v
		}
	}
	if dir, ok := lc.controllerDir("pids"); ok {
		if v, err := readUint(filepath.Join(dir, "pids.current")); err == nil {
			s.PidsCurrent = v
		}
		if v, err := readUint(filepath.Join(dir, "pids.max")); err == nil {
			s.PidsLimit = v
		}
	}
	if dir, ok := lc.controllerDir("cpuacct"); ok {
		if v, err := readUint(filepath.Join(dir, "cpuacct.usage")); err == nil {
			s.CPUUsageNanos = v
		}
	}
	return s, nil
}

// Remove deletes the cgroup directory from every controller mount. All must
// be empty for removal to succeed.
func (lc *LegacyCgroup) Remove() error {
	var lastErr error
	for _, ctrl := range legacyControllers {
		dir, ok := lc.controllerDir(ctrl)
		if !ok {
			continue
		}
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
