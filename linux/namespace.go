// Package linux provides Linux-specific container primitives.
package linux

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"runc-go/spec"
)

// Linux namespace clone flags
const (
	CLONE_NEWNS     = syscall.CLONE_NEWNS     // Mount namespace
	CLONE_NEWUTS    = syscall.CLONE_NEWUTS    // UTS namespace (hostname)
	CLONE_NEWIPC    = syscall.CLONE_NEWIPC    // IPC namespace
	CLONE_NEWPID    = syscall.CLONE_NEWPID    // PID namespace
	CLONE_NEWNET    = syscall.CLONE_NEWNET    // Network namespace
	CLONE_NEWUSER   = syscall.CLONE_NEWUSER   // User namespace
	CLONE_NEWCGROUP = 0x02000000              // Cgroup namespace (not in syscall pkg)
)

// namespaceTypeToFlag maps OCI namespace types to clone flags.
var namespaceTypeToFlag = map[spec.LinuxNamespaceType]uintptr{
	spec.PIDNamespace:     CLONE_NEWPID,
	spec.NetworkNamespace: CLONE_NEWNET,
	spec.MountNamespace:   CLONE_NEWNS,
	spec.IPCNamespace:     CLONE_NEWIPC,
	spec.UTSNamespace:     CLONE_NEWUTS,
	spec.UserNamespace:    CLONE_NEWUSER,
	spec.CgroupNamespace:  CLONE_NEWCGROUP,
}

// NamespaceFlags builds clone flags from OCI namespace configuration.
func NamespaceFlags(namespaces []spec.LinuxNamespace) uintptr {
	var flags uintptr
	for _, ns := range namespaces {
		// Only add flag if path is empty (create new namespace)
		// If path is set, we'll join that namespace later with setns()
		if ns.Path == "" {
			if flag, ok := namespaceTypeToFlag[ns.Type]; ok {
				flags |= flag
			}
		}
	}
	return flags
}

// HasNamespace checks if a namespace type is in the list.
func HasNamespace(namespaces []spec.LinuxNamespace, nsType spec.LinuxNamespaceType) bool {
	for _, ns := range namespaces {
		if ns.Type == nsType {
			return true
		}
	}
	return false
}

// GetNamespacePath returns the path for a namespace type, empty if creating new.
func GetNamespacePath(namespaces []spec.LinuxNamespace, nsType spec.LinuxNamespaceType) string {
	for _, ns := range namespaces {
		if ns.Type == nsType {
			return ns.Path
		}
	}
	return ""
}

// SetNamespaces joins existing namespaces specified by path.
// This is called after fork but before exec.
func SetNamespaces(namespaces []spec.LinuxNamespace) error {
	return SetNamespacesMatching(namespaces, ^uintptr(0))
}

// SetNamespacesMatching joins path-specified namespaces whose clone flag is
// set in mask, skipping the rest. This lets the intermediate and init
// handshake stages (spec §4.2) split path-based setns calls the same way
// EarlyNamespaceFlags/LateNamespaceFlags split namespace creation: the
// intermediate joins everything but pid/mount, init joins pid/mount once it
// exists inside them.
func SetNamespacesMatching(namespaces []spec.LinuxNamespace, mask uintptr) error {
	for _, ns := range namespaces {
		if ns.Path == "" {
			continue
		}
		flag, ok := namespaceTypeToFlag[ns.Type]
		if !ok || flag&mask == 0 {
			continue
		}
		if err := setns(ns.Path, ns.Type); err != nil {
			return fmt.Errorf("setns %s (%s): %w", ns.Type, ns.Path, err)
		}
	}
	return nil
}

// setns joins an existing namespace.
func setns(path string, nsType spec.LinuxNamespaceType) error {
	fd, err := syscall.Open(path, syscall.O_RDONLY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer syscall.Close(fd)

	flag := namespaceTypeToFlag[nsType]
	// Use unix.SYS_SETNS which is architecture-independent
	_, _, errno := syscall.Syscall(unix.SYS_SETNS, uintptr(fd), flag, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// nsFileOrder lists the non-pid namespace kinds entered directly via setns on
// /proc/<pid>/ns/<kind>, in the order exec joins them.
var nsFileOrder = []string{"ipc", "uts", "net", "mnt"}

// execNsFileToType maps the /proc/<pid>/ns file name to its namespace type.
var execNsFileToType = map[string]spec.LinuxNamespaceType{
	"ipc": spec.IPCNamespace,
	"uts": spec.UTSNamespace,
	"net": spec.NetworkNamespace,
	"mnt": spec.MountNamespace,
	"pid": spec.PIDNamespace,
}

// JoinNamespacesOfPID enters the ipc/uts/net/mount namespaces of the given
// pid via setns on this thread. The pid namespace cannot be entered this way
// (setns(CLONE_NEWPID) only affects children created after the call); callers
// that also need the target's pid namespace must setns that fd here and then
// fork, so the child is born into it; OpenPIDNamespaceFD and SetnsFD provide
// that path.
func JoinNamespacesOfPID(pid int) error {
	for _, kind := range nsFileOrder {
		path := fmt.Sprintf("/proc/%d/ns/%s", pid, kind)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := setns(path, execNsFileToType[kind]); err != nil {
			return fmt.Errorf("join %s namespace of pid %d: %w", kind, pid, err)
		}
	}
	return nil
}

// OpenPIDNamespaceFD opens /proc/<pid>/ns/pid for a later setns call made
// from the process that will fork into it.
func OpenPIDNamespaceFD(pid int) (int, error) {
	path := fmt.Sprintf("/proc/%d/ns/pid", pid)
	fd, err := syscall.Open(path, syscall.O_RDONLY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", path, err)
	}
	return fd, nil
}

// SetnsFD joins the namespace referenced by an already-open fd.
func SetnsFD(fd int, nsType spec.LinuxNamespaceType) error {
	flag := namespaceTypeToFlag[nsType]
	_, _, errno := syscall.Syscall(unix.SYS_SETNS, uintptr(fd), flag, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// EarlyNamespaceFlags returns the clone flags for namespaces the
// intermediate process creates: every requested namespace except pid and
// mount. Per the namespace manager ordering rules (spec §4.3), the user
// namespace must be created first (so the rest of the set it owns can
// follow in the same clone call) while pid and mount are deliberately held
// back for the later clone that produces the init process.
func EarlyNamespaceFlags(namespaces []spec.LinuxNamespace) uintptr {
	return NamespaceFlags(namespaces) &^ (CLONE_NEWPID | CLONE_NEWNS)
}

// LateNamespaceFlags returns the clone flags for namespaces the init
// process itself is born into: pid (must be unshared right before the fork
// that lands inside it — unshare/clone of CLONE_NEWPID only affects
// processes created afterward) and mount (unshared late so earlier
// operations are still observed from the host, per spec §4.4 step 1-2).
func LateNamespaceFlags(namespaces []spec.LinuxNamespace) uintptr {
	return NamespaceFlags(namespaces) & (CLONE_NEWPID | CLONE_NEWNS)
}

// BuildIntermediateSysProcAttr builds the SysProcAttr for the intermediate
// process (spec §4.2 handshake step 1): it creates/enters every namespace
// except pid and mount, and carries the uid/gid mappings for the case a
// single unprivileged write(2) can still install directly. A multi-entry
// rootless mapping can't be written that way; that case is left for the
// orchestrator to dispatch to WriteIDMappings once the intermediate's pid
// is known (handshake step 2), so the mapping fields are left unset here.
func BuildIntermediateSysProcAttr(s *spec.Spec) (*syscall.SysProcAttr, error) {
	if s.Linux == nil {
		return &syscall.SysProcAttr{Setsid: true}, nil
	}

	flags := EarlyNamespaceFlags(s.Linux.Namespaces)
	hasUserNS := HasNamespace(s.Linux.Namespaces, spec.UserNamespace)

	attr := &syscall.SysProcAttr{
		Cloneflags: flags,
		Setsid:     true,
	}

	// Don't set Unshareflags with user namespace - causes EPERM
	if !hasUserNS {
		attr.Unshareflags = syscall.CLONE_NEWNS
	}

	if hasUserNS && !RequiresExternalIDMapping(s) {
		attr.UidMappings = buildIDMappings(s.Linux.UIDMappings)
		attr.GidMappings = buildIDMappings(s.Linux.GIDMappings)
		attr.GidMappingsEnableSetgroups = false
	}

	return attr, nil
}

// BuildInitSysProcAttr builds the SysProcAttr for the process the
// intermediate forks to become init (spec §4.2 handshake step 3): it
// creates the pid and, if requested, mount namespaces held back by
// BuildIntermediateSysProcAttr. It inherits the user namespace (and any
// other early namespace) from its parent rather than re-creating one.
func BuildInitSysProcAttr(s *spec.Spec) *syscall.SysProcAttr {
	var flags uintptr
	if s.Linux != nil {
		flags = LateNamespaceFlags(s.Linux.Namespaces)
	}
	return &syscall.SysProcAttr{Cloneflags: flags}
}

// RequiresExternalIDMapping reports whether the spec's uid/gid mapping must
// be written by the newuidmap/newgidmap setuid helpers rather than a direct
// write(2) from this process: an unprivileged caller can only write a single
// line to /proc/pid/{uid,gid}_map on its own, so any multi-entry mapping
// needs the helper unless the caller already has root.
func RequiresExternalIDMapping(s *spec.Spec) bool {
	if s.Linux == nil || !HasNamespace(s.Linux.Namespaces, spec.UserNamespace) {
		return false
	}
	if os.Geteuid() == 0 {
		return false
	}
	return len(s.Linux.UIDMappings) > 1 || len(s.Linux.GIDMappings) > 1
}

// buildIDMappings converts OCI ID mappings to syscall format.
func buildIDMappings(mappings []spec.LinuxIDMapping) []syscall.SysProcIDMap {
	result := make([]syscall.SysProcIDMap, len(mappings))
	for i, m := range mappings {
		result[i] = syscall.SysProcIDMap{
			ContainerID: int(m.ContainerID),
			HostID:      int(m.HostID),
			Size:        int(m.Size),
		}
	}
	return result
}

// WriteIDMappings writes UID/GID mappings to /proc/pid/{uid,gid}_map.
// Used when setting up user namespaces externally.
//
// A single write(2) to uid_map/gid_map can only ever contain one line unless
// the calling process holds CAP_SETUID/CAP_SETGID over the target namespace.
// Rootless callers with more than one mapping entry must instead go through
// the setuid newuidmap/newgidmap helpers, which are privileged via entries in
// /etc/subuid and /etc/subgid.
func WriteIDMappings(pid int, uidMappings, gidMappings []spec.LinuxIDMapping) error {
	if len(uidMappings) > 0 {
		if err := writeIDMap(pid, "uid_map", "newuidmap", uidMappings); err != nil {
			return fmt.Errorf("write uid_map: %w", err)
		}
	}

	// Must disable setgroups before writing gid_map (unless we have CAP_SETGID)
	if len(gidMappings) > 0 {
		setgroupsPath := filepath.Join("/proc", fmt.Sprint(pid), "setgroups")
		_ = os.WriteFile(setgroupsPath, []byte("deny"), 0644)

		if err := writeIDMap(pid, "gid_map", "newgidmap", gidMappings); err != nil {
			return fmt.Errorf("write gid_map: %w", err)
		}
	}

	return nil
}

// writeIDMap writes a single id mapping file. A single-entry mapping is first
// written directly and goes to the newuidmap/newgidmap setuid helper only if
// that write fails; a multi-entry mapping always goes to the helper.
func writeIDMap(pid int, mapFile, helper string, mappings []spec.LinuxIDMapping) error {
	if len(mappings) == 1 {
		path := filepath.Join("/proc", strconv.Itoa(pid), mapFile)
		if err := os.WriteFile(path, []byte(formatIDMap(mappings)), 0644); err == nil {
			return nil
		}
	}
	return writeIDMapViaHelper(pid, helper, mappings)
}

// writeIDMapViaHelper invokes newuidmap/newgidmap to install a multi-entry
// mapping, since an unprivileged single write(2) cannot carry more than one
// line into uid_map/gid_map.
func writeIDMapViaHelper(pid int, helper string, mappings []spec.LinuxIDMapping) error {
	helperPath, err := exec.LookPath(helper)
	if err != nil {
		return fmt.Errorf("%s not found in PATH: %w", helper, err)
	}

	args := []string{strconv.Itoa(pid)}
	for _, m := range mappings {
		args = append(args, strconv.FormatUint(uint64(m.ContainerID), 10), strconv.FormatUint(uint64(m.HostID), 10), strconv.FormatUint(uint64(m.Size), 10))
	}

	cmd := exec.Command(helperPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", helper, err, out)
	}
	return nil
}

// formatIDMap formats ID mappings for /proc/pid/{uid,gid}_map.
func formatIDMap(mappings []spec.LinuxIDMapping) string {
	var result string
	for _, m := range mappings {
		result += fmt.Sprintf("%d %d %d\n", m.ContainerID, m.HostID, m.Size)
	}
	return result
}

// prSetChildSubreaper is PR_SET_CHILD_SUBREAPER, not exposed by the syscall
// package.
const prSetChildSubreaper = 36

// SetChildSubreaper marks the calling process as a child subreaper so that
// when the intermediate process in the create handshake (spec §4.2) exits
// after starting init, init reparents to this process instead of to pid 1 -
// keeping it wait4()-able from Create/Wait.
func SetChildSubreaper() error {
	_, _, errno := syscall.Syscall(syscall.SYS_PRCTL, prSetChildSubreaper, 1, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// SetHostname sets the hostname in the UTS namespace.
func SetHostname(hostname string) error {
	if hostname == "" {
		return nil
	}
	return syscall.Sethostname([]byte(hostname))
}

// SetDomainname sets the domain name in the UTS namespace.
func SetDomainname(domainname string) error {
	if domainname == "" {
		return nil
	}
	return syscall.Setdomainname([]byte(domainname))
}
