package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cerrors "runc-go/errors"
)

// knownCapabilities mirrors the capability names linux.ApplyCapabilities
// recognizes. Duplicated here, rather than imported, because linux already
// imports this package and a reverse import would cycle.
var knownCapabilities = map[string]bool{
	"CAP_CHOWN": true, "CAP_DAC_OVERRIDE": true, "CAP_DAC_READ_SEARCH": true,
	"CAP_FOWNER": true, "CAP_FSETID": true, "CAP_KILL": true,
	"CAP_SETGID": true, "CAP_SETUID": true, "CAP_SETPCAP": true,
	"CAP_LINUX_IMMUTABLE": true, "CAP_NET_BIND_SERVICE": true, "CAP_NET_BROADCAST": true,
	"CAP_NET_ADMIN": true, "CAP_NET_RAW": true, "CAP_IPC_LOCK": true,
	"CAP_IPC_OWNER": true, "CAP_SYS_MODULE": true, "CAP_SYS_RAWIO": true,
	"CAP_SYS_CHROOT": true, "CAP_SYS_PTRACE": true, "CAP_SYS_PACCT": true,
	"CAP_SYS_ADMIN": true, "CAP_SYS_BOOT": true, "CAP_SYS_NICE": true,
	"CAP_SYS_RESOURCE": true, "CAP_SYS_TIME": true, "CAP_SYS_TTY_CONFIG": true,
	"CAP_MKNOD": true, "CAP_LEASE": true, "CAP_AUDIT_WRITE": true,
	"CAP_AUDIT_CONTROL": true, "CAP_SETFCAP": true, "CAP_MAC_OVERRIDE": true,
	"CAP_MAC_ADMIN": true, "CAP_SYSLOG": true, "CAP_WAKE_ALARM": true,
	"CAP_BLOCK_SUSPEND": true, "CAP_AUDIT_READ": true, "CAP_PERFMON": true,
	"CAP_BPF": true, "CAP_CHECKPOINT_RESTORE": true,
}

// supportedSeccompArches mirrors the architectures linux/seccomp.go maps to
// an audit arch value; any other token is rejected eagerly rather than
// silently no-op'd once a filter is built.
var supportedSeccompArches = map[Arch]bool{
	ArchX86_64:  true,
	ArchX86:     true,
	ArchARM:     true,
	ArchAARCH64: true,
}

// Validate runs the eager, side-effect-free checks a bundle config must pass
// before any namespace or cgroup is touched. Every rule here is a rejection,
// never a mutation: Validate must be called before Container.Create does
// anything observable (cgroup directory creation, process fork).
func Validate(s *Spec) error {
	if s == nil {
		return cerrors.New(cerrors.ErrInvalidConfig, "validate", "spec is nil")
	}

	if s.Linux != nil {
		hasUserNS := false
		for _, ns := range s.Linux.Namespaces {
			if ns.Type == UserNamespace {
				hasUserNS = true
				break
			}
		}
		if os.Geteuid() != 0 && !hasUserNS {
			return cerrors.New(cerrors.ErrInvalidConfig, "validate",
				"rootless caller requires a user namespace")
		}
	}

	for _, m := range s.Mounts {
		if !filepath.IsAbs(m.Destination) {
			return cerrors.New(cerrors.ErrInvalidConfig, "validate",
				fmt.Sprintf("mount destination %q must be absolute", m.Destination))
		}
	}

	if s.Linux != nil {
		for _, d := range s.Linux.Devices {
			if !strings.HasPrefix(d.Path, "/dev") {
				return cerrors.New(cerrors.ErrInvalidConfig, "validate",
					fmt.Sprintf("device path %q must be under /dev", d.Path))
			}
		}

		if s.Linux.Seccomp != nil {
			for _, arch := range s.Linux.Seccomp.Architectures {
				if !supportedSeccompArches[arch] {
					return cerrors.New(cerrors.ErrInvalidConfig, "validate",
						fmt.Sprintf("seccomp architecture %q is not supported by this host", arch))
				}
			}
		}

		if s.Process != nil {
			if err := validateProcessCapabilities(s.Process.Capabilities); err != nil {
				return err
			}
		}

		if s.Linux.Resources != nil {
			for _, h := range s.Linux.Resources.HugepageLimits {
				if _, _, err := parseHugepageSize(h.Pagesize); err != nil {
					return cerrors.WrapWithDetail(nil, cerrors.ErrInvalidConfig, "validate",
						fmt.Sprintf("hugetlb page size %q: %v", h.Pagesize, err))
				}
			}
		}

		for key := range s.Linux.Sysctl {
			if strings.Contains(key, "/") {
				return cerrors.New(cerrors.ErrInvalidConfig, "validate",
					fmt.Sprintf("sysctl key %q must not contain '/'", key))
			}
		}

		for _, p := range s.Linux.ReadonlyPaths {
			if !filepath.IsAbs(p) {
				return cerrors.New(cerrors.ErrInvalidConfig, "validate",
					fmt.Sprintf("readonly path %q must be absolute", p))
			}
		}
		for _, p := range s.Linux.MaskedPaths {
			if !filepath.IsAbs(p) {
				return cerrors.New(cerrors.ErrInvalidConfig, "validate",
					fmt.Sprintf("masked path %q must be absolute", p))
			}
		}
	}

	return nil
}

// validateProcessCapabilities rejects any capability name the runtime does
// not recognize, before any process is created (spec §4.7's UnknownCapability
// failure).
func validateProcessCapabilities(c *LinuxCapabilities) error {
	if c == nil {
		return nil
	}
	lists := [][]string{c.Bounding, c.Effective, c.Inheritable, c.Permitted, c.Ambient}
	for _, list := range lists {
		for _, name := range list {
			if !knownCapabilities[strings.ToUpper(name)] {
				return cerrors.WrapWithDetail(cerrors.ErrCapabilityUnknown, cerrors.ErrCapability, "validate",
					fmt.Sprintf("unknown capability %q", name))
			}
		}
	}
	return nil
}

// parseHugepageSize splits "2MB" into (2, "M", nil) and rejects sizes that
// aren't a power of two, mirroring linux.Cgroup's hugetlb controller so the
// same rule rejects eagerly here instead of only at cgroup-apply time.
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
	var n uint64
	if _, err := fmt.Sscanf(s[:len(s)-2], "%d", &n); err != nil {
		return 0, "", err
	}
	if n == 0 || n&(n-1) != 0 {
		return 0, "", fmt.Errorf("%q is not a power of two", s[:len(s)-2])
	}
	return n, unit, nil
}
