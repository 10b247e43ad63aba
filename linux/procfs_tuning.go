package linux

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ApplySysctl writes kernel parameters into /proc/sys, per the
// linux.sysctl map. Must run after the mount and network namespaces are
// joined/created but before privileges are dropped, since most sysctl
// entries require CAP_SYS_ADMIN (or CAP_NET_ADMIN for net.* keys) in the
// owning namespace.
func ApplySysctl(sysctl map[string]string) error {
	for key, value := range sysctl {
		path := sysctlPath(key)
		if err := os.WriteFile(path, []byte(value), 0644); err != nil {
			return fmt.Errorf("sysctl %s=%s: %w", key, value, err)
		}
	}
	return nil
}

// sysctlPath converts a dotted sysctl key (e.g. "net.ipv4.ip_forward") into
// its /proc/sys path.
func sysctlPath(key string) string {
	return filepath.Join("/proc/sys", strings.ReplaceAll(key, ".", "/"))
}

// SetOOMScoreAdj adjusts the process's OOM killer score, per the
// process.oomScoreAdj field.
func SetOOMScoreAdj(score int) error {
	return os.WriteFile("/proc/self/oom_score_adj", []byte(strconv.Itoa(score)), 0644)
}
