package linux

import (
	"fmt"
	"os"

	goselinux "github.com/opencontainers/selinux/go-selinux"
)

// ApplySelinuxLabel sets the SELinux exec label that the kernel applies to
// the next exec(2) call on this thread, per the process.selinuxLabel field.
func ApplySelinuxLabel(label string) error {
	if label == "" || !goselinux.GetEnabled() {
		return nil
	}
	return goselinux.SetExecLabel(label)
}

// apparmorExecAttrPaths are tried in order; the apparmor/ subdirectory is the
// modern location, the bare attr/exec is what older kernels expose.
var apparmorExecAttrPaths = []string{
	"/proc/self/attr/apparmor/exec",
	"/proc/self/attr/exec",
}

// ApplyAppArmorProfile changes the AppArmor profile that confines the
// process after its next exec(2), per the process.apparmorProfile field.
//
// No library in the example pack applies an AppArmor profile to the calling
// process at runtime (moby/profiles/apparmor only generates profile text),
// so this writes the kernel's documented changeprofile request directly, the
// way every container runtime that supports AppArmor does.
func ApplyAppArmorProfile(profile string) error {
	if profile == "" {
		return nil
	}

	var lastErr error
	for _, path := range apparmorExecAttrPaths {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.Write([]byte(fmt.Sprintf("exec %s", profile)))
		f.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("set apparmor profile %q: %w", profile, lastErr)
}
