package linux

import (
	"context"
	"fmt"
	"strings"
	"time"

	systemdDbus "github.com/coreos/go-systemd/v22/dbus"
	"github.com/godbus/dbus/v5"

	"runc-go/spec"
)

// systemdManager is the LegacyViaUnit variant: cgroup placement is
// delegated to a systemd transient unit (scope) rather than writing
// cgroupfs directly. The unit manager is treated as an external transport;
// once systemd has created the unit's cgroup, resource writes and reads
// fall through to the ordinary Legacy or Unified backend at that path.
type systemdManager struct {
	unitName string
	slice    string
	inner    CgroupManager
}

// newSystemdManager parses the OCI "[slice]:[scope-prefix]:[name]" cgroups
// path convention, expanding the slice into its systemd hierarchy
// (a-b-c.slice -> a.slice/a-b.slice/a-b-c.slice), and names the leaf unit
// "<scope-prefix>-<name>.scope" unless name already ends in ".slice".
func newSystemdManager(cgroupsPath string, unified bool) (*systemdManager, error) {
	slice, prefix, name, err := parseSystemdCgroupsPath(cgroupsPath)
	if err != nil {
		return nil, err
	}

	unitName := name
	if !strings.HasSuffix(name, ".slice") {
		if prefix != "" {
			unitName = prefix + "-" + name + ".scope"
		} else {
			unitName = name + ".scope"
		}
	}

	relPath := expandSlicePath(slice, unitName)

	var inner CgroupManager
	if unified {
		inner, err = NewCgroup(relPath)
	} else {
		inner, err = NewLegacyCgroup(relPath)
	}
	if err != nil {
		return nil, fmt.Errorf("open backing cgroup for unit %s: %w", unitName, err)
	}

	return &systemdManager{unitName: unitName, slice: slice, inner: inner}, nil
}

// parseSystemdCgroupsPath splits "slice:prefix:name" into its parts.
func parseSystemdCgroupsPath(cgroupsPath string) (slice, prefix, name string, err error) {
	parts := strings.SplitN(cgroupsPath, ":", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("systemd cgroups path %q must be slice:prefix:name", cgroupsPath)
	}
	slice = parts[0]
	if slice == "" {
		slice = "system.slice"
	}
	return slice, parts[1], parts[2], nil
}

// expandSlicePath turns "a-b-c.slice" into "a.slice/a-b.slice/a-b-c.slice"
// and appends the leaf unit name.
func expandSlicePath(slice, unitName string) string {
	trimmed := strings.TrimSuffix(slice, ".slice")
	segments := strings.Split(trimmed, "-")

	var parts []string
	var acc string
	for _, seg := range segments {
		if acc == "" {
			acc = seg
		} else {
			acc = acc + "-" + seg
		}
		parts = append(parts, acc+".slice")
	}
	parts = append(parts, unitName)
	return strings.Join(parts, "/")
}

// Apply starts the transient systemd scope (placing pid into the unit's
// cgroup as a side effect) and then applies resources via the inner backend.
func (m *systemdManager) Apply(pid int, resources *spec.LinuxResources) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := systemdDbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return fmt.Errorf("connect to systemd: %w", err)
	}
	defer conn.Close()

	props := []systemdDbus.Property{
		systemdDbus.PropPids(uint32(pid)),
		systemdDbus.PropDescription("container " + m.unitName),
		newDbusProperty("Slice", m.slice),
		newDbusProperty("Delegate", true),
	}
	if resources != nil && resources.Memory != nil && resources.Memory.Limit != nil && *resources.Memory.Limit > 0 {
		props = append(props, newDbusProperty("MemoryMax", uint64(*resources.Memory.Limit)))
	}
	if resources != nil && resources.CPU != nil && resources.CPU.Shares != nil && *resources.CPU.Shares > 0 {
		props = append(props, newDbusProperty("CPUShares", *resources.CPU.Shares))
	}

	ch := make(chan string, 1)
	if _, err := conn.StartTransientUnitContext(ctx, m.unitName, "replace", props, ch); err != nil {
		return fmt.Errorf("start transient unit %s: %w", m.unitName, err)
	}
	select {
	case res := <-ch:
		if res != "done" {
			return fmt.Errorf("start transient unit %s: job result %q", m.unitName, res)
		}
	case <-ctx.Done():
		return fmt.Errorf("start transient unit %s: %w", m.unitName, ctx.Err())
	}

	return m.inner.SetResources(resources)
}

func (m *systemdManager) SetResources(resources *spec.LinuxResources) error {
	return m.inner.SetResources(resources)
}

func (m *systemdManager) Stats() (*CgroupStats, error) {
	return m.inner.Stats()
}

func (m *systemdManager) Freeze(frozen bool) error {
	return m.inner.Freeze(frozen)
}

// Remove stops the transient unit, letting systemd tear down its cgroup.
func (m *systemdManager) Remove() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := systemdDbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return fmt.Errorf("connect to systemd: %w", err)
	}
	defer conn.Close()

	ch := make(chan string, 1)
	if _, err := conn.StopUnitContext(ctx, m.unitName, "replace", ch); err != nil {
		return fmt.Errorf("stop unit %s: %w", m.unitName, err)
	}
	select {
	case <-ch:
	case <-ctx.Done():
	}
	return nil
}

func (m *systemdManager) Path() string {
	return m.unitName
}

// newDbusProperty builds a systemd unit property from a raw name/value pair
// for properties systemdDbus.Prop* helpers don't cover (Slice, Delegate,
// MemoryMax, CPUShares).
func newDbusProperty(name string, value interface{}) systemdDbus.Property {
	return systemdDbus.Property{
		Name:  name,
		Value: dbus.MakeVariant(value),
	}
}
