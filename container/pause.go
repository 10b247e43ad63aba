// Package container implements the pause/resume operations.
package container

import (
	"context"
	"fmt"

	cerrors "runc-go/errors"
	"runc-go/linux"
	"runc-go/spec"
)

// Pause freezes all processes in a running container's cgroup, moving it to
// the Paused state. Valid only from Running.
func Pause(ctx context.Context, id, stateRoot string) error {
	c, err := Load(ctx, id, stateRoot)
	if err != nil {
		return fmt.Errorf("load container: %w", err)
	}

	c.RefreshStatus()
	if c.State.Status != spec.StatusRunning {
		return cerrors.WrapWithDetail(nil, cerrors.ErrWrongState, "pause",
			fmt.Sprintf("container %s is %s, not running", id, c.State.Status))
	}

	cgroupPath := linux.GetCgroupPath(c.ID, "")
	if c.State.CgroupPath != "" {
		cgroupPath = c.State.CgroupPath
	}
	cgroup, err := linux.NewCgroupManager(cgroupPath, c.State.SystemdCgroup)
	if err != nil {
		return cerrors.WrapWithContainer(err, cerrors.ErrInternal, "open cgroup", id)
	}

	if err := cgroup.Freeze(true); err != nil {
		return cerrors.WrapWithContainer(err, cerrors.ErrInternal, "freeze", id)
	}

	return c.UpdateStatus(spec.StatusPaused)
}

// Resume thaws a paused container's cgroup, moving it back to Running.
// Valid only from Paused.
func Resume(ctx context.Context, id, stateRoot string) error {
	c, err := Load(ctx, id, stateRoot)
	if err != nil {
		return fmt.Errorf("load container: %w", err)
	}

	c.RefreshStatus()
	if c.State.Status != spec.StatusPaused {
		return cerrors.WrapWithDetail(nil, cerrors.ErrWrongState, "resume",
			fmt.Sprintf("container %s is %s, not paused", id, c.State.Status))
	}

	cgroupPath := linux.GetCgroupPath(c.ID, "")
	if c.State.CgroupPath != "" {
		cgroupPath = c.State.CgroupPath
	}
	cgroup, err := linux.NewCgroupManager(cgroupPath, c.State.SystemdCgroup)
	if err != nil {
		return cerrors.WrapWithContainer(err, cerrors.ErrInternal, "open cgroup", id)
	}

	if err := cgroup.Freeze(false); err != nil {
		return cerrors.WrapWithContainer(err, cerrors.ErrInternal, "thaw", id)
	}

	return c.UpdateStatus(spec.StatusRunning)
}
