// Package container implements the stats/events operation.
package container

import (
	"context"
	"fmt"

	cerrors "runc-go/errors"
	"runc-go/linux"
)

// Stats returns the resource usage statistics for a container's cgroup.
func Stats(ctx context.Context, id, stateRoot string) (*linux.CgroupStats, error) {
	c, err := Load(ctx, id, stateRoot)
	if err != nil {
		return nil, fmt.Errorf("load container: %w", err)
	}

	cgroupPath := linux.GetCgroupPath(c.ID, "")
	if c.State.CgroupPath != "" {
		cgroupPath = c.State.CgroupPath
	}
	cgroup, err := linux.NewCgroupManager(cgroupPath, c.State.SystemdCgroup)
	if err != nil {
		return nil, cerrors.WrapWithContainer(err, cerrors.ErrInternal, "open cgroup", id)
	}

	stats, err := cgroup.Stats()
	if err != nil {
		return nil, cerrors.WrapWithContainer(err, cerrors.ErrInternal, "read stats", id)
	}
	return stats, nil
}
