// Package container implements the checkpoint/restore broker.
//
// The image format and actual process-state capture are delegated to an
// external checkpoint engine (the CRIU convention is assumed); this package
// only resolves the engine binary, assembles its argv from OCI-style flags,
// and forwards the container's directory layout and state to it.
package container

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	cerrors "runc-go/errors"
	"runc-go/spec"
)

// CheckpointOptions mirrors the checkpoint flags a caller (e.g. a higher
// level container engine) forwards to the external checkpoint engine.
type CheckpointOptions struct {
	// Engine is the checkpoint engine binary name or path (default "criu").
	Engine string

	// ImagePath is the directory the engine writes/reads checkpoint images to.
	ImagePath string

	// WorkPath is the directory the engine writes logs to.
	WorkPath string

	// LeaveRunning keeps the container running after checkpointing.
	LeaveRunning bool

	// TCPEstablished allows checkpointing containers with established TCP connections.
	TCPEstablished bool

	// ExtraArgs are forwarded verbatim to the engine after the standard flags.
	ExtraArgs []string
}

// Checkpoint invokes the external checkpoint engine against a running
// container's init process. Valid only from Running.
func Checkpoint(ctx context.Context, id, stateRoot string, opts *CheckpointOptions) error {
	if opts == nil {
		opts = &CheckpointOptions{}
	}
	if opts.ImagePath == "" {
		return cerrors.WrapWithDetail(nil, cerrors.ErrInvalidConfig, "checkpoint", "image-path is required")
	}

	c, err := Load(ctx, id, stateRoot)
	if err != nil {
		return fmt.Errorf("load container: %w", err)
	}

	c.RefreshStatus()
	if c.State.Status != spec.StatusRunning {
		return cerrors.WrapWithDetail(nil, cerrors.ErrWrongState, "checkpoint",
			fmt.Sprintf("container %s is %s, not running", id, c.State.Status))
	}

	args := []string{"dump", "--tree", fmt.Sprintf("%d", c.InitProcess), "--images-dir", opts.ImagePath}
	if opts.WorkPath != "" {
		args = append(args, "--work-dir", opts.WorkPath)
	}
	if opts.LeaveRunning {
		args = append(args, "--leave-running")
	}
	if opts.TCPEstablished {
		args = append(args, "--tcp-established")
	}
	args = append(args, opts.ExtraArgs...)

	if err := runCheckpointEngine(ctx, opts.Engine, args); err != nil {
		return cerrors.WrapWithContainer(err, cerrors.ErrExternal, "checkpoint", id)
	}

	if !opts.LeaveRunning {
		return c.UpdateStatus(spec.StatusStopped)
	}
	return nil
}

// RestoreOptions mirrors the restore flags forwarded to the external engine.
type RestoreOptions struct {
	// Engine is the checkpoint engine binary name or path (default "criu").
	Engine string

	// ImagePath is the directory containing the checkpoint image to restore.
	ImagePath string

	// WorkPath is the directory the engine writes logs to.
	WorkPath string

	// Detach runs the restored container in the background.
	Detach bool

	// ExtraArgs are forwarded verbatim to the engine after the standard flags.
	ExtraArgs []string
}

// Restore invokes the external checkpoint engine to bring a container's
// process tree back from a previously taken checkpoint image. Valid only
// from Created (the bundle/state layout must already exist).
func Restore(ctx context.Context, id, stateRoot string, opts *RestoreOptions) error {
	if opts == nil {
		opts = &RestoreOptions{}
	}
	if opts.ImagePath == "" {
		return cerrors.WrapWithDetail(nil, cerrors.ErrInvalidConfig, "restore", "image-path is required")
	}

	c, err := Load(ctx, id, stateRoot)
	if err != nil {
		return fmt.Errorf("load container: %w", err)
	}

	c.RefreshStatus()
	if c.State.Status != spec.StatusCreated {
		return cerrors.WrapWithDetail(nil, cerrors.ErrWrongState, "restore",
			fmt.Sprintf("container %s is %s, not created", id, c.State.Status))
	}

	args := []string{"restore", "--images-dir", opts.ImagePath, "--pidfile", c.StateDir + "/restored.pid"}
	if opts.WorkPath != "" {
		args = append(args, "--work-dir", opts.WorkPath)
	}
	if opts.Detach {
		args = append(args, "--restore-detached")
	}
	args = append(args, opts.ExtraArgs...)

	if err := runCheckpointEngine(ctx, opts.Engine, args); err != nil {
		return cerrors.WrapWithContainer(err, cerrors.ErrExternal, "restore", id)
	}

	return c.UpdateStatus(spec.StatusRunning)
}

// runCheckpointEngine shells out to the external checkpoint engine, the way
// hooks/hooks.go invokes OCI lifecycle hooks: stdio inherited, so the
// engine's stderr goes straight to ours, and a non-zero exit is returned as
// the *exec.ExitError from cmd.Run.
func runCheckpointEngine(ctx context.Context, engine string, args []string) error {
	if engine == "" {
		engine = "criu"
	}
	path, err := exec.LookPath(engine)
	if err != nil {
		return fmt.Errorf("checkpoint engine %q not found in PATH: %w", engine, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
