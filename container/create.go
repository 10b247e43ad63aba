// Package container implements the create operation.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	cerrors "runc-go/errors"
	"runc-go/linux"
	"runc-go/spec"
	"runc-go/utils"
)

// CreateOptions contains options for container creation.
type CreateOptions struct {
	// ConsoleSocket is the path to a unix socket for the console.
	ConsoleSocket string

	// PidFile is the path to write the container PID.
	PidFile string

	// NoPivot disables pivot_root (use chroot instead).
	NoPivot bool

	// NoNewKeyring disables creating a new session keyring.
	NoNewKeyring bool

	// SystemdCgroup places the container's cgroup via a systemd transient
	// unit (LegacyViaUnit) rather than writing cgroupfs directly.
	SystemdCgroup bool
}

// Create creates a container but doesn't start the user process.
// The container will be in "created" state, waiting for Start().
func (c *Container) Create(ctx context.Context, opts *CreateOptions) error {
	// Check context cancellation
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if opts == nil {
		opts = &CreateOptions{}
	}

	// Create exec FIFO for synchronization
	if err := c.CreateExecFifo(); err != nil {
		return cerrors.Wrap(err, cerrors.ErrResource, "create exec fifo")
	}

	// Cleanup function to call on error after FIFO is created
	var cgroup linux.CgroupManager
	cleanup := func() {
		// Remove FIFO
		os.Remove(c.ExecFifoPath())
		// Destroy cgroup if created
		if cgroup != nil {
			cgroup.Remove()
		}
	}

	// Setup cgroup. Under --systemd-cgroup the path follows the
	// slice:prefix:name convention rather than a plain cgroupfs path.
	var cgroupPath string
	if c.Spec.Linux != nil && c.Spec.Linux.CgroupsPath != "" {
		cgroupPath = c.Spec.Linux.CgroupsPath
	} else if opts.SystemdCgroup {
		cgroupPath = "system.slice:runc-go:" + c.ID
	} else {
		cgroupPath = linux.GetCgroupPath(c.ID, "")
	}
	c.CgroupPath = cgroupPath
	c.State.CgroupPath = cgroupPath
	c.State.SystemdCgroup = opts.SystemdCgroup

	// Enable parent controllers (unified hierarchy only; no-op on legacy
	// or when the systemd transport owns placement)
	if !opts.SystemdCgroup {
		linux.EnsureParentControllers(cgroupPath)
	}

	// Create cgroup manager (Legacy, Unified, or LegacyViaUnit per host and flag)
	var err error
	cgroup, err = linux.NewCgroupManager(cgroupPath, opts.SystemdCgroup)
	if err != nil {
		cleanup()
		return fmt.Errorf("create cgroup: %w", err)
	}

	// Get path to our own executable
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("get executable: %w", err)
	}

	// Become a child subreaper before forking the handshake chain: the
	// intermediate process exits right after forking init (spec §4.2 step
	// 3), and without this init would reparent to pid 1 instead of back to
	// us, breaking the wait4() in Wait().
	if err := linux.SetChildSubreaper(); err != nil {
		cleanup()
		return fmt.Errorf("set child subreaper: %w", err)
	}

	hp := newHandshakePipes()
	defer hp.closeAll()

	// Build command for the intermediate process (spec §4.2 step 1): it
	// creates every namespace but pid/mount, optionally writes a
	// single-entry id mapping at clone time, and then itself forks init.
	cmd := exec.Command(self, "nsenter-init")
	cmd.Dir = c.Bundle

	sysProcAttr, err := linux.BuildIntermediateSysProcAttr(c.Spec)
	if err != nil {
		cleanup()
		return fmt.Errorf("build sysprocattr: %w", err)
	}
	cmd.SysProcAttr = sysProcAttr
	cmd.ExtraFiles = hp.intermediateFiles()

	// Setup environment for the handshake chain
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("_RUNC_GO_INIT_BUNDLE=%s", c.Bundle),
		fmt.Sprintf("_RUNC_GO_INIT_FIFO=%s", c.ExecFifoPath()),
		fmt.Sprintf("_RUNC_GO_INIT_ID=%s", c.ID),
		fmt.Sprintf("_RUNC_GO_STATE_DIR=%s", c.StateDir),
	)

	// Setup stdin/stdout/stderr
	var console *utils.Console
	var consoleSlave *os.File
	if c.Spec.Process != nil && c.Spec.Process.Terminal && opts.ConsoleSocket != "" {
		// Console socket mode: create PTY and send master to socket
		var err error
		console, err = utils.NewConsole()
		if err != nil {
			return fmt.Errorf("create console: %w", err)
		}
		// Open slave PTY in parent and pass to child via inheritance
		consoleSlave, err = console.OpenSlave()
		if err != nil {
			console.Close()
			return fmt.Errorf("open console slave: %w", err)
		}
		// Connect child's stdio to slave PTY
		cmd.Stdin = consoleSlave
		cmd.Stdout = consoleSlave
		cmd.Stderr = consoleSlave
		// Note: Don't set Setctty here - it interferes with namespace creation
		// The controlling terminal is set up in InitContainer instead
	} else if c.Spec.Process != nil && c.Spec.Process.Terminal {
		// Direct terminal mode: inherit from parent
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		// Non-terminal mode
		cmd.Stdin = nil
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	// Start the intermediate process
	if err := cmd.Start(); err != nil {
		if console != nil {
			console.Close()
		}
		cleanup()
		return fmt.Errorf("start intermediate: %w", err)
	}

	// Send PTY master to console socket (must be after cmd.Start)
	if console != nil {
		if err := utils.SendConsoleToSocket(opts.ConsoleSocket, console.Master()); err != nil {
			cmd.Process.Kill()
			console.Close()
			if consoleSlave != nil {
				consoleSlave.Close()
			}
			cleanup()
			return fmt.Errorf("send console to socket: %w", err)
		}
		console.Close() // Parent doesn't need master anymore
		if consoleSlave != nil {
			consoleSlave.Close() // Parent doesn't need slave anymore
		}
	}

	// The child side fds were duplicated into the intermediate at Start();
	// drop our copies so EOF on a peer's exit is observable.
	hp.closeIntermediateCopies()

	// Handshake step 2: write the uid/gid mapping from outside the user
	// namespace, once the intermediate (which owns it) is known to exist
	// and is blocked waiting for us.
	if linux.RequiresExternalIDMapping(c.Spec) {
		if err := hp.idMapReady.Wait(); err != nil {
			cmd.Process.Kill()
			cmd.Wait()
			cleanup()
			return fmt.Errorf("wait for id map ready: %w", peerClosedErr(err))
		}

		var uidMappings, gidMappings []spec.LinuxIDMapping
		if c.Spec.Linux != nil {
			uidMappings = c.Spec.Linux.UIDMappings
			gidMappings = c.Spec.Linux.GIDMappings
		}
		if mapErr := linux.WriteIDMappings(cmd.Process.Pid, uidMappings, gidMappings); mapErr != nil {
			hp.idMapDone.SignalError(mapErr)
			cmd.Process.Kill()
			cmd.Wait()
			cleanup()
			return cerrors.WrapWithContainer(mapErr, cerrors.ErrExternal, "write id mappings", c.ID)
		}
		if err := hp.idMapDone.Signal(); err != nil {
			cmd.Process.Kill()
			cmd.Wait()
			cleanup()
			return fmt.Errorf("ack id map: %w", err)
		}
	}

	// The intermediate's only remaining job is forking init and exiting
	// (reparenting init to us via the subreaper set above); reap it now.
	if err := cmd.Wait(); err != nil {
		cleanup()
		return fmt.Errorf("wait intermediate: %w", err)
	}

	// Handshake step 3: init reports its own pid (the intermediate forked
	// it, not us) so we can place it in the cgroup before it proceeds.
	initPID, err := hp.cgroupReady.WaitPid()
	if err != nil {
		cleanup()
		return fmt.Errorf("wait for init pid: %w", peerClosedErr(err))
	}

	c.InitProcess = initPID
	c.State.Pid = c.InitProcess

	// Place the init process in the cgroup and apply resource limits
	var resources *spec.LinuxResources
	if c.Spec.Linux != nil {
		resources = c.Spec.Linux.Resources
	}
	if err := cgroup.Apply(c.InitProcess, resources); err != nil {
		hp.cgroupDone.SignalError(err)
		syscall.Kill(c.InitProcess, syscall.SIGKILL)
		cleanup()
		return fmt.Errorf("apply cgroup: %w", err)
	}
	if err := hp.cgroupDone.Signal(); err != nil {
		syscall.Kill(c.InitProcess, syscall.SIGKILL)
		cleanup()
		return fmt.Errorf("ack cgroup: %w", err)
	}

	// Write PID file if requested
	if opts.PidFile != "" {
		if err := os.WriteFile(opts.PidFile, []byte(fmt.Sprintf("%d", c.InitProcess)), 0644); err != nil {
			syscall.Kill(c.InitProcess, syscall.SIGKILL)
			cleanup()
			return fmt.Errorf("write pid file: %w", err)
		}
	}

	// Update state to created
	c.State.Status = spec.StatusCreated
	if err := c.SaveState(); err != nil {
		syscall.Kill(c.InitProcess, syscall.SIGKILL)
		cleanup()
		return fmt.Errorf("save state: %w", err)
	}

	// Don't wait for init - it will block on the FIFO waiting for Start()
	// to be called

	return nil
}

// handshakePipes holds the four sync pipes that carry the Main/Intermediate/
// Init handshake (spec §4.2): id-map readiness/ack, then init-pid/cgroup-ack.
// Each pair is one-directional (a plain pipe only carries data one way), so
// a two-step round trip needs two pipes.
type handshakePipes struct {
	idMapReady  *utils.SyncPipe // intermediate -> main: ready for id map write
	idMapDone   *utils.SyncPipe // main -> intermediate: id map written (or error)
	cgroupReady *utils.SyncPipe // init -> main: reports its own pid
	cgroupDone  *utils.SyncPipe // main -> init: cgroup applied (or error)
}

func newHandshakePipes() *handshakePipes {
	idMapReady, _ := utils.NewSyncPipe()
	idMapDone, _ := utils.NewSyncPipe()
	cgroupReady, _ := utils.NewSyncPipe()
	cgroupDone, _ := utils.NewSyncPipe()
	return &handshakePipes{
		idMapReady:  idMapReady,
		idMapDone:   idMapDone,
		cgroupReady: cgroupReady,
		cgroupDone:  cgroupDone,
	}
}

// intermediateFiles returns the fds passed to the intermediate process via
// ExtraFiles, in order: they land at fd 3-6 there. IntermediateProcess (run
// by the intermediate re-exec) knows this fixed order.
func (hp *handshakePipes) intermediateFiles() []*os.File {
	return []*os.File{
		hp.idMapReady.ChildFile(),
		hp.idMapDone.ParentFile(),
		hp.cgroupReady.ChildFile(),
		hp.cgroupDone.ParentFile(),
	}
}

// closeIntermediateCopies closes Main's copies of the fds duplicated into
// the intermediate process, so a peer's exit is visible as EOF rather than
// masked by Main still holding a write end open.
func (hp *handshakePipes) closeIntermediateCopies() {
	hp.idMapReady.CloseChild()
	hp.idMapDone.CloseParent()
	hp.cgroupReady.CloseChild()
	hp.cgroupDone.CloseParent()
}

func (hp *handshakePipes) closeAll() {
	hp.idMapReady.Close()
	hp.idMapDone.Close()
	hp.cgroupReady.Close()
	hp.cgroupDone.Close()
}

// peerClosedErr reports a handshake peer dying mid-step (read returns EOF)
// as the dedicated sentinel instead of a bare io error.
func peerClosedErr(err error) error {
	if errors.Is(err, io.EOF) {
		return cerrors.ErrHandshakePeerClosed
	}
	return err
}

// IntermediateProcess runs the handshake's second role (spec §4.2 step 1-3
// boundary): it joins the namespaces the early clone created, participates
// in the id-map handshake when a single write(2) could not install the
// mapping at clone time, and then forks the final init process into the
// pid/mount namespaces held back for it, forwarding the cgroup-placement
// pipes. On success it exits the process directly once init is started;
// on failure it returns the error to cmd/init.go.
func IntermediateProcess() error {
	bundle := os.Getenv("_RUNC_GO_INIT_BUNDLE")
	if bundle == "" {
		return fmt.Errorf("missing init environment")
	}

	specPath := filepath.Join(bundle, "config.json")
	s, err := spec.LoadSpec(specPath)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}

	idMapReady := utils.NewSyncPipeFromFDs(-1, 3)
	idMapDone := utils.NewSyncPipeFromFDs(4, -1)
	cgroupReady := utils.NewSyncPipeFromFDs(-1, 5)
	cgroupDone := utils.NewSyncPipeFromFDs(6, -1)

	// Join the early (non-pid, non-mount) path-based namespaces; anything
	// created fresh was already handled by Cloneflags on this process.
	if s.Linux != nil {
		mask := ^(uintptr(linux.CLONE_NEWPID) | uintptr(linux.CLONE_NEWNS))
		if err := linux.SetNamespacesMatching(s.Linux.Namespaces, mask); err != nil {
			return fmt.Errorf("set namespaces: %w", err)
		}
	}

	if linux.RequiresExternalIDMapping(s) {
		if err := idMapReady.Signal(); err != nil {
			return fmt.Errorf("signal id map ready: %w", err)
		}
		if err := idMapDone.WaitWithError(); err != nil {
			return fmt.Errorf("id map: %w", err)
		}
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("get executable: %w", err)
	}

	initCmd := exec.Command(self, "init")
	initCmd.Dir = bundle
	initCmd.Env = os.Environ()
	initCmd.Stdin = os.Stdin
	initCmd.Stdout = os.Stdout
	initCmd.Stderr = os.Stderr
	initCmd.SysProcAttr = linux.BuildInitSysProcAttr(s)
	initCmd.ExtraFiles = []*os.File{cgroupReady.ChildFile(), cgroupDone.ParentFile()}

	if err := initCmd.Start(); err != nil {
		return fmt.Errorf("start init: %w", err)
	}

	// Our job is done: exit so init reparents to Main's subreaper.
	os.Exit(0)
	return nil
}

// InitContainer is called inside the container namespace to complete setup.
// This is executed by the re-exec'd process.
func InitContainer() error {
	// Get init parameters from environment
	bundle := os.Getenv("_RUNC_GO_INIT_BUNDLE")
	fifoPath := os.Getenv("_RUNC_GO_INIT_FIFO")
	// containerID := os.Getenv("_RUNC_GO_INIT_ID")
	// stateDir := os.Getenv("_RUNC_GO_STATE_DIR")

	if bundle == "" || fifoPath == "" {
		return fmt.Errorf("missing init environment")
	}

	// Handshake step 3 (spec §4.2): report our pid to Main over the pipe
	// the intermediate forwarded, and block until Main has placed us in
	// the cgroup, before any rootfs/hostname/sysctl setup runs.
	cgroupReady := utils.NewSyncPipeFromFDs(-1, 3)
	cgroupDone := utils.NewSyncPipeFromFDs(4, -1)
	if err := cgroupReady.SignalPid(os.Getpid()); err != nil {
		return fmt.Errorf("signal init pid: %w", err)
	}
	if err := cgroupDone.WaitWithError(); err != nil {
		return fmt.Errorf("wait for cgroup placement: %w", err)
	}

	// Load spec
	specPath := filepath.Join(bundle, "config.json")
	s, err := spec.LoadSpec(specPath)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}

	// Join the pid/mount path-based namespaces held back for this process;
	// everything else was already joined by the intermediate.
	if s.Linux != nil {
		mask := uintptr(linux.CLONE_NEWPID) | uintptr(linux.CLONE_NEWNS)
		if err := linux.SetNamespacesMatching(s.Linux.Namespaces, mask); err != nil {
			return fmt.Errorf("set namespaces: %w", err)
		}
	}

	// Set hostname
	if s.Hostname != "" {
		if err := linux.SetHostname(s.Hostname); err != nil {
			return fmt.Errorf("set hostname: %w", err)
		}
	}

	// Set domainname
	if s.Domainname != "" {
		if err := linux.SetDomainname(s.Domainname); err != nil {
			return fmt.Errorf("set domainname: %w", err)
		}
	}

	// Apply sysctls (must happen inside the joined/created namespaces,
	// before rootfs setup drops access to /proc/sys of the host)
	if s.Linux != nil && len(s.Linux.Sysctl) > 0 {
		if err := linux.ApplySysctl(s.Linux.Sysctl); err != nil {
			return fmt.Errorf("apply sysctl: %w", err)
		}
	}

	// Apply Intel RDT resource control
	if s.Linux != nil && s.Linux.IntelRdt != nil {
		if err := linux.ApplyIntelRdt(s.Linux.IntelRdt, os.Getpid()); err != nil {
			return fmt.Errorf("apply intel rdt: %w", err)
		}
	}

	// IMPORTANT: Open FIFO BEFORE pivot_root, as it won't be accessible after
	fifo, err := os.OpenFile(fifoPath, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open fifo: %w", err)
	}

	// Setup rootfs (pivot_root, mounts, etc.)
	if err := linux.SetupRootfs(s, bundle); err != nil {
		fifo.Close()
		return fmt.Errorf("setup rootfs: %w", err)
	}

	// Setup devices
	if s.Linux != nil && len(s.Linux.Devices) > 0 {
		if err := linux.CreateDevices(s.Linux.Devices); err != nil {
			fmt.Printf("[init] warning: create devices: %v\n", err)
		}
	}

	// Setup default devices
	linux.SetupDefaultDevices()
	linux.SetupDevSymlinks()
	linux.SetupDevPts()

	// Change to working directory
	if s.Process != nil && s.Process.Cwd != "" {
		if err := os.Chdir(s.Process.Cwd); err != nil {
			fifo.Close()
			return fmt.Errorf("chdir %s: %w", s.Process.Cwd, err)
		}
	}

	// Now wait on FIFO - this blocks until Start() is called
	// Read from FIFO (blocks until writer connects)
	buf := make([]byte, 1)
	_, err = fifo.Read(buf)
	fifo.Close()

	if err != nil {
		return fmt.Errorf("read fifo: %w", err)
	}

	// Create /dev/console if stdin is a PTY (character device)
	// Go's Setctty flag handles setsid() and TIOCSCTTY automatically
	var stat syscall.Stat_t
	if err := syscall.Fstat(0, &stat); err == nil {
		if stat.Mode&syscall.S_IFCHR != 0 {
			os.Remove("/dev/console")
			if err := syscall.Mknod("/dev/console", syscall.S_IFCHR|0600, int(stat.Rdev)); err != nil {
				fmt.Printf("[init] warning: failed to create /dev/console: %v\n", err)
			}
		}
	}

	// Apply capabilities
	if s.Process != nil && s.Process.Capabilities != nil {
		if err := linux.ApplyCapabilities(s.Process.Capabilities); err != nil {
			return fmt.Errorf("apply capabilities: %w", err)
		}
	}

	// Apply seccomp
	if s.Linux != nil && s.Linux.Seccomp != nil {
		if err := linux.SetupSeccomp(s.Linux.Seccomp); err != nil {
			return fmt.Errorf("setup seccomp: %w", err)
		}
	}

	// Set user
	if s.Process != nil {
		if err := setUser(s.Process.User); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
	}

	// Setup environment
	if s.Process != nil {
		for _, env := range s.Process.Env {
			parts := splitEnv(env)
			if len(parts) == 2 {
				os.Setenv(parts[0], parts[1])
			}
		}
	}

	// Adjust OOM killer score
	if s.Process != nil && s.Process.OOMScoreAdj != nil {
		if err := linux.SetOOMScoreAdj(*s.Process.OOMScoreAdj); err != nil {
			fmt.Printf("[init] warning: set oom_score_adj: %v\n", err)
		}
	}

	// Apply I/O priority and scheduling policy
	if s.Process != nil {
		if err := linux.SetIOPriority(s.Process.IOPriority); err != nil {
			return fmt.Errorf("set io priority: %w", err)
		}
		if err := linux.SetScheduler(s.Process.Scheduler); err != nil {
			return fmt.Errorf("set scheduler: %w", err)
		}
	}

	// Apply AppArmor profile and SELinux label. These only take effect on
	// the process's next exec, so they must be set last, right before the
	// user command is execed.
	if s.Process != nil {
		if err := linux.ApplyAppArmorProfile(s.Process.ApparmorProfile); err != nil {
			return fmt.Errorf("apply apparmor profile: %w", err)
		}
		if err := linux.ApplySelinuxLabel(s.Process.SelinuxLabel); err != nil {
			return fmt.Errorf("apply selinux label: %w", err)
		}
	}

	// Exec the user process
	if s.Process == nil || len(s.Process.Args) == 0 {
		return fmt.Errorf("no process args specified")
	}

	// If stdin is a TTY, ensure it's the controlling terminal
	// This is needed because Go's Setctty doesn't work reliably with Cloneflags
	if s.Process.Terminal {
		// Try to become session leader (may already be one, which is fine)
		syscall.Setsid()
		// Set stdin as controlling terminal
		utils.SetControllingTerminal(os.Stdin)
		// Enable signal generation and set foreground process group
		utils.SetupTerminalSignals(os.Stdin)
	}

	args := s.Process.Args
	path, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("lookup %s: %w", args[0], err)
	}

	// Instead of exec'ing directly (which would make user command PID 1),
	// fork/exec and forward signals. PID 1 in Linux ignores signals without handlers.
	cmd := exec.Command(path, args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	// Start the user process
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start user process: %w", err)
	}

	// Forward signals to the child process
	// PID 1 in Linux ignores signals without handlers, so we must catch and forward them
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	// Signal forwarding goroutine
	done := make(chan struct{})
	go func() {
		defer close(done)
		for sig := range sigChan {
			// Ignore errors - process may have exited
			_ = cmd.Process.Signal(sig)
		}
	}()

	// Wait for child to exit and propagate its exit code
	waitErr := cmd.Wait()

	// Stop signal forwarding and clean up
	signal.Stop(sigChan)
	close(sigChan)
	<-done // Wait for goroutine to finish

	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return waitErr
	}
	os.Exit(0)
	return nil // unreachable
}

// splitEnv splits an environment variable string into key and value.
func splitEnv(env string) []string {
	for i := 0; i < len(env); i++ {
		if env[i] == '=' {
			return []string{env[:i], env[i+1:]}
		}
	}
	return []string{env}
}

// setUser sets the user ID and group ID.
func setUser(user spec.User) error {
	// Set supplementary groups
	if len(user.AdditionalGids) > 0 {
		gids := make([]int, len(user.AdditionalGids))
		for i, g := range user.AdditionalGids {
			gids[i] = int(g)
		}
		// setgroups might fail in user namespaces, log warning but don't fail
		if err := setGroups(gids); err != nil {
			fmt.Printf("[init] warning: setgroups failed (expected in user namespaces): %v\n", err)
		}
	}

	// Set GID first (must be before UID)
	if user.GID != 0 {
		if err := setGid(int(user.GID)); err != nil {
			return fmt.Errorf("setgid: %w", err)
		}
	}

	// Set UID
	if user.UID != 0 {
		if err := setUid(int(user.UID)); err != nil {
			return fmt.Errorf("setuid: %w", err)
		}
	}

	// Set umask
	if user.Umask != nil {
		oldMask := setUmask(int(*user.Umask))
		_ = oldMask // Ignore old mask
	}

	return nil
}
