package linux

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"runc-go/spec"
)

// ioprioSetSyscallNum and schedSetattrSyscallNum are not exposed by
// golang.org/x/sys/unix as named constants; both syscalls are long-stable
// ABI numbers, so they are hardcoded per architecture the same way
// linux/seccomp.go hardcodes PR_SET_NO_NEW_PRIVS-style prctl arguments.
var (
	ioprioSetSyscallNum    int64
	schedSetattrSyscallNum int64
)

func init() {
	switch runtime.GOARCH {
	case "amd64":
		ioprioSetSyscallNum = 251
		schedSetattrSyscallNum = 314
	case "arm64":
		ioprioSetSyscallNum = 30
		schedSetattrSyscallNum = 274
	}
}

const (
	ioprioWhoProcess = 1

	ioprioClassShift = 13
)

var ioprioClassValue = map[string]int{
	spec.IOPRIOClassRT:   1,
	spec.IOPRIOClassBE:   2,
	spec.IOPRIOClassIdle: 3,
}

// SetIOPriority applies the process's I/O priority class/level via
// ioprio_set(2), per the process.ioPriority field.
func SetIOPriority(p *spec.LinuxIOPriority) error {
	if p == nil {
		return nil
	}
	if ioprioSetSyscallNum == 0 {
		return fmt.Errorf("ioprio_set not supported on %s", runtime.GOARCH)
	}
	class, ok := ioprioClassValue[p.Class]
	if !ok {
		return fmt.Errorf("unknown ioprio class %q", p.Class)
	}
	ioprio := (class << ioprioClassShift) | (p.Priority & 0x1fff)

	_, _, errno := unix.Syscall(uintptr(ioprioSetSyscallNum), ioprioWhoProcess, 0, uintptr(ioprio))
	if errno != 0 {
		return fmt.Errorf("ioprio_set: %w", errno)
	}
	return nil
}

var schedPolicyValue = map[string]uint32{
	spec.SchedOther:    0,
	spec.SchedFIFO:     1,
	spec.SchedRR:       2,
	spec.SchedBatch:    3,
	spec.SchedIdle:     5,
	spec.SchedDeadline: 6,
}

// schedFlagValue maps the scheduler flag names the OCI spec names to the
// SCHED_FLAG_* bit values from include/uapi/linux/sched.h.
var schedFlagValue = map[string]uint64{
	"SCHED_FLAG_RESET_ON_FORK":  0x01,
	"SCHED_FLAG_RECLAIM":        0x02,
	"SCHED_FLAG_DL_OVERRUN":     0x04,
	"SCHED_FLAG_KEEP_POLICY":    0x08,
	"SCHED_FLAG_KEEP_PARAMS":    0x10,
	"SCHED_FLAG_UTIL_CLAMP_MIN": 0x20,
	"SCHED_FLAG_UTIL_CLAMP_MAX": 0x40,
}

func schedFlagsBitmask(flags []string) uint64 {
	var mask uint64
	for _, f := range flags {
		mask |= schedFlagValue[f]
	}
	return mask
}

// schedAttr mirrors the kernel's struct sched_attr (include/uapi/linux/sched/types.h).
type schedAttr struct {
	size         uint32
	schedPolicy  uint32
	schedFlags   uint64
	schedNice    int32
	schedPrio    int32
	schedRuntime uint64
	schedDeadl   uint64
	schedPeriod  uint64
}

// SetScheduler applies the process's scheduling policy via sched_setattr(2),
// per the process.scheduler field.
func SetScheduler(s *spec.Scheduler) error {
	if s == nil {
		return nil
	}
	if schedSetattrSyscallNum == 0 {
		return fmt.Errorf("sched_setattr not supported on %s", runtime.GOARCH)
	}
	policy, ok := schedPolicyValue[s.Policy]
	if !ok {
		return fmt.Errorf("unknown scheduler policy %q", s.Policy)
	}

	size := uint32(unsafe.Sizeof(schedAttr{}))
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], size)
	binary.LittleEndian.PutUint32(buf[4:8], policy)
	binary.LittleEndian.PutUint64(buf[8:16], schedFlagsBitmask(s.Flags))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(s.Nice))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(s.Priority))
	binary.LittleEndian.PutUint64(buf[24:32], s.Runtime)
	binary.LittleEndian.PutUint64(buf[32:40], s.Deadline)
	binary.LittleEndian.PutUint64(buf[40:48], s.Period)

	_, _, errno := unix.Syscall(uintptr(schedSetattrSyscallNum), 0, uintptr(unsafe.Pointer(&buf[0])), 0)
	if errno != 0 {
		return fmt.Errorf("sched_setattr: %w", errno)
	}
	return nil
}
