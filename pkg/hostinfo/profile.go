// Package hostinfo collects lightweight, one-shot host telemetry (memory,
// CPU, disk, uptime, virtualization, session type) and tracks where Anna is
// installed. cmd/annad collects both once at startup and logs the profile;
// neither is consulted by the router or the request path.
package hostinfo

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// VirtualizationKind classifies the execution environment.
type VirtualizationKind string

const (
	VirtualizationNone      VirtualizationKind = "none"
	VirtualizationContainer VirtualizationKind = "container"
	VirtualizationVM        VirtualizationKind = "vm"
	VirtualizationUnknown   VirtualizationKind = "unknown"
)

// SessionKind classifies how the current session is attached to the host.
type SessionKind string

const (
	SessionDesktop  SessionKind = "desktop"
	SessionSSH      SessionKind = "ssh"
	SessionConsole  SessionKind = "console"
	SessionHeadless SessionKind = "headless"
)

// MachineClass is a coarse classification of the host. It is reported in
// the startup log; autonomy and probe settings do not depend on it.
type MachineClass string

const (
	ClassLaptop     MachineClass = "laptop"
	ClassDesktop    MachineClass = "desktop"
	ClassServerLike MachineClass = "server_like"
	ClassUnknown    MachineClass = "unknown"
)

// Profile is a snapshot of host telemetry collected at CollectedAtUnix.
type Profile struct {
	TotalMemoryMB     uint64             `json:"total_memory_mb"`
	AvailableMemoryMB uint64             `json:"available_memory_mb"`
	CPUCores          int                `json:"cpu_cores"`
	TotalDiskGB       uint64             `json:"total_disk_gb"`
	AvailableDiskGB   uint64             `json:"available_disk_gb"`
	UptimeSeconds     uint64             `json:"uptime_seconds"`
	Virtualization    VirtualizationKind `json:"virtualization"`
	VirtualizationTag string             `json:"virtualization_tag,omitempty"`
	Session           SessionKind        `json:"session"`
	MachineClass      MachineClass       `json:"machine_class"`
	CollectedAtUnix   int64              `json:"collected_at_ts"`
}

// Detector collects Profile snapshots. It holds no state between calls —
// each Collect is a fresh read of the live system, mirroring the original's
// SystemProfiler except gopsutil is queried fresh rather than cached and
// refreshed in place.
type Detector struct {
	rootMount string // filesystem mount point to report disk usage for
}

// NewDetector builds a Detector that reports disk usage for rootMount
// (typically "/").
func NewDetector(rootMount string) *Detector {
	if rootMount == "" {
		rootMount = "/"
	}
	return &Detector{rootMount: rootMount}
}

// Collect gathers a full Profile snapshot.
func (d *Detector) Collect(ctx context.Context) (Profile, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Profile{}, err
	}
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Profile{}, err
	}
	diskUsage, err := disk.UsageWithContext(ctx, d.rootMount)
	if err != nil {
		return Profile{}, err
	}
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Profile{}, err
	}

	virtKind, virtTag := classifyVirtualization(info.VirtualizationSystem, info.VirtualizationRole)
	session := detectSessionType()

	p := Profile{
		TotalMemoryMB:     vm.Total / (1024 * 1024),
		AvailableMemoryMB: vm.Available / (1024 * 1024),
		CPUCores:          cores,
		TotalDiskGB:       diskUsage.Total / (1024 * 1024 * 1024),
		AvailableDiskGB:   diskUsage.Free / (1024 * 1024 * 1024),
		UptimeSeconds:     info.Uptime,
		Virtualization:    virtKind,
		VirtualizationTag: virtTag,
		Session:           session,
		CollectedAtUnix:   time.Now().Unix(),
	}
	p.MachineClass = classifyMachine(p, hasBattery())
	return p, nil
}

func classifyVirtualization(system, role string) (VirtualizationKind, string) {
	if system == "" {
		return VirtualizationNone, ""
	}
	if role == "guest" {
		switch system {
		case "docker", "podman", "lxc", "openvz", "systemd-nspawn", "wsl":
			return VirtualizationContainer, system
		default:
			return VirtualizationVM, system
		}
	}
	return VirtualizationUnknown, system
}

// detectSessionType inspects environment variables in the same priority
// order as the original: SSH first, then a graphical session, then fall
// back to headless.
func detectSessionType() SessionKind {
	if _, ok := os.LookupEnv("SSH_CONNECTION"); ok {
		return SessionSSH
	}
	if sessionType, ok := os.LookupEnv("XDG_SESSION_TYPE"); ok {
		if sessionType == "tty" {
			return SessionConsole
		}
		return SessionDesktop
	}
	if _, ok := os.LookupEnv("DISPLAY"); ok {
		return SessionDesktop
	}
	if _, ok := os.LookupEnv("WAYLAND_DISPLAY"); ok {
		return SessionDesktop
	}
	return SessionHeadless
}

// hasBattery checks for /sys/class/power_supply/BAT* entries, the
// strongest laptop signal the original relies on.
func hasBattery() bool {
	entries, err := os.ReadDir("/sys/class/power_supply")
	if err != nil {
		return false
	}
	for _, e := range entries {
		if len(e.Name()) >= 3 && e.Name()[:3] == "BAT" {
			return true
		}
	}
	return false
}

func classifyMachine(p Profile, battery bool) MachineClass {
	switch {
	case battery:
		return ClassLaptop
	case p.Session == SessionDesktop:
		return ClassDesktop
	case p.UptimeSeconds > uint64((30 * 24 * time.Hour).Seconds()):
		return ClassServerLike
	case p.Session == SessionHeadless:
		return ClassServerLike
	default:
		return ClassUnknown
	}
}
