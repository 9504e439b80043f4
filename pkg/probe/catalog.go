// Package probe implements the allow-listed static probe catalog: every
// probe id maps to a single fixed command (or a catalog-declared pipeline),
// never to user-supplied shell text.
package probe

import (
	"time"

	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/probe/parsers"
)

// ParseFunc turns a probe's redacted stdout into a typed value the
// Synthesizer's deterministic formatters can render without re-parsing text.
type ParseFunc func(probeID, stdout string) (any, error)

// Definition is one catalog entry. Exactly one of Exec or ShellPipeline is
// set: Exec runs a single executable with static arguments (no shell
// involved at all); ShellPipeline runs a catalog-fixed command line through
// "sh -c" for the rare case a probe genuinely needs a pipe (e.g. "| head").
// Both are compile-time constants in this file — neither is ever built from
// a user-supplied query string.
type Definition struct {
	ID             string
	Exec           []string
	ShellPipeline  string
	ExpectedKind   evidence.Kind
	Timeout        time.Duration
	MaxOutputBytes int
	Parser         ParseFunc
}

// defaultCatalog is the full allow-list. Every probe id referenced by
// pkg/router's route table must have an entry here.
func defaultCatalog() map[string]Definition {
	entries := []Definition{
		{
			ID:           "journal_errors",
			Exec:         []string{"journalctl", "-p", "err", "-n", "50", "--no-pager"},
			ExpectedKind: evidence.KindJournal,
			Timeout:      3 * time.Second,
		},
		{
			ID:           "journal_warnings",
			Exec:         []string{"journalctl", "-p", "warning", "-n", "50", "--no-pager"},
			ExpectedKind: evidence.KindJournal,
			Timeout:      3 * time.Second,
		},
		{
			ID:           "failed_units",
			Exec:         []string{"systemctl", "--failed", "--no-legend"},
			ExpectedKind: evidence.KindService,
			Timeout:      2 * time.Second,
		},
		{
			ID:           "boot_time",
			Exec:         []string{"uptime", "-s"},
			ExpectedKind: evidence.KindBoot,
			Timeout:      2 * time.Second,
		},
		{
			ID:           "disk_usage",
			Exec:         []string{"df", "-h"},
			ExpectedKind: evidence.KindDisk,
			Timeout:      2 * time.Second,
		},
		{
			ID:           "memory_info",
			Exec:         []string{"free", "-b"},
			ExpectedKind: evidence.KindMemory,
			Timeout:      2 * time.Second,
		},
		{
			ID:            "top_cpu_processes",
			ShellPipeline: "ps -eo pid,comm,%cpu --sort=-%cpu --no-headers | head -10",
			ExpectedKind:  evidence.KindProcess,
			Timeout:       3 * time.Second,
		},
		{
			ID:            "top_memory_processes",
			ShellPipeline: "ps -eo pid,comm,%mem --sort=-%mem --no-headers | head -10",
			ExpectedKind:  evidence.KindProcess,
			Timeout:       3 * time.Second,
		},
		{
			ID:           "cpu_info",
			Exec:         []string{"lscpu"},
			ExpectedKind: evidence.KindCPU,
			Timeout:      2 * time.Second,
		},
		{
			ID:            "gpu_info",
			ShellPipeline: "lspci -nnk | grep -A3 -i vga",
			ExpectedKind:  evidence.KindGPU,
			Timeout:       3 * time.Second,
		},
		{
			ID:           "network_interfaces",
			Exec:         []string{"ip", "-brief", "addr"},
			ExpectedKind: evidence.KindNetwork,
			Timeout:      2 * time.Second,
		},
		{
			ID:            "package_count",
			ShellPipeline: "pacman -Q | wc -l",
			ExpectedKind:  evidence.KindPackage,
			Timeout:       5 * time.Second,
		},
		{
			ID:           "service_status",
			Exec:         []string{"systemctl", "list-units", "--type=service", "--no-legend"},
			ExpectedKind: evidence.KindService,
			Timeout:      3 * time.Second,
		},
		{
			ID:            "which_tool",
			ShellPipeline: "which bash git python3 docker podman 2>/dev/null",
			ExpectedKind:  evidence.KindPackage,
			Timeout:       2 * time.Second,
		},
		{
			ID:            "audio_devices",
			ShellPipeline: "pactl list short sinks 2>/dev/null || aplay -l",
			ExpectedKind:  evidence.KindAudio,
			Timeout:       3 * time.Second,
		},
		{
			ID:           "cpu_temperature",
			Exec:         []string{"sensors"},
			ExpectedKind: evidence.KindCPU,
			Timeout:      2 * time.Second,
		},
		{
			ID:           "lsblk",
			Exec:         []string{"lsblk"},
			ExpectedKind: evidence.KindFilesystem,
			Timeout:      2 * time.Second,
			Parser:       parseLsblk,
		},
	}

	catalog := make(map[string]Definition, len(entries))
	for _, e := range entries {
		catalog[e.ID] = e
	}
	return catalog
}

func parseLsblk(probeID, stdout string) (any, error) {
	return parsers.ParseLsblk(probeID, stdout)
}

// EvidenceKindsFor reports the distinct evidence kinds a probe plan is
// expected to produce, in plan order with duplicates removed. Callers (the
// translator, building a TranslationResult) use this to populate the
// EvidenceKinds a route requires without duplicating the catalog.
func EvidenceKindsFor(probeIDs []string) []evidence.Kind {
	catalog := defaultCatalog()
	seen := make(map[evidence.Kind]bool, len(probeIDs))
	kinds := make([]evidence.Kind, 0, len(probeIDs))
	for _, id := range probeIDs {
		def, ok := catalog[id]
		if !ok || seen[def.ExpectedKind] {
			continue
		}
		seen[def.ExpectedKind] = true
		kinds = append(kinds, def.ExpectedKind)
	}
	return kinds
}
