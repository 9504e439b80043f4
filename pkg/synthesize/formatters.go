package synthesize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/probe/parsers"
	"github.com/jjgarcianorway/annad/pkg/router"
)

// Formatter renders one route class's answer from a ticket's evidence block
// and the user's original query text, with no model in the hot path. It
// returns ok=false when the declared probe's evidence is missing or
// unparseable, so the caller can fall back. Most formatters answer purely
// from evidence and ignore query; formatServiceStatus uses it to find which
// unit the user actually asked about.
type Formatter func(ev *evidence.Block, query string) (answer string, ok bool)

// withoutQuery adapts a formatter that never needs the query text to the
// Formatter signature.
func withoutQuery(f func(ev *evidence.Block) (string, bool)) Formatter {
	return func(ev *evidence.Block, _ string) (string, bool) { return f(ev) }
}

// formatters maps route classes to their pure formatters. Classes absent
// from this table (help, system_triage, system_health_summary, system_slow,
// app_alternatives, unknown) have no formatter, including the three that
// the router marks deterministic; FormatDeterministic reports them as not
// handled.
var formatters = map[router.Class]Formatter{
	router.ClassCPUInfo:                   withoutQuery(formatCPUInfo),
	router.ClassCPUCores:                  withoutQuery(formatCPUInfo),
	router.ClassRAMInfo:                   withoutQuery(formatMemoryInfo),
	router.ClassMemoryFree:                withoutQuery(formatMemoryInfo),
	router.ClassMemoryUsage:               withoutQuery(formatMemoryInfo),
	router.ClassDiskUsage:                 withoutQuery(formatDiskUsage),
	router.ClassDiskSpace:                 withoutQuery(formatDiskSpace),
	router.ClassGPUInfo:                   withoutQuery(formatGPUInfo),
	router.ClassNetworkInterfaces:         withoutQuery(formatNetworkInterfaces),
	router.ClassTopCPUProcesses:           withoutQuery(formatTopProcesses("top_cpu_processes", "CPU")),
	router.ClassTopMemoryProcesses:        withoutQuery(formatTopProcesses("top_memory_processes", "memory")),
	router.ClassServiceStatus:             formatServiceStatus,
	router.ClassBootTimeStatus:            withoutQuery(formatBootTime),
	router.ClassPackageCount:              withoutQuery(formatPackageCount),
	router.ClassInstalledPackagesOverview: withoutQuery(formatPackageCount),
	router.ClassInstalledToolCheck:        withoutQuery(formatWhichTool),
	router.ClassHardwareAudio:             withoutQuery(formatAudioDevices),
	router.ClassCPUTemp:                   withoutQuery(formatCPUTemperature),
}

// FormatDeterministic looks up and runs the formatter for a route class. The
// second return reports whether a formatter exists for the class at all
// (distinct from whether it could produce an answer from the evidence).
func FormatDeterministic(class router.Class, ev *evidence.Block, query string) (answer string, handled bool) {
	f, ok := formatters[class]
	if !ok {
		return "", false
	}
	out, ok := f(ev, query)
	if !ok {
		return noEvidence(string(class)), true
	}
	return out, true
}

func findByProbe(ev *evidence.Block, probeID string) (evidence.Item, bool) {
	for _, item := range ev.All() {
		if item.ProbeID == probeID && item.Success {
			return item, true
		}
	}
	return evidence.Item{}, false
}

var lscpuModelRe = regexp.MustCompile(`(?m)^Model name:\s*(.+)$`)
var lscpuCoresRe = regexp.MustCompile(`(?m)^CPU\(s\):\s*(\d+)$`)

func formatCPUInfo(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "cpu_info")
	if !ok {
		return "", false
	}
	model := "unknown model"
	if m := lscpuModelRe.FindStringSubmatch(item.Stdout); len(m) == 2 {
		model = strings.TrimSpace(m[1])
	}
	cores := "unknown"
	if m := lscpuCoresRe.FindStringSubmatch(item.Stdout); len(m) == 2 {
		cores = m[1]
	}
	summary := fmt.Sprintf("CPU is %s with %s logical cores.", model, cores)
	details := cite(fmt.Sprintf("Model name: %s, CPU(s): %s", model, cores), item.ID)
	return canonical(summary, details, "lscpu"), true
}

var freeLineRe = regexp.MustCompile(`(?m)^Mem:\s+(\d+)\s+(\d+)\s+(\d+)`)

func formatMemoryInfo(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "memory_info")
	if !ok {
		return "", false
	}
	m := freeLineRe.FindStringSubmatch(item.Stdout)
	if m == nil {
		return "", false
	}
	totalB, _ := strconv.ParseFloat(m[1], 64)
	usedB, _ := strconv.ParseFloat(m[2], 64)
	freeB, _ := strconv.ParseFloat(m[3], 64)
	const gib = 1024 * 1024 * 1024
	totalGB, usedGB, freeGB := totalB/gib, usedB/gib, freeB/gib

	summary := fmt.Sprintf("%.1f GB total RAM, %.1f GB used, %.1f GB free.", totalGB, usedGB, freeGB)
	details := cite(fmt.Sprintf("free -b: total=%.0f used=%.0f free=%.0f bytes", totalB, usedB, freeB), item.ID)
	return canonical(summary, details, "free -b"), true
}

func formatDiskUsage(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "disk_usage")
	if !ok {
		return "", false
	}
	rows, critical, warning := parseDfRows(item.Stdout)
	if len(rows) == 0 {
		return "", false
	}
	var details strings.Builder
	for _, r := range rows {
		details.WriteString(cite(r, item.ID))
		details.WriteString("\n")
	}
	summary := fmt.Sprintf("%d filesystem(s) reported.", len(rows))
	if critical > 0 {
		summary += fmt.Sprintf(" %d at >=95%% capacity (critical).", critical)
	}
	if warning > 0 {
		summary += fmt.Sprintf(" %d at >=85%% capacity (warning).", warning)
	}
	return canonical(summary, details.String(), "df -h"), true
}

// formatDiskSpace additionally folds in the lsblk block-device tree when
// present, since ClassDiskSpace's route requests both probes.
func formatDiskSpace(ev *evidence.Block) (string, bool) {
	answer, ok := formatDiskUsage(ev)
	if !ok {
		return "", false
	}
	lsblkItem, ok := findByProbe(ev, "lsblk")
	if !ok {
		return answer, true
	}
	devices, perr := parsers.ParseLsblk("lsblk", lsblkItem.Stdout)
	if perr != nil || len(devices) == 0 {
		return answer, true
	}
	var extra strings.Builder
	for _, d := range devices {
		line := fmt.Sprintf("%s (%s, %s)", d.Name, d.DeviceType, humanBytes(d.SizeBytes))
		if len(d.Mountpoints) > 0 {
			line += " mounted at " + strings.Join(d.Mountpoints, ", ")
		}
		extra.WriteString(cite(line, lsblkItem.ID))
		extra.WriteString("\n")
	}
	return strings.Replace(answer, "[COMMANDS]", extra.String()+"[COMMANDS]", 1), true
}

var dfRowRe = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\d+)%\s+(\S+)`)

func parseDfRows(stdout string) (rows []string, critical, warning int) {
	for _, line := range strings.Split(stdout, "\n") {
		m := dfRowRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		pct, _ := strconv.Atoi(m[5])
		status := ""
		switch {
		case pct >= 95:
			status = " CRITICAL"
			critical++
		case pct >= 85:
			status = " warning"
			warning++
		}
		rows = append(rows, fmt.Sprintf("%s: %s used of %s (%d%%%s), mounted at %s", m[1], m[3], m[2], pct, status, m[6]))
	}
	return rows, critical, warning
}

func formatGPUInfo(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "gpu_info")
	if !ok || strings.TrimSpace(item.Stdout) == "" {
		return canonical("No dedicated GPU detected.", "lspci reported no VGA-class controller.", "lspci -nnk"), true
	}
	first := strings.SplitN(strings.TrimSpace(item.Stdout), "\n", 2)[0]
	summary := fmt.Sprintf("GPU: %s", strings.TrimSpace(first))
	details := cite(strings.TrimSpace(item.Stdout), item.ID)
	return canonical(summary, details, "lspci -nnk"), true
}

var ipAddrLineRe = regexp.MustCompile(`^(\S+)\s+(UP|DOWN|UNKNOWN)\s+(\S+)?`)

func formatNetworkInterfaces(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "network_interfaces")
	if !ok {
		return "", false
	}
	var rows []string
	for _, line := range strings.Split(item.Stdout, "\n") {
		m := ipAddrLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		addr := "-"
		if len(m) > 3 && m[3] != "" {
			addr = m[3]
		}
		rows = append(rows, fmt.Sprintf("%s: %s (%s)", m[1], addr, m[2]))
	}
	if len(rows) == 0 {
		return "", false
	}
	var details strings.Builder
	for _, r := range rows {
		details.WriteString(cite(r, item.ID))
		details.WriteString("\n")
	}
	return canonical(fmt.Sprintf("%d network interface(s) found.", len(rows)), details.String(), "ip -brief addr"), true
}

func formatTopProcesses(probeID, metric string) Formatter {
	return func(ev *evidence.Block) (string, bool) {
		item, ok := findByProbe(ev, probeID)
		if !ok {
			return "", false
		}
		var rows []string
		for _, line := range strings.Split(strings.TrimSpace(item.Stdout), "\n") {
			f := strings.Fields(strings.TrimSpace(line))
			if len(f) < 3 {
				continue
			}
			rows = append(rows, fmt.Sprintf("pid %s: %s at %s%% %s", f[0], f[1], f[2], metric))
		}
		if len(rows) == 0 {
			return "", false
		}
		var details strings.Builder
		for _, r := range rows {
			details.WriteString(cite(r, item.ID))
			details.WriteString("\n")
		}
		return canonical(fmt.Sprintf("Top %d process(es) by %s usage.", len(rows), metric), details.String(), ""), true
	}
}

// serviceUnitLineRe matches one "systemctl list-units --type=service
// --no-legend" row: unit name, load state, active state, sub state, then
// the free-text description.
var serviceUnitLineRe = regexp.MustCompile(`^(\S+)\.service\s+(\S+)\s+(\S+)\s+(\S+)`)

func formatServiceStatus(ev *evidence.Block, query string) (string, bool) {
	item, ok := findByProbe(ev, "service_status")
	if !ok {
		return "", false
	}
	lines := strings.Split(strings.TrimSpace(item.Stdout), "\n")

	if unit, line, found := findNamedServiceLine(query, lines); found {
		m := serviceUnitLineRe.FindStringSubmatch(strings.TrimSpace(line))
		summary := fmt.Sprintf("%s is %s (%s).", unit, m[3], m[4])
		return canonical(summary, cite(line, item.ID), "systemctl is-active "+unit), true
	}

	return canonical(fmt.Sprintf("%d service unit(s) reported.", len(lines)), cite(item.Stdout, item.ID), "systemctl list-units --type=service"), true
}

// findNamedServiceLine looks for a unit name mentioned in query among the
// listed service rows, so "is sshd running?" answers about sshd specifically
// rather than the whole unit list. The probe catalog runs a fixed, unfiltered
// listing command, so the query-to-unit match happens here in synthesis.
func findNamedServiceLine(query string, lines []string) (unit, line string, found bool) {
	words := strings.Fields(strings.ToLower(query))
	for _, l := range lines {
		m := serviceUnitLineRe.FindStringSubmatch(strings.TrimSpace(l))
		if m == nil {
			continue
		}
		name := strings.ToLower(m[1])
		for _, w := range words {
			if strings.TrimSuffix(w, ".service") == name {
				return m[1], l, true
			}
		}
	}
	return "", "", false
}

func formatBootTime(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "boot_time")
	if !ok {
		return "", false
	}
	return canonical(fmt.Sprintf("System booted at %s.", strings.TrimSpace(item.Stdout)), cite(item.Stdout, item.ID), "uptime -s"), true
}

func formatPackageCount(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "package_count")
	if !ok {
		return "", false
	}
	count := strings.TrimSpace(item.Stdout)
	return canonical(fmt.Sprintf("%s package(s) installed.", count), cite(count, item.ID), "pacman -Q | wc -l"), true
}

func formatWhichTool(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "which_tool")
	if !ok {
		return "", false
	}
	found := strings.Split(strings.TrimSpace(item.Stdout), "\n")
	return canonical(fmt.Sprintf("%d of the checked tools are installed.", len(found)), cite(item.Stdout, item.ID), ""), true
}

func formatAudioDevices(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "audio_devices")
	if !ok || strings.TrimSpace(item.Stdout) == "" {
		return canonical("No audio devices detected.", "pactl/aplay returned no sinks.", ""), true
	}
	return canonical("Audio device(s) detected.", cite(item.Stdout, item.ID), ""), true
}

func formatCPUTemperature(ev *evidence.Block) (string, bool) {
	item, ok := findByProbe(ev, "cpu_temperature")
	if !ok {
		return "", false
	}
	return canonical("CPU temperature sensors reported below.", cite(item.Stdout, item.ID), "sensors"), true
}

func humanBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
