// Package router implements Anna's deterministic query classifier: a pure
// function from free-text query to a fixed route class, with no model call
// and no probe execution. Matching is ordered keyword precedence, most
// specific class first.
package router

import "strings"

// Class is one of the fixed route classes a query can resolve to.
type Class string

const (
	ClassHelp                      Class = "help"
	ClassSystemTriage               Class = "system_triage"
	ClassSystemHealthSummary        Class = "system_health_summary"
	ClassSystemSlow                 Class = "system_slow"
	ClassInstalledToolCheck         Class = "installed_tool_check"
	ClassHardwareAudio              Class = "hardware_audio"
	ClassCPUTemp                    Class = "cpu_temp"
	ClassCPUCores                   Class = "cpu_cores"
	ClassPackageCount               Class = "package_count"
	ClassMemoryFree                 Class = "memory_free"
	ClassMemoryUsage                Class = "memory_usage"
	ClassDiskUsage                  Class = "disk_usage"
	ClassServiceStatus              Class = "service_status"
	ClassTopMemoryProcesses         Class = "top_memory_processes"
	ClassTopCPUProcesses            Class = "top_cpu_processes"
	ClassCPUInfo                    Class = "cpu_info"
	ClassRAMInfo                    Class = "ram_info"
	ClassGPUInfo                    Class = "gpu_info"
	ClassDiskSpace                  Class = "disk_space"
	ClassNetworkInterfaces          Class = "network_interfaces"
	ClassBootTimeStatus             Class = "boot_time_status"
	ClassInstalledPackagesOverview  Class = "installed_packages_overview"
	ClassAppAlternatives            Class = "app_alternatives"
	ClassUnknown                    Class = "unknown"
)

// greetingPatterns are stripped from the query before the keyword-specific
// passes run, so "hey anna, any errors?" matches the same class as
// "any errors".
var greetingPatterns = []string{
	"hello", "hi ", "hey ", "good morning", "good afternoon", "good evening",
	"anna", ":)", ":(", ";)", ":d", ":p", "!", "?", "…", "...",
}

// stripGreetings lowercases the query and removes conversational filler so
// downstream keyword checks see only the substantive request.
func stripGreetings(query string) string {
	q := strings.ToLower(query)
	for _, p := range greetingPatterns {
		q = strings.ReplaceAll(q, p, " ")
	}
	return strings.Join(strings.Fields(q), " ")
}

// Classify maps a query to a Class using ordered keyword precedence: more
// specific classes are checked before the general classes they would
// otherwise be swallowed by. Same input always yields the same output — no
// model call, no randomness, no probe execution.
func Classify(query string) Class {
	q := strings.ToLower(query)
	stripped := stripGreetings(query)

	switch {
	case strings.TrimSpace(q) == "help",
		strings.Contains(q, "what can you do"),
		strings.Contains(q, "how do i use"):
		return ClassHelp
	}

	if strings.Contains(stripped, "any errors") ||
		strings.Contains(stripped, "any problems") ||
		strings.Contains(stripped, "any issues") ||
		strings.Contains(stripped, "any warnings") ||
		strings.Contains(stripped, "errors so far") ||
		strings.Contains(stripped, "problems so far") ||
		strings.Contains(stripped, "what's wrong") ||
		strings.Contains(stripped, "whats wrong") ||
		strings.Contains(stripped, "is everything ok") ||
		strings.Contains(stripped, "is everything okay") ||
		strings.Contains(stripped, "how is my computer") ||
		strings.Contains(stripped, "how's my computer") ||
		strings.Contains(stripped, "computer doing") ||
		strings.Contains(q, "health") ||
		strings.TrimSpace(q) == "errors" ||
		strings.TrimSpace(q) == "warnings" ||
		strings.TrimSpace(q) == "problems" ||
		strings.TrimSpace(q) == "status" ||
		strings.TrimSpace(q) == "health" {
		return ClassSystemTriage
	}

	if strings.Contains(q, "summary") ||
		strings.Contains(q, "status report") ||
		strings.Contains(q, "overview") ||
		strings.Contains(q, "full report") ||
		strings.Contains(q, "system status") ||
		strings.Contains(stripped, "how is the system") ||
		strings.Contains(stripped, "how's the system") ||
		strings.Contains(stripped, "check my system") ||
		strings.Contains(stripped, "check the system") ||
		strings.Contains(stripped, "system check") ||
		strings.TrimSpace(q) == "report" {
		return ClassSystemHealthSummary
	}

	if strings.Contains(q, "slow") || strings.Contains(q, "sluggish") || strings.Contains(q, "laggy") {
		return ClassSystemSlow
	}

	isHardwareQuery := strings.Contains(q, "cpu") || strings.Contains(q, "ram") ||
		strings.Contains(q, "memory") || strings.Contains(q, "gpu") ||
		strings.Contains(q, "disk") || strings.Contains(q, "core")
	if !isHardwareQuery && (
		(strings.Contains(q, "do i have") && (strings.Contains(q, "nano") || strings.Contains(q, "vim") || strings.Contains(q, "git") || strings.Contains(q, "emacs"))) ||
			(strings.Contains(q, "is") && strings.Contains(q, "installed")) ||
			(strings.Contains(q, "have") && strings.Contains(q, "installed"))) {
		return ClassInstalledToolCheck
	}

	if strings.Contains(q, "sound card") ||
		strings.Contains(q, "audio device") ||
		strings.Contains(q, "audio card") ||
		strings.Contains(q, "sound device") ||
		(strings.Contains(q, "audio") && strings.Contains(q, "hardware")) {
		return ClassHardwareAudio
	}

	if strings.Contains(q, "temperature") ||
		strings.Contains(q, "temp") ||
		strings.Contains(q, "how hot") ||
		strings.Contains(q, "thermal") ||
		strings.Contains(q, "sensors") {
		return ClassCPUTemp
	}

	if (strings.Contains(q, "how many") && (strings.Contains(q, "core") || strings.Contains(q, "thread"))) ||
		strings.Contains(q, "core count") ||
		strings.Contains(q, "thread count") ||
		strings.Contains(q, "number of cores") ||
		strings.Contains(q, "number of threads") {
		return ClassCPUCores
	}

	if (strings.Contains(q, "how many") && strings.Contains(q, "package")) ||
		strings.Contains(q, "package count") ||
		strings.Contains(q, "count packages") {
		return ClassPackageCount
	}

	if (strings.Contains(q, "free") && strings.Contains(q, "ram")) ||
		(strings.Contains(q, "available") && strings.Contains(q, "ram")) ||
		strings.Contains(q, "how much free ram") ||
		strings.Contains(q, "how much available ram") {
		return ClassMemoryFree
	}

	if (strings.Contains(q, "memory") && strings.Contains(q, "usage")) ||
		(strings.Contains(q, "memory") && strings.Contains(q, "used")) ||
		strings.Contains(q, "free memory") ||
		strings.Contains(q, "available memory") {
		return ClassMemoryUsage
	}

	if strings.Contains(q, "disk usage") || strings.Contains(q, "filesystem usage") {
		return ClassDiskUsage
	}

	if (strings.Contains(q, "running") && !strings.Contains(q, "running out")) ||
		strings.Contains(q, "service status") ||
		strings.Contains(q, "systemd") ||
		(strings.Contains(q, "status") && strings.Contains(q, "service")) ||
		(strings.Contains(q, "is") && (strings.Contains(q, "active") || strings.Contains(q, "enabled"))) {
		return ClassServiceStatus
	}

	if (strings.Contains(q, "process") && (strings.Contains(q, "memory") || strings.Contains(q, "ram"))) ||
		strings.Contains(q, "memory hog") ||
		strings.Contains(q, "top memory") ||
		strings.Contains(q, "most memory") ||
		strings.Contains(q, "what's using memory") ||
		strings.Contains(q, "what is using memory") {
		return ClassTopMemoryProcesses
	}

	if (strings.Contains(q, "process") && strings.Contains(q, "cpu")) ||
		strings.Contains(q, "cpu hog") ||
		strings.Contains(q, "top cpu") ||
		strings.Contains(q, "most cpu") ||
		strings.Contains(q, "what's using cpu") ||
		strings.Contains(q, "what is using cpu") {
		return ClassTopCPUProcesses
	}

	if strings.Contains(q, "cpu") || strings.Contains(q, "processor") || strings.Contains(q, "core") {
		return ClassCPUInfo
	}

	if strings.Contains(q, "ram") || (strings.Contains(q, "memory") && !strings.Contains(q, "process")) {
		return ClassRAMInfo
	}

	if strings.Contains(q, "gpu") || strings.Contains(q, "graphics") || strings.Contains(q, "vram") {
		return ClassGPUInfo
	}

	if strings.Contains(q, "disk") ||
		strings.Contains(q, "space") ||
		strings.Contains(q, "storage") ||
		strings.Contains(q, "filesystem") ||
		strings.Contains(q, "mount") ||
		strings.Contains(q, "full") {
		return ClassDiskSpace
	}

	if strings.Contains(q, "network") ||
		strings.Contains(q, "interface") ||
		strings.Contains(q, "ip ") ||
		strings.Contains(q, "ip?") ||
		strings.Contains(q, "ips") ||
		strings.Contains(q, "wifi") ||
		strings.Contains(q, "ethernet") ||
		strings.Contains(q, "wlan") {
		return ClassNetworkInterfaces
	}

	if strings.Contains(q, "boot time") ||
		strings.Contains(q, "bootup") ||
		strings.Contains(q, "startup time") ||
		strings.Contains(q, "how long to boot") ||
		strings.Contains(q, "how fast does it boot") ||
		(strings.Contains(q, "boot") && strings.Contains(q, "seconds")) {
		return ClassBootTimeStatus
	}

	if strings.Contains(q, "how many packages") ||
		strings.Contains(q, "packages installed") ||
		strings.Contains(q, "what's installed") ||
		strings.Contains(q, "what is installed") ||
		strings.Contains(q, "list packages") ||
		strings.Contains(q, "installed software") ||
		(strings.Contains(q, "packages") && strings.Contains(q, "count")) {
		return ClassInstalledPackagesOverview
	}

	if strings.Contains(q, "alternative to") ||
		strings.Contains(q, "alternatives to") ||
		strings.Contains(q, "instead of") ||
		strings.Contains(q, "replacement for") ||
		strings.Contains(q, "similar to") ||
		strings.Contains(q, "like") ||
		(strings.Contains(q, "what") && strings.Contains(q, "use") && strings.Contains(q, "instead")) {
		return ClassAppAlternatives
	}

	return ClassUnknown
}
