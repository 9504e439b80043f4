package router

// Route is what a Class resolves to: the probe plan, whether those probes
// alone suffice to answer via template (no model needed), and the domain tag
// used for team assignment and recipe signatures.
type Route struct {
	Class        Class
	Domain        string
	Probes        []string
	Deterministic bool
}

// routeTable is the fixed class -> route mapping. Every entry here is an
// allow-listed probe id from pkg/probe's catalog; the dispatcher rejects
// anything not present there regardless of what this table names.
var routeTable = map[Class]Route{
	ClassHelp: {Domain: "general", Probes: nil, Deterministic: true},

	ClassSystemTriage: {
		Domain:        "general",
		Probes:        []string{"journal_errors", "journal_warnings", "failed_units", "boot_time"},
		Deterministic: true,
	},
	ClassSystemHealthSummary: {
		Domain:        "general",
		Probes:        []string{"journal_errors", "failed_units", "disk_usage", "memory_info", "boot_time"},
		Deterministic: true,
	},
	ClassSystemSlow: {
		Domain:        "performance",
		Probes:        []string{"top_cpu_processes", "top_memory_processes", "memory_info", "disk_usage"},
		Deterministic: false,
	},

	ClassInstalledToolCheck:        {Domain: "general", Probes: []string{"which_tool"}, Deterministic: true},
	ClassHardwareAudio:             {Domain: "hardware", Probes: []string{"audio_devices"}, Deterministic: true},
	ClassCPUTemp:                   {Domain: "hardware", Probes: []string{"cpu_temperature"}, Deterministic: true},
	ClassCPUCores:                  {Domain: "performance", Probes: []string{"cpu_info"}, Deterministic: true},
	ClassPackageCount:              {Domain: "general", Probes: []string{"package_count"}, Deterministic: true},
	ClassMemoryFree:                {Domain: "performance", Probes: []string{"memory_info"}, Deterministic: true},
	ClassMemoryUsage:               {Domain: "performance", Probes: []string{"memory_info"}, Deterministic: true},
	ClassDiskUsage:                 {Domain: "storage", Probes: []string{"disk_usage"}, Deterministic: true},
	ClassServiceStatus:             {Domain: "services", Probes: []string{"service_status"}, Deterministic: true},
	ClassTopMemoryProcesses:        {Domain: "performance", Probes: []string{"top_memory_processes"}, Deterministic: true},
	ClassTopCPUProcesses:           {Domain: "performance", Probes: []string{"top_cpu_processes"}, Deterministic: true},
	ClassCPUInfo:                   {Domain: "hardware", Probes: []string{"cpu_info"}, Deterministic: true},
	ClassRAMInfo:                   {Domain: "hardware", Probes: []string{"memory_info"}, Deterministic: true},
	ClassGPUInfo:                   {Domain: "hardware", Probes: []string{"gpu_info"}, Deterministic: true},
	ClassDiskSpace:                 {Domain: "storage", Probes: []string{"disk_usage", "lsblk"}, Deterministic: true},
	ClassNetworkInterfaces:         {Domain: "network", Probes: []string{"network_interfaces"}, Deterministic: true},
	ClassBootTimeStatus:            {Domain: "performance", Probes: []string{"boot_time"}, Deterministic: true},
	ClassInstalledPackagesOverview: {Domain: "general", Probes: []string{"package_count"}, Deterministic: true},
	ClassAppAlternatives:           {Domain: "desktop", Probes: nil, Deterministic: false},

	ClassUnknown: {Domain: "general", Probes: nil, Deterministic: false},
}

// Resolve returns the fixed Route for a Class. Every Class the table omits
// falls back to the unknown route rather than panicking, since new classes
// should be addable to Classify without this lookup becoming a crash site.
func Resolve(class Class) Route {
	if r, ok := routeTable[class]; ok {
		r.Class = class
		return r
	}
	return Route{Class: ClassUnknown, Domain: "general", Deterministic: false}
}
