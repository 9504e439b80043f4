// Package evidence holds the per-ticket EvidenceBlock (append-only probe
// results) and the persistent KnowledgeCache (local man page and Arch Wiki
// excerpts). Nothing in this package reaches the network at request time.
package evidence

// Kind classifies what a probe's evidence is about, independent of which
// specific probe produced it. The Synthesizer and Verifier use this to check
// a route's required evidence kinds are present.
type Kind string

const (
	KindMemory      Kind = "memory"
	KindDisk        Kind = "disk"
	KindCPU         Kind = "cpu"
	KindGPU         Kind = "gpu"
	KindNetwork     Kind = "network"
	KindService     Kind = "service"
	KindJournal     Kind = "journal"
	KindPackage     Kind = "package"
	KindBoot        Kind = "boot"
	KindAudio       Kind = "audio"
	KindProcess     Kind = "process"
	KindFilesystem  Kind = "filesystem"
)

// Item is a single probe result: what ran, whether it succeeded, and its
// redacted output. Probe order is preserved in the Item's ID (E1 is the
// first probe in the plan) regardless of completion order.
type Item struct {
	ID         string // "E1", "E2", ...
	ProbeID    string
	Kind       Kind
	Command    []string
	ExitCode   int
	Success    bool
	ReasonCode string // set when Success is false (timeout, not-found, ...)
	Stdout     string // redacted
	Stderr     string // redacted
	TimingMS   int64
	Parsed     any // probe-specific parsed fact, nil if no parser applies
}
