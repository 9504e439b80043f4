package probe

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"

	"github.com/jjgarcianorway/annad/pkg/config"
	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/masking"
)

// Dispatcher executes a probe plan concurrently, bounded by a configurable
// parallelism, and returns the populated EvidenceBlock. It satisfies
// pkg/ticket's Prober interface.
type Dispatcher struct {
	catalog        map[string]Definition
	masker         *masking.Service
	maxConcurrent  int
	defaultTimeout time.Duration
	maxOutputBytes int
}

// NewDispatcher builds a Dispatcher over the full static catalog.
func NewDispatcher(cfg config.ProbeConfig, masker *masking.Service) *Dispatcher {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = 5000
	}
	maxBytes := cfg.MaxOutputBytes
	if maxBytes <= 0 {
		maxBytes = 64 * 1024
	}
	return &Dispatcher{
		catalog:        defaultCatalog(),
		masker:         masker,
		maxConcurrent:  maxConcurrent,
		defaultTimeout: time.Duration(timeout) * time.Millisecond,
		maxOutputBytes: maxBytes,
	}
}

// Run executes every probe id in the plan concurrently (bounded by
// maxConcurrent) and assembles the results into an EvidenceBlock in plan
// order, regardless of which probe actually finished first.
func (d *Dispatcher) Run(ctx context.Context, probeIDs []string) (*evidence.Block, error) {
	block := evidence.NewBlock()
	results := make([]evidence.Item, len(probeIDs))

	sem := make(chan struct{}, d.maxConcurrent)
	var wg sync.WaitGroup
	for i, id := range probeIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = d.executeByID(ctx, id)
		}(i, id)
	}
	wg.Wait()

	for _, item := range results {
		block.Append(item)
	}
	return block, nil
}

func (d *Dispatcher) executeByID(ctx context.Context, id string) evidence.Item {
	def, ok := d.catalog[id]
	if !ok {
		return evidence.Item{ProbeID: id, Success: false, ReasonCode: "unknown_probe"}
	}
	return d.execute(ctx, def)
}

func (d *Dispatcher) execute(ctx context.Context, def Definition) evidence.Item {
	timeout := def.Timeout
	if timeout <= 0 {
		timeout = d.defaultTimeout
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	var commandDisplay []string
	if def.ShellPipeline != "" {
		cmd = exec.CommandContext(sctx, "sh", "-c", def.ShellPipeline)
		commandDisplay = []string{"sh", "-c", def.ShellPipeline}
	} else {
		cmd = exec.CommandContext(sctx, def.Exec[0], def.Exec[1:]...)
		commandDisplay = def.Exec
	}

	maxBytes := def.MaxOutputBytes
	if maxBytes <= 0 {
		maxBytes = d.maxOutputBytes
	}
	outBuf := &boundedBuffer{max: maxBytes}
	errBuf := &boundedBuffer{max: maxBytes}
	cmd.Stdout = outBuf
	cmd.Stderr = errBuf

	start := time.Now()
	runErr := cmd.Run()
	timingMS := time.Since(start).Milliseconds()

	exitCode := 0
	success := runErr == nil
	reasonCode := ""
	switch {
	case runErr == nil:
	case sctx.Err() == context.DeadlineExceeded:
		reasonCode = "timeout"
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
			reasonCode = "nonzero_exit"
		} else {
			reasonCode = "exec_error"
		}
	}

	stdout, stderr := d.masker.RedactProbeOutput(outBuf.String(), errBuf.String())

	var parsed any
	if success && def.Parser != nil {
		if p, perr := def.Parser(def.ID, stdout); perr == nil {
			parsed = p
		}
	}

	return evidence.Item{
		ProbeID:    def.ID,
		Kind:       def.ExpectedKind,
		Command:    commandDisplay,
		ExitCode:   exitCode,
		Success:    success,
		ReasonCode: reasonCode,
		Stdout:     stdout,
		Stderr:     stderr,
		TimingMS:   timingMS,
		Parsed:     parsed,
	}
}

// boundedBuffer caps how much a probe's stdout/stderr can grow, so a runaway
// probe can't exhaust daemon memory. Writes past the cap are silently
// dropped; the probe's exit code and timing are unaffected.
type boundedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - b.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		p = p[:remaining]
	}
	return b.buf.Write(p)
}

func (b *boundedBuffer) String() string { return b.buf.String() }
