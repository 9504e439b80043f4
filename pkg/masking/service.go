// Package masking redacts sensitive data from probe output before it is
// written to an evidence block, the transcript, or a recipe on disk.
package masking

import "log/slog"

// redactionNotice replaces probe output that could not be safely redacted.
// Anna's redaction rule is fail-closed: evidence never reaches storage or an
// LLM prompt unredacted, even if the redaction pass itself errors out.
const redactionNotice = "[REDACTED: data masking failure — probe output could not be safely processed]"

// Service applies the fixed redaction catalog to probe output. It is
// stateless aside from its compiled patterns and safe for concurrent use
// across probe workers.
type Service struct {
	patterns []*CompiledPattern
}

// NewService compiles the redaction catalog eagerly so the cost is paid once
// at daemon startup rather than per probe invocation.
func NewService() *Service {
	s := &Service{patterns: compileBuiltinPatterns()}
	slog.Info("masking service initialized", "patterns", len(s.patterns))
	return s
}

// RedactText applies every redaction rule to text and returns the result.
func (s *Service) RedactText(text string) string {
	if text == "" {
		return text
	}

	redacted, err := s.apply(text)
	if err != nil {
		slog.Error("redaction failed, withholding content (fail-closed)", "error", err)
		return redactionNotice
	}
	return redacted
}

// RedactProbeOutput redacts a probe's stdout and stderr independently.
func (s *Service) RedactProbeOutput(stdout, stderr string) (string, string) {
	return s.RedactText(stdout), s.RedactText(stderr)
}

// ContainsSensitive reports whether text matches any redaction rule, without
// mutating it.
func (s *Service) ContainsSensitive(text string) bool {
	for _, p := range s.patterns {
		if p.Regex.MatchString(text) {
			return true
		}
	}
	return false
}

// apply runs every compiled pattern over text. A panicking regex (malformed
// input defeating a pathological pattern) is recovered into an error so the
// caller can fail closed instead of the daemon crashing mid-probe.
func (s *Service) apply(text string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = ""
			err = errRecoveredPanic(r)
		}
	}()

	masked := text
	for _, p := range s.patterns {
		masked = p.Regex.ReplaceAllString(masked, p.Replacement)
	}
	return masked, nil
}
