// Package synthesize drafts ticket answers: a deterministic formatter per
// fixed route class when the route requires no model call, a keyword-matched
// fallback extractor when the LLM draft errors, and an LLM-backed drafter
// for everything else. All three paths emit the same canonical
// [SUMMARY]/[DETAILS]/[COMMANDS] shape with evidence-ID citations.
package synthesize

import (
	"fmt"
	"strings"
)

// canonical assembles the three required sections into one answer string.
// Every line of details must already carry its own [E<n>] citation; this
// function does not add citations, only structure.
func canonical(summary, details, commands string) string {
	var b strings.Builder
	b.WriteString("[SUMMARY]\n")
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n[DETAILS]\n")
	b.WriteString(strings.TrimSpace(details))
	b.WriteString("\n[COMMANDS]\n")
	if commands == "" {
		b.WriteString("none")
	} else {
		b.WriteString(strings.TrimSpace(commands))
	}
	b.WriteString("\n")
	return b.String()
}

// cite appends an evidence-id marker to a claim line.
func cite(line, evidenceID string) string {
	return fmt.Sprintf("%s [%s]", line, evidenceID)
}

// noEvidence is the canonical refusal-shaped answer for when a route's
// declared probes produced no usable evidence. Anna states the gap rather
// than inventing an answer.
func noEvidence(topic string) string {
	return canonical(
		fmt.Sprintf("I don't have evidence to answer about %s.", topic),
		"Evidence missing: the probe(s) for this route did not succeed, or produced no parseable output.",
		"",
	)
}
