package verify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jjgarcianorway/annad/pkg/evidence"
	"github.com/jjgarcianorway/annad/pkg/teams"
)

// citationPattern matches an evidence-id citation ([E3]) or a knowledge
// citation ([source: man df]) anywhere in the drafted answer.
var citationPattern = regexp.MustCompile(`\[E\d+\]|\[source: [^\]]+\]`)

// evidenceIDPattern extracts the evidence ids referenced by citations.
var evidenceIDPattern = regexp.MustCompile(`\[(E\d+)\]`)

// disallowedReadOnlyCommands are destructive command fragments that must
// never appear in a recommendation for a read-only route.
var disallowedReadOnlyCommands = []string{
	"rm -rf", "mkfs", "dd if=", "fdisk", "parted", ":(){ :|:& };:",
	"pacman -R", "systemctl stop", "systemctl disable", "> /dev/sd",
}

// Request bundles what a review pass needs to check a drafted answer.
type Request struct {
	Draft              string
	Evidence           *evidence.Block
	RequiredKinds      []evidence.Kind
	Team               teams.Team
	Reviewer           string // "junior" or "senior"
	ReadOnly           bool
	ReliabilityScore   int
	ReliabilityPass    bool // score >= threshold AND answer_grounded
	RequireCitationAll bool // senior escalation sets this true for stricter checking
}

// Check runs the structural review and returns a ReviewArtifact.
// AllowPublish is true only when no blocking issue is found and the
// reliability scorer has already cleared its threshold.
func Check(req Request) ReviewArtifact {
	var issues []string
	var guidance []string

	if !hasCanonicalFormat(req.Draft) {
		issues = append(issues, "output missing canonical [SUMMARY]/[DETAILS]/[COMMANDS] sections")
		guidance = append(guidance, "restate the answer using [SUMMARY], [DETAILS], [COMMANDS] sections")
	}

	citedIDs := evidenceIDPattern.FindAllStringSubmatch(req.Draft, -1)
	for _, m := range citedIDs {
		if _, ok := req.Evidence.Get(m[1]); !ok {
			issues = append(issues, fmt.Sprintf("citation %s does not resolve to any EvidenceItem", m[1]))
			guidance = append(guidance, fmt.Sprintf("remove or correct the dangling citation %s", m[1]))
		}
	}

	if req.RequireCitationAll && !hasCitationOnEveryClaim(req.Draft) {
		issues = append(issues, "at least one declarative claim lacks a citation")
		guidance = append(guidance, "add a citation marker to every factual claim")
	} else if req.Evidence.Len() > 0 && !citationPattern.MatchString(req.Draft) {
		issues = append(issues, "answer draws on evidence but carries no citation")
		guidance = append(guidance, "cite the evidence id or knowledge source backing each claim")
	}

	for _, kind := range req.RequiredKinds {
		if !req.Evidence.HasKind(kind) {
			issues = append(issues, fmt.Sprintf("required evidence kind %q is missing", kind))
			guidance = append(guidance, fmt.Sprintf("run a probe that produces %q evidence before answering", kind))
		}
	}

	if req.ReadOnly {
		lower := strings.ToLower(req.Draft)
		for _, cmd := range disallowedReadOnlyCommands {
			if strings.Contains(lower, strings.ToLower(cmd)) {
				issues = append(issues, fmt.Sprintf("recommends disallowed command %q on a read-only route", cmd))
				guidance = append(guidance, "remove the destructive command recommendation")
			}
		}
	}

	if len(issues) > 0 {
		return Reject(req.Team, req.Reviewer, req.ReliabilityScore, issues, guidance)
	}
	if !req.ReliabilityPass {
		return Reject(req.Team, req.Reviewer, req.ReliabilityScore,
			[]string{"reliability score below threshold"},
			[]string{"gather more evidence or narrow the claim to what evidence supports"})
	}
	return Pass(req.Team, req.Reviewer, req.ReliabilityScore)
}

func hasCanonicalFormat(draft string) bool {
	return strings.Contains(draft, "[SUMMARY]") &&
		strings.Contains(draft, "[DETAILS]") &&
		strings.Contains(draft, "[COMMANDS]")
}

// hasCitationOnEveryClaim approximates "every declarative claim is cited" by
// requiring every non-empty DETAILS line to carry a citation marker. This is
// a conservative structural proxy, not natural-language claim extraction.
func hasCitationOnEveryClaim(draft string) bool {
	details := extractSection(draft, "[DETAILS]", "[COMMANDS]")
	for _, line := range strings.Split(details, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !citationPattern.MatchString(trimmed) {
			return false
		}
	}
	return true
}

func extractSection(draft, start, end string) string {
	startIdx := strings.Index(draft, start)
	if startIdx == -1 {
		return ""
	}
	startIdx += len(start)
	endIdx := strings.Index(draft[startIdx:], end)
	if endIdx == -1 {
		return draft[startIdx:]
	}
	return draft[startIdx : startIdx+endIdx]
}
