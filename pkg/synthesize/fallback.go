package synthesize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jjgarcianorway/annad/pkg/evidence"
)

// ExtractFallback pulls a minimal, citation-bearing answer straight out of
// raw evidence when the LLM draft path errors or times out. It is a
// last-resort keyword match, not a full synthesis: the goal is to avoid a
// bare refusal when usable evidence already sits in the block.
func ExtractFallback(question string, ev *evidence.Block) (string, bool) {
	q := strings.ToLower(question)

	for _, item := range ev.All() {
		if !item.Success {
			continue
		}
		raw := item.Stdout

		switch {
		case (strings.Contains(q, "cpu") || strings.Contains(q, "processor") ||
			strings.Contains(q, "core") || strings.Contains(q, "thread")) &&
			item.ProbeID == "cpu_info":
			if fact, ok := extractCPUFact(q, raw); ok {
				return canonical(fact, cite(fact, item.ID), ""), true
			}

		case strings.Contains(q, "ram") || strings.Contains(q, "memory"):
			if item.ProbeID == "memory_info" {
				fact := extractMemoryFact(raw)
				return canonical(fact, cite(fact, item.ID), ""), true
			}

		case (strings.Contains(q, "disk") || strings.Contains(q, "storage") ||
			strings.Contains(q, "drive")) && item.ProbeID == "lsblk":
			summary := fmt.Sprintf("Disk information from system:\n%s", truncateRaw(raw, 500))
			return canonical(summary, cite(summary, item.ID), ""), true

		case (strings.Contains(q, "network") || strings.Contains(q, "interface") ||
			strings.Contains(q, "ip")) && item.ProbeID == "network_interfaces":
			summary := fmt.Sprintf("Network information:\n%s", truncateRaw(raw, 500))
			return canonical(summary, cite(summary, item.ID), ""), true

		case strings.Contains(q, "update") && item.ProbeID == "package_count":
			lines := strings.Split(strings.TrimSpace(raw), "\n")
			if strings.TrimSpace(raw) == "" {
				return canonical("No package updates are currently available.", cite("package_count reported no pending updates", item.ID), ""), true
			}
			fact := fmt.Sprintf("%d package(s) reported.", len(lines))
			return canonical(fact, cite(fact, item.ID), ""), true

		case (strings.Contains(q, "log") || strings.Contains(q, "journal")) &&
			(item.ProbeID == "journal_errors" || item.ProbeID == "journal_warnings"):
			summary := fmt.Sprintf("Recent system logs:\n%s", truncateRaw(raw, 800))
			return canonical(summary, cite(summary, item.ID), ""), true
		}
	}

	return "", false
}

func extractCPUFact(question, raw string) (string, bool) {
	var facts []string
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)

		if strings.Contains(question, "thread") && strings.HasPrefix(lower, "cpu(s):") {
			if val := afterColon(line); val != "" {
				facts = append(facts, fmt.Sprintf("Total threads: %s", val))
			}
		}
		if strings.Contains(question, "core") {
			if strings.HasPrefix(lower, "core(s) per socket:") {
				if val := afterColon(line); val != "" {
					facts = append(facts, fmt.Sprintf("Cores per socket: %s", val))
				}
			}
			if strings.HasPrefix(lower, "cpu(s):") && !strings.Contains(question, "thread") {
				if val := afterColon(line); val != "" {
					facts = append(facts, fmt.Sprintf("Total CPU(s)/cores: %s", val))
				}
			}
		}
		if strings.Contains(question, "model") && strings.HasPrefix(lower, "model name:") {
			if val := afterColon(line); val != "" {
				facts = append(facts, fmt.Sprintf("CPU model: %s", val))
			}
		}
		if (strings.Contains(question, "avx") || strings.Contains(question, "sse")) && strings.HasPrefix(lower, "flags:") {
			flagList := strings.Fields(strings.ToLower(afterColon(line)))
			has := func(flag string) bool {
				for _, f := range flagList {
					if f == flag {
						return true
					}
				}
				return false
			}
			switch {
			case strings.Contains(question, "avx2"):
				facts = append(facts, fmt.Sprintf("AVX2 support: %s", yesNo(has("avx2"))))
			case strings.Contains(question, "avx"):
				facts = append(facts, fmt.Sprintf("AVX support: %s", yesNo(has("avx"))))
			}
			switch {
			case strings.Contains(question, "sse2"):
				facts = append(facts, fmt.Sprintf("SSE2 support: %s", yesNo(has("sse2"))))
			case strings.Contains(question, "sse"):
				facts = append(facts, fmt.Sprintf("SSE support: %s", yesNo(has("sse"))))
			}
		}
	}
	if len(facts) == 0 {
		return fmt.Sprintf("CPU information:\n%s", truncateRaw(raw, 500)), true
	}
	return strings.Join(facts, "\n"), true
}

func extractMemoryFact(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "MemTotal:") {
			kbStr := afterColon(line)
			kbStr = strings.TrimSuffix(strings.TrimSpace(kbStr), " kB")
			kbStr = strings.TrimSuffix(strings.TrimSpace(kbStr), " KB")
			if kb, err := strconv.ParseUint(strings.TrimSpace(kbStr), 10, 64); err == nil {
				gb := kb / 1024 / 1024
				return fmt.Sprintf("Total RAM: %d GB (%d kB)", gb, kb)
			}
		}
	}
	return fmt.Sprintf("Memory information:\n%s", truncateRaw(raw, 300))
}

func afterColon(line string) string {
	idx := strings.Index(line, ":")
	if idx == -1 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func truncateRaw(raw string, maxLen int) string {
	if len(raw) <= maxLen {
		return raw
	}
	return raw[:maxLen] + "..."
}
