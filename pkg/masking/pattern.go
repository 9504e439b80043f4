package masking

import "regexp"

// CompiledPattern holds a pre-compiled redaction regex with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// builtinPatterns is the fixed redaction catalog applied to every probe's
// stdout/stderr before the evidence block is stored or shown to an LLM.
// Order matters: private key blocks and shadow entries are matched before
// the generic password rule would otherwise partially consume them.
var builtinPatterns = []struct {
	name        string
	pattern     string
	replacement string
}{
	{
		name:        "private_key",
		pattern:     `(?s)-----BEGIN [A-Z ]+ PRIVATE KEY-----.*?-----END [A-Z ]+ PRIVATE KEY-----`,
		replacement: "[REDACTED: private key]",
	},
	{
		name:        "ssh_key_path",
		pattern:     `(/[\w/.-]*id_rsa|/[\w/.-]*id_ed25519|/[\w/.-]*id_ecdsa)(\s|$)`,
		replacement: "[REDACTED: ssh key path] ",
	},
	{
		name:        "shadow_entry",
		pattern:     `(?m)^\w+:\$[0-9a-zA-Z$./]+:[0-9:]+$`,
		replacement: "[REDACTED: shadow entry]",
	},
	{
		name:        "password_hash",
		pattern:     `\$[0-9a-z]+\$[a-zA-Z0-9./]+\$[a-zA-Z0-9./]+`,
		replacement: "[REDACTED: password hash]",
	},
	{
		name:        "aws_access_key",
		pattern:     `AKIA[0-9A-Z]{16}`,
		replacement: "[REDACTED: AWS access key]",
	},
	{
		name:        "aws_secret_key",
		pattern:     `(?i)(aws_secret_access_key|secret_key)\s*[=:]\s*[a-zA-Z0-9/+=]{40}`,
		replacement: "[REDACTED: AWS secret]",
	},
	{
		name:        "api_key",
		pattern:     `(?i)(api_key|apikey|api-key)\s*[=:]\s*[a-zA-Z0-9_-]{20,}`,
		replacement: "[REDACTED: API key]",
	},
	{
		name:        "bearer_token",
		pattern:     `(?i)bearer\s+[a-zA-Z0-9._-]{20,}`,
		replacement: "[REDACTED: bearer token]",
	},
	{
		name:        "db_connection",
		pattern:     `(?i)(mysql|postgres|mongodb)://[^:]+:[^@]+@`,
		replacement: "[REDACTED: db connection] ",
	},
	{
		name:        "generic_password",
		pattern:     `(?i)(password|passwd|pwd)\s*[=:]\s*["']?[^\s"']{8,}["']?`,
		replacement: "[REDACTED: password]",
	},
	{
		name:        "shadow_path",
		pattern:     `/etc/shadow`,
		replacement: "/etc/[REDACTED]",
	},
}

// compileBuiltinPatterns compiles the fixed catalog. A pattern that fails to
// compile is a programmer error caught in tests, not a runtime condition, so
// this panics rather than degrading redaction silently.
func compileBuiltinPatterns() []*CompiledPattern {
	compiled := make([]*CompiledPattern, 0, len(builtinPatterns))
	for _, p := range builtinPatterns {
		compiled = append(compiled, &CompiledPattern{
			Name:        p.name,
			Regex:       regexp.MustCompile(p.pattern),
			Replacement: p.replacement,
		})
	}
	return compiled
}
