package evidence

import "fmt"

// SourceKind identifies where a Citation's excerpt came from.
type SourceKind string

const (
	SourceManPage    SourceKind = "man_page"
	SourceHelpOutput SourceKind = "help_output"
	SourceArchWiki   SourceKind = "archwiki"
	SourceLocalFile  SourceKind = "local_file"
)

// CitationSource names a local knowledge source: a command's man page, its
// --help output, a mirrored Arch Wiki article, or an arbitrary local file.
type CitationSource struct {
	Kind    SourceKind
	Command string // set for SourceManPage / SourceHelpOutput
	Slug    string // set for SourceArchWiki
	Path    string // set for SourceLocalFile
}

// Label formats the source for display. Anna never cites a URL — only local
// artifacts a user could open themselves.
func (s CitationSource) Label() string {
	switch s.Kind {
	case SourceManPage:
		return fmt.Sprintf("man %s", s.Command)
	case SourceHelpOutput:
		return fmt.Sprintf("%s --help", s.Command)
	case SourceArchWiki:
		return fmt.Sprintf("archwiki %s", s.Slug)
	case SourceLocalFile:
		return fmt.Sprintf("file %s", s.Path)
	default:
		return "unknown source"
	}
}

// Citation is a resolved reference to a local knowledge excerpt.
type Citation struct {
	Source  CitationSource
	Excerpt string // empty if no excerpt matched the requested topic
	Path    string
}

// Inline formats the citation for embedding in an answer, e.g. "[source: man df]".
func (c Citation) Inline() string {
	return fmt.Sprintf("[source: %s]", c.Source.Label())
}

// GuidanceCitation is the outcome of a citation lookup: either a resolved
// Citation, or Uncited when nothing in the knowledge cache matches. The
// synthesizer must say so explicitly rather than fabricate a reference.
type GuidanceCitation struct {
	Citation *Citation // nil when Uncited
	Topic    string    // set when Citation is nil
}

// Inline formats the lookup result for embedding in an answer.
func (g GuidanceCitation) Inline() string {
	if g.Citation != nil {
		return g.Citation.Inline()
	}
	return "[uncited]"
}

// IsCited reports whether the lookup resolved to a real citation.
func (g GuidanceCitation) IsCited() bool {
	return g.Citation != nil
}
