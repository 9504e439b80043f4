package evidence

import (
	"os"
	"path/filepath"
	"strings"
)

// KnowledgeCache is the persistent, host-local store of man page text and
// mirrored Arch Wiki articles. It is never network-backed: its files are
// written only through StoreMan and StoreArchWiki and read from local disk.
type KnowledgeCache struct {
	baseDir string
}

// NewKnowledgeCache returns a cache rooted at baseDir.
func NewKnowledgeCache(baseDir string) *KnowledgeCache {
	return &KnowledgeCache{baseDir: baseDir}
}

func (c *KnowledgeCache) archWikiDir() string { return filepath.Join(c.baseDir, "archwiki") }
func (c *KnowledgeCache) manDir() string      { return filepath.Join(c.baseDir, "man") }

// EnsureDirs creates the cache's on-disk layout if missing.
func (c *KnowledgeCache) EnsureDirs() error {
	if err := os.MkdirAll(c.archWikiDir(), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(c.manDir(), 0o755)
}

// CiteMan returns a Citation for command's cached man page, or nil if no
// snapshot has been stored. When topic is non-empty, Excerpt is populated
// from the first matching line.
func (c *KnowledgeCache) CiteMan(command, topic string) *Citation {
	path := filepath.Join(c.manDir(), command+".txt")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return &Citation{
		Source:  CitationSource{Kind: SourceManPage, Command: command},
		Excerpt: c.findExcerpt(path, topic),
		Path:    path,
	}
}

// CiteArchWiki returns a Citation for a mirrored Arch Wiki article by slug,
// or nil if nothing has been mirrored for it yet.
func (c *KnowledgeCache) CiteArchWiki(slug, topic string) *Citation {
	path := filepath.Join(c.archWikiDir(), slugFilename(slug))
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return &Citation{
		Source:  CitationSource{Kind: SourceArchWiki, Slug: slug},
		Excerpt: c.findExcerpt(path, topic),
		Path:    path,
	}
}

// findExcerpt returns the first 200 characters of the first line containing
// topic (case-insensitive), or "" if topic is empty or nothing matches.
func (c *KnowledgeCache) findExcerpt(path, topic string) string {
	if topic == "" {
		return ""
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	topicLower := strings.ToLower(topic)
	for _, line := range strings.Split(string(content), "\n") {
		if strings.Contains(strings.ToLower(line), topicLower) {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if len(trimmed) > 200 {
				return trimmed[:200]
			}
			return trimmed
		}
	}
	return ""
}

// StoreMan writes a man page snapshot to the cache.
func (c *KnowledgeCache) StoreMan(command, content string) error {
	if err := c.EnsureDirs(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.manDir(), command+".txt"), []byte(content), 0o644)
}

// StoreArchWiki writes a mirrored Arch Wiki article to the cache.
func (c *KnowledgeCache) StoreArchWiki(slug, content string) error {
	if err := c.EnsureDirs(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.archWikiDir(), slugFilename(slug)), []byte(content), 0o644)
}

// HasMan reports whether command's man page has been cached.
func (c *KnowledgeCache) HasMan(command string) bool {
	_, err := os.Stat(filepath.Join(c.manDir(), command+".txt"))
	return err == nil
}

// HasArchWiki reports whether slug's article has been mirrored.
func (c *KnowledgeCache) HasArchWiki(slug string) bool {
	_, err := os.Stat(filepath.Join(c.archWikiDir(), slugFilename(slug)))
	return err == nil
}

// ListManPages returns the commands with a cached man page.
func (c *KnowledgeCache) ListManPages() []string {
	return c.listFiles(c.manDir(), ".txt")
}

// ListArchWikiArticles returns the slugs with a mirrored article.
func (c *KnowledgeCache) ListArchWikiArticles() []string {
	return c.listFiles(c.archWikiDir(), ".md")
}

func (c *KnowledgeCache) listFiles(dir, extension string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), extension); ok {
			names = append(names, name)
		}
	}
	return names
}

func slugFilename(slug string) string {
	return strings.ReplaceAll(strings.ToLower(slug), " ", "_") + ".md"
}

// FindCitation tries a man page citation first, then an Arch Wiki citation,
// and falls back to Uncited when neither source has anything for topic.
func FindCitation(cache *KnowledgeCache, command, archWikiSlug, topic string) GuidanceCitation {
	if command != "" {
		if c := cache.CiteMan(command, topic); c != nil {
			return GuidanceCitation{Citation: c}
		}
	}
	if archWikiSlug != "" {
		if c := cache.CiteArchWiki(archWikiSlug, topic); c != nil {
			return GuidanceCitation{Citation: c}
		}
	}
	if topic == "" {
		topic = "unknown"
	}
	return GuidanceCitation{Topic: topic}
}
