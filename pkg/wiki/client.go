// Package wiki fetches and locally caches Arch Wiki articles so Anna can
// ground answers in reference documentation without hitting the network on
// every request. Only cache population crosses the network; reading a
// cached article never does.
package wiki

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const userAgent = "anna-assistant wiki client (+https://github.com/jjgarcianorway/anna-assistant)"

// DefaultTopics is a small set of Arch Wiki pages relevant to the
// system-administration domains Anna answers about, warmed into the cache
// at startup so the first request touching one of them doesn't pay for a
// live fetch.
var DefaultTopics = []string{
	"https://wiki.archlinux.org/title/Systemd",
	"https://wiki.archlinux.org/title/Dm-crypt",
	"https://wiki.archlinux.org/title/Pacman",
	"https://wiki.archlinux.org/title/NetworkManager",
}

// WarmCache fetches each of urls into the cache, logging (but not
// returning) individual failures — a single unreachable page shouldn't
// abort warming the rest.
func (c *Client) WarmCache(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if _, err := c.FetchPage(ctx, url); err != nil {
			slog.Warn("wiki cache warm: fetch failed", "url", url, "error", err)
		}
	}
}

// Page is a full, locally cached wiki article.
type Page struct {
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	CachedAt time.Time `json:"cached_at"`
}

// Section is a single extracted section of a Page, falling back to the
// full page content when the requested section can't be located.
type Section struct {
	URL     string `json:"url"`
	Section string `json:"section,omitempty"`
	Content string `json:"content"`
}

// Client fetches wiki.archlinux.org pages with a local, TTL-bounded cache.
type Client struct {
	cacheDir string
	ttl      time.Duration
	http     *http.Client
}

// New builds a Client caching under cacheDir (created if absent), expiring
// cached articles after ttl.
func New(cacheDir string, ttl time.Duration) (*Client, error) {
	if err := os.MkdirAll(cacheDir, 0o750); err != nil {
		return nil, fmt.Errorf("wiki client: create cache dir: %w", err)
	}
	return &Client{
		cacheDir: cacheDir,
		ttl:      ttl,
		http:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// FetchPage returns the article at url, from cache if a fresh copy exists,
// otherwise fetching and caching it.
func (c *Client) FetchPage(ctx context.Context, url string) (Page, error) {
	if page, ok := c.loadFromCache(url); ok {
		return page, nil
	}

	page, err := c.fetchPage(ctx, url)
	if err != nil {
		return Page{}, err
	}
	if err := c.saveToCache(page); err != nil {
		// Cache write failure shouldn't fail the fetch: the article is
		// still usable, it just won't be cached this time.
		_ = err
	}
	return page, nil
}

// FetchSection returns the named section of the article at url, falling
// back to the full page content if the section can't be located.
func (c *Client) FetchSection(ctx context.Context, url, sectionHint string) (Section, error) {
	page, err := c.FetchPage(ctx, url)
	if err != nil {
		return Section{}, err
	}

	content, found := extractSection(page.Content, sectionHint)
	if !found {
		content = page.Content
	}
	return Section{
		URL:     page.URL + "#" + strings.ReplaceAll(sectionHint, " ", "_"),
		Section: sectionHint,
		Content: content,
	}, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("wiki client: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("wiki client: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("wiki client: unexpected status %d for %s", resp.StatusCode, url)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("wiki client: parse html: %w", err)
	}

	title := findTitle(doc)
	content := findContentText(doc)
	if content == "" {
		return Page{}, fmt.Errorf("wiki client: no content found at %s", url)
	}

	return Page{URL: url, Title: title, Content: content, CachedAt: time.Now()}, nil
}

// extractSection finds the line introducing sectionHint (an ATX- or
// wiki-style heading: "#..." or "==...==") and returns everything up to
// the next heading line of any level, mirroring the original's
// line-scanning approach rather than building a full document outline.
func extractSection(content, sectionHint string) (string, bool) {
	hint := strings.ToLower(sectionHint)
	lines := strings.Split(content, "\n")

	start := -1
	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, hint) && isHeading(line) {
			start = i
			break
		}
	}
	if start == -1 {
		return "", false
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if isHeading(lines[i]) {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n"), true
}

func isHeading(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "==")
}

func (c *Client) loadFromCache(url string) (Page, bool) {
	path := c.cachePath(url)
	info, err := os.Stat(path)
	if err != nil {
		return Page{}, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		return Page{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, false
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return Page{}, false
	}
	return page, true
}

func (c *Client) saveToCache(page Page) error {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("wiki client: encode cache entry: %w", err)
	}
	return os.WriteFile(c.cachePath(page.URL), data, 0o640)
}

func (c *Client) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.cacheDir, fmt.Sprintf("wiki_%s.json", hex.EncodeToString(sum[:])[:16]))
}
