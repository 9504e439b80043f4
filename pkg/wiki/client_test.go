package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html><body>
<h1 class="firstHeading">Disk Encryption</h1>
<div id="mw-content-text"><div class="mw-parser-output">
<p>Intro paragraph about disk encryption.</p>
<h2>Installation</h2>
<p>Install cryptsetup first.</p>
<h2>Troubleshooting</h2>
<p>Common unlocking failures and fixes.</p>
<p>Second troubleshooting paragraph.</p>
<h2>Configuration</h2>
<p>Configuration details.</p>
</div></div>
</body></html>`

func newTestClient(t *testing.T, ttl time.Duration) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	t.Cleanup(srv.Close)

	c, err := New(filepath.Join(t.TempDir(), "wiki_cache"), ttl)
	require.NoError(t, err)
	return c, srv
}

func TestClient_FetchPage_ParsesTitleAndContent(t *testing.T) {
	c, srv := newTestClient(t, time.Hour)

	page, err := c.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Disk Encryption", page.Title)
	assert.Contains(t, page.Content, "Install cryptsetup first")
	assert.Contains(t, page.Content, "Troubleshooting")
}

func TestClient_FetchPage_UsesCacheOnSecondCall(t *testing.T) {
	c, srv := newTestClient(t, time.Hour)

	first, err := c.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)

	srv.Close() // network now unreachable; a cache hit is the only way this succeeds
	second, err := c.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, first.Title, second.Title)
}

func TestClient_FetchPage_RefetchesAfterTTLExpires(t *testing.T) {
	c, srv := newTestClient(t, time.Nanosecond)

	_, err := c.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = c.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err, "expired cache entry should fall through to a live fetch")
}

func TestClient_FetchSection_ReturnsOnlyRequestedSection(t *testing.T) {
	c, srv := newTestClient(t, time.Hour)

	section, err := c.FetchSection(context.Background(), srv.URL, "Troubleshooting")
	require.NoError(t, err)
	assert.Contains(t, section.Content, "Common unlocking failures")
	assert.NotContains(t, section.Content, "Configuration details")
}

func TestClient_FetchSection_FallsBackToFullPageWhenSectionMissing(t *testing.T) {
	c, srv := newTestClient(t, time.Hour)

	section, err := c.FetchSection(context.Background(), srv.URL, "Nonexistent Section")
	require.NoError(t, err)
	assert.Contains(t, section.Content, "Install cryptsetup first")
	assert.Contains(t, section.Content, "Configuration details")
}

func TestClient_WarmCache_PopulatesCacheForEachURL(t *testing.T) {
	c, srv := newTestClient(t, time.Hour)

	c.WarmCache(context.Background(), srv.URL, srv.URL+"/other")

	_, ok := c.loadFromCache(srv.URL)
	assert.True(t, ok, "expected srv.URL to be cached after warming")
}

func TestExtractSection_FindsHeadingBoundedByNextHeading(t *testing.T) {
	content := "# Main Title\nSome content\n## Troubleshooting\nTroubleshooting content here\nMore troubleshooting\n## Configuration\nConfig content"

	section, found := extractSection(content, "Troubleshooting")
	require.True(t, found)
	assert.Contains(t, section, "Troubleshooting content here")
	assert.NotContains(t, section, "Config content")
}
