package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GitHubChecker implements VersionChecker by reading the latest release tag
// from a GitHub repository's releases API. Built on stdlib net/http: no
// example repo or original_source file wraps a third-party HTTP client for a
// single-endpoint JSON GET, so this follows the same timeout+user-agent
// shape the original's wiki client builds around reqwest, translated to
// Go's http.Client.
type GitHubChecker struct {
	repo       string // "owner/name"
	httpClient *http.Client
	userAgent  string
}

// NewGitHubChecker builds a checker against the given "owner/name" repo.
func NewGitHubChecker(repo string) *GitHubChecker {
	return &GitHubChecker{
		repo:       repo,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userAgent:  "annad-update-checker",
	}
}

type githubRelease struct {
	TagName string `json:"tag_name"`
}

// LatestVersion fetches the repo's latest release tag, stripped of a
// leading "v" so it compares directly against version.GitCommit-style or
// semver-style local version strings.
func (c *GitHubChecker) LatestVersion(ctx context.Context) (string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("update checker: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("update checker: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("update checker: unexpected status %d", resp.StatusCode)
	}

	var rel githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", fmt.Errorf("update checker: decode response: %w", err)
	}
	return strings.TrimPrefix(rel.TagName, "v"), nil
}
