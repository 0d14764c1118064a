// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package githost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultAPIBase = "https://api.github.com"

	// Unauthenticated GitHub allows 60 requests/hour. The limiter paces
	// bursts well below that so interactive browsing does not burn the
	// whole quota in one exploration.
	requestsPerSecond = 2
	requestBurst      = 5
)

// RateLimit holds the host's quota counters, parsed passively from
// response headers for display and retry-after hints.
type RateLimit struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Client talks to the GitHub REST v3 API.
//
// Thread Safety: safe for concurrent use; rate-limit counters are
// mutex-protected.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	limiter *rate.Limiter
	log     *slog.Logger

	mu        sync.Mutex
	rateLimit RateLimit
}

// NewClient creates a GitHub client. token may be empty for anonymous
// access; baseURL overrides the public endpoint (used in tests).
func NewClient(token, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultAPIBase
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		log:     logger,
	}
}

// RateLimitState returns the most recently observed quota counters.
func (c *Client) RateLimitState() RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

// ParseRepoURL extracts owner and repo from user input. Accepted forms:
// "owner/repo", "github.com/owner/repo" and full https URLs, with an
// optional trailing ".git". Anything else is a UserInputError.
func ParseRepoURL(input string) (owner, repo string, err error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", "", &UserInputError{Input: input, Reason: "enter a repository URL"}
	}
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &UserInputError{
			Input:  input,
			Reason: "that doesn't look like a GitHub repository (expected owner/repo)",
		}
	}
	return parts[0], parts[1], nil
}

// FetchRepository fetches repository metadata and the full recursive file
// tree, assembled into a FileNode hierarchy. The two requests run
// concurrently: the tree is requested at HEAD, which the host resolves
// to the default branch, so neither leg waits on the other.
func (c *Client) FetchRepository(ctx context.Context, owner, repo string) (*RepoInfo, *FileNode, error) {
	var (
		info *RepoInfo
		tree *FileNode
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = c.fetchInfo(gctx, owner, repo)
		return err
	})
	g.Go(func() error {
		var err error
		tree, err = c.fetchTree(gctx, owner, repo, "HEAD")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return info, tree, nil
}

// FetchFileContent returns the raw text of one file at the repository's
// default branch.
func (c *Client) FetchFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), escapePath(path))
	body, err := c.getRaw(ctx, u, "application/vnd.github.raw+json", "file "+path)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", path, err)
	}
	return string(body), nil
}

// TrendingRepositories returns recently created high-star repositories
// for the landing view, via the search API.
func (c *Client) TrendingRepositories(ctx context.Context) ([]RepoInfo, error) {
	since := time.Now().AddDate(0, -1, 0).Format("2006-01-02")
	q := url.Values{}
	q.Set("q", "created:>"+since+" stars:>100")
	q.Set("sort", "stars")
	q.Set("order", "desc")
	q.Set("per_page", "6")

	var out struct {
		Items []repoPayload `json:"items"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/search/repositories?"+q.Encode(), "search results", &out); err != nil {
		return nil, fmt.Errorf("trending repositories: %w", err)
	}
	repos := make([]RepoInfo, 0, len(out.Items))
	for _, p := range out.Items {
		repos = append(repos, p.toInfo())
	}
	return repos, nil
}

// repoPayload mirrors the repository object of the REST API.
type repoPayload struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	Description   string `json:"description"`
	Stars         int    `json:"stargazers_count"`
	Forks         int    `json:"forks_count"`
	Language      string `json:"language"`
	DefaultBranch string `json:"default_branch"`
	HTMLURL       string `json:"html_url"`
}

func (p repoPayload) toInfo() RepoInfo {
	return RepoInfo{
		Owner:         p.Owner.Login,
		Repo:          p.Name,
		FullName:      p.FullName,
		Description:   p.Description,
		Stars:         p.Stars,
		Forks:         p.Forks,
		Language:      p.Language,
		DefaultBranch: p.DefaultBranch,
		HTMLURL:       p.HTMLURL,
	}
}

func (c *Client) fetchInfo(ctx context.Context, owner, repo string) (*RepoInfo, error) {
	var p repoPayload
	u := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))
	if err := c.getJSON(ctx, u, "repository "+owner+"/"+repo, &p); err != nil {
		return nil, fmt.Errorf("fetch repository %s/%s: %w", owner, repo, err)
	}
	info := p.toInfo()
	if info.DefaultBranch == "" {
		info.DefaultBranch = "main"
	}
	return &info, nil
}

func (c *Client) fetchTree(ctx context.Context, owner, repo, branch string) (*FileNode, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))
	var out struct {
		Tree      []treeEntry `json:"tree"`
		Truncated bool        `json:"truncated"`
	}
	if err := c.getJSON(ctx, u, "repository "+owner+"/"+repo, &out); err != nil {
		return nil, fmt.Errorf("fetch tree %s/%s@%s: %w", owner, repo, branch, err)
	}
	if out.Truncated {
		c.log.Warn("file tree truncated by host", "repo", owner+"/"+repo)
	}
	return buildTree(repo, out.Tree), nil
}

func (c *Client) getJSON(ctx context.Context, u, resource string, out any) error {
	body, err := c.getRaw(ctx, u, "application/vnd.github+json", resource)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getRaw performs one authenticated GET. resource names what is being
// fetched so a 404 can say which thing is missing.
func (c *Client) getRaw(ctx context.Context, u, accept, resource string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.recordRateLimit(resp.Header)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Resource: resource}
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining == "0" {
			return nil, &RateLimitedError{ResetAt: c.RateLimitState().ResetAt}
		}
		return nil, fmt.Errorf("forbidden: %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func (c *Client) recordRateLimit(h http.Header) {
	limit, err1 := strconv.Atoi(h.Get("X-RateLimit-Limit"))
	remaining, err2 := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	if err1 != nil && err2 != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err1 == nil {
		c.rateLimit.Limit = limit
	}
	if err2 == nil {
		c.rateLimit.Remaining = remaining
	}
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		c.rateLimit.ResetAt = time.Unix(reset, 0)
	}
}

// escapePath escapes each path segment while preserving separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
