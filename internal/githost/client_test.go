// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package githost

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	cases := []struct {
		in          string
		owner, repo string
		wantErr     bool
	}{
		{"octocat/Hello-World", "octocat", "Hello-World", false},
		{"https://github.com/octocat/Hello-World", "octocat", "Hello-World", false},
		{"http://www.github.com/octocat/Hello-World/", "octocat", "Hello-World", false},
		{"github.com/octocat/Hello-World.git", "octocat", "Hello-World", false},
		{"  octocat/Hello-World  ", "octocat", "Hello-World", false},
		{"not-a-url", "", "", true},
		{"", "", "", true},
		{"/repo", "", "", true},
	}

	for _, tc := range cases {
		owner, repo, err := ParseRepoURL(tc.in)
		if tc.wantErr {
			var uerr *UserInputError
			require.Error(t, err, "input %q", tc.in)
			assert.True(t, errors.As(err, &uerr), "input %q should be a UserInputError", tc.in)
			assert.NotEmpty(t, uerr.Error())
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.owner, owner)
		assert.Equal(t, tc.repo, repo)
	}
}

func TestFetchRepository(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "58")
		switch r.URL.Path {
		case "/repos/octocat/Hello-World":
			w.Write([]byte(`{
				"name": "Hello-World",
				"full_name": "octocat/Hello-World",
				"owner": {"login": "octocat"},
				"description": "My first repository",
				"stargazers_count": 2500,
				"forks_count": 1300,
				"language": "C",
				"default_branch": "master",
				"html_url": "https://github.com/octocat/Hello-World"
			}`))
		case "/repos/octocat/Hello-World/git/trees/HEAD":
			w.Write([]byte(`{"tree": [
				{"path": "README.md", "type": "blob", "size": 12},
				{"path": "src", "type": "tree"},
				{"path": "src/main.c", "type": "blob", "size": 340}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, nil)
	info, tree, err := c.FetchRepository(context.Background(), "octocat", "Hello-World")
	require.NoError(t, err)

	assert.Equal(t, "octocat/Hello-World", info.FullName)
	assert.Equal(t, "master", info.DefaultBranch)
	assert.Equal(t, 2500, info.Stars)

	require.NotNil(t, tree)
	require.Len(t, tree.Children, 2)
	// Folders sort before files.
	assert.Equal(t, "src", tree.Children[0].Name)
	assert.True(t, tree.Children[0].IsFolder())
	assert.Equal(t, "README.md", tree.Children[1].Name)

	main := tree.Find("src/main.c")
	require.NotNil(t, main)
	assert.Equal(t, "c", main.Extension)
	assert.EqualValues(t, 340, main.Size)

	rl := c.RateLimitState()
	assert.Equal(t, 60, rl.Limit)
	assert.Equal(t, 58, rl.Remaining)
}

func TestFetchRepositoryConcurrent(t *testing.T) {
	// Metadata and tree must be fetched in parallel. Each handler sleeps,
	// so a sequential client would take at least twice the delay.
	const delay = 200 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		switch r.URL.Path {
		case "/repos/o/r":
			w.Write([]byte(`{"full_name": "o/r", "default_branch": "main"}`))
		case "/repos/o/r/git/trees/HEAD":
			w.Write([]byte(`{"tree": [{"path": "a.go", "type": "blob", "size": 1}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, nil)
	start := time.Now()
	info, tree, err := c.FetchRepository(context.Background(), "o", "r")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "o/r", info.FullName)
	require.NotNil(t, tree.Find("a.go"))
	assert.Less(t, elapsed, 2*delay, "both requests should be in flight at once")
}

func TestFetchRepositoryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, nil)
	_, _, err := c.FetchRepository(context.Background(), "nobody", "nothing")

	var nf *NotFoundError
	require.Error(t, err)
	assert.True(t, errors.As(err, &nf))
}

func TestFetchRepositoryRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, nil)
	_, _, err := c.FetchRepository(context.Background(), "octocat", "Hello-World")

	var rl *RateLimitedError
	require.Error(t, err)
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, time.Duration(0), rl.RetryAfter(), "past reset floors at zero")
}

func TestFetchFileContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/o/r/contents/docs/guide.md" {
			assert.Equal(t, "application/vnd.github.raw+json", r.Header.Get("Accept"))
			w.Write([]byte("# Guide\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, nil)
	text, err := c.FetchFileContent(context.Background(), "o", "r", "docs/guide.md")
	require.NoError(t, err)
	assert.Equal(t, "# Guide\n", text)
}

func TestFetchFileContentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	c := NewClient("", srv.URL, nil)
	_, err := c.FetchFileContent(context.Background(), "o", "r", "docs/missing.md")

	var nf *NotFoundError
	require.Error(t, err)
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, nf.Resource, "docs/missing.md", "the message should name the file, not the repository")
}

func TestBuildTreeImplicitFolders(t *testing.T) {
	// A blob deeper than any listed tree entry must still get ancestors.
	root := buildTree("repo", []treeEntry{
		{Path: "a/b/c.txt", Type: "blob", Size: 1},
	})
	require.Len(t, root.Children, 1)
	a := root.Children[0]
	assert.Equal(t, "a", a.Name)
	require.Len(t, a.Children, 1)
	b := a.Children[0]
	assert.Equal(t, "a/b", b.Path)
	require.Len(t, b.Children, 1)
	assert.Equal(t, "a/b/c.txt", b.Children[0].Path)
}

func TestBuildTreeEmptyRepository(t *testing.T) {
	root := buildTree("empty", nil)
	require.NotNil(t, root)
	assert.True(t, root.IsFolder())
	assert.NotNil(t, root.Children, "folders always carry a children slice")
	assert.Empty(t, root.Children)
}
