// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package githost is the repository data collaborator: a GitHub REST v3
// client that fetches repository metadata, the full file tree, and raw
// file contents, with passive rate-limit bookkeeping.
package githost

import (
	"path"
	"sort"
	"strings"
)

// NodeType distinguishes file tree entries.
type NodeType string

const (
	// NodeFile is a leaf entry with content.
	NodeFile NodeType = "file"

	// NodeFolder is a directory entry. Folders always carry a Children
	// slice, possibly empty; files never do.
	NodeFolder NodeType = "folder"
)

// RepoInfo is an immutable snapshot of repository metadata, fetched once
// per exploration.
type RepoInfo struct {
	Owner         string `json:"owner"`
	Repo          string `json:"repo"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	Language      string `json:"language"`
	DefaultBranch string `json:"default_branch"`
	HTMLURL       string `json:"html_url"`
}

// FileNode is one node of the hierarchical file/folder structure.
//
// Path is a stable unique identifier within a tree and is usable as a
// cache and lookup key.
type FileNode struct {
	Name      string      `json:"name"`
	Path      string      `json:"path"`
	Type      NodeType    `json:"type"`
	Children  []*FileNode `json:"children,omitempty"`
	Size      int64       `json:"size,omitempty"`
	Extension string      `json:"extension,omitempty"`
}

// IsFile reports whether the node is a leaf file entry.
func (n *FileNode) IsFile() bool {
	return n != nil && n.Type == NodeFile
}

// IsFolder reports whether the node is a directory entry.
func (n *FileNode) IsFolder() bool {
	return n != nil && n.Type == NodeFolder
}

// Find returns the node with the given path, or nil.
func (n *FileNode) Find(p string) *FileNode {
	if n == nil {
		return nil
	}
	if n.Path == p {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(p); found != nil {
			return found
		}
	}
	return nil
}

// treeEntry is one flat entry of the git trees API response.
type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
	Size int64  `json:"size"`
}

// buildTree assembles the flat recursive-tree listing into a FileNode
// hierarchy rooted at the repository name. Entries are attached to their
// parent folder; folders that only appear implicitly (a blob deeper than
// any listed tree entry) are created on demand.
func buildTree(rootName string, entries []treeEntry) *FileNode {
	root := &FileNode{
		Name:     rootName,
		Path:     "",
		Type:     NodeFolder,
		Children: []*FileNode{},
	}
	folders := map[string]*FileNode{"": root}

	folderFor := func(p string) *FileNode {
		if n, ok := folders[p]; ok {
			return n
		}
		// Create missing ancestors from the top down.
		parts := strings.Split(p, "/")
		cur := root
		prefix := ""
		for _, part := range parts {
			if prefix == "" {
				prefix = part
			} else {
				prefix = prefix + "/" + part
			}
			next, ok := folders[prefix]
			if !ok {
				next = &FileNode{
					Name:     part,
					Path:     prefix,
					Type:     NodeFolder,
					Children: []*FileNode{},
				}
				folders[prefix] = next
				cur.Children = append(cur.Children, next)
			}
			cur = next
		}
		return cur
	}

	for _, e := range entries {
		parentPath := ""
		if i := strings.LastIndex(e.Path, "/"); i >= 0 {
			parentPath = e.Path[:i]
		}
		switch e.Type {
		case "tree":
			folderFor(e.Path)
		case "blob":
			parent := folderFor(parentPath)
			parent.Children = append(parent.Children, &FileNode{
				Name:      path.Base(e.Path),
				Path:      e.Path,
				Type:      NodeFile,
				Size:      e.Size,
				Extension: strings.TrimPrefix(path.Ext(e.Path), "."),
			})
		}
	}

	sortTree(root)
	return root
}

// sortTree orders children folders-first, then alphabetically, recursively.
func sortTree(n *FileNode) {
	if n == nil || n.Children == nil {
		return
	}
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Type != b.Type {
			return a.Type == NodeFolder
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, c := range n.Children {
		sortTree(c)
	}
}
