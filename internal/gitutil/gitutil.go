// Copyright 2025 The cabin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gitutil wraps the go-git operations cabin needs: cloning
// dependencies at a pinned target, initializing new project repos, and
// reading commit information for build-info macros.
package gitutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ShortHashLen is the number of leading hex digits kept for a short
// commit hash.
const ShortHashLen = 8

// Clone clones url into dest. When target is non-empty it is resolved
// as a revision (commit hash, tag, or branch) and checked out with a
// detached HEAD.
func Clone(url, dest, target string) error {
	repo, err := git.PlainClone(dest, false, &git.CloneOptions{URL: url})
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	if target == "" {
		return nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(target))
	if err != nil {
		return fmt.Errorf("resolve `%s` in %s: %w", target, url, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return fmt.Errorf("checkout `%s`: %w", target, err)
	}
	return nil
}

// Init creates a fresh repository at dir.
func Init(dir string) error {
	if _, err := git.PlainInit(dir, false); err != nil {
		return fmt.Errorf("git init %s: %w", dir, err)
	}
	return nil
}

// CommitInfo is the HEAD commit data baked into CABIN_* macros.
type CommitInfo struct {
	Hash      string
	ShortHash string
	Date      string // yyyy-mm-dd
}

// HeadCommit reads HEAD of the repository containing dir. A missing
// repository is an error the caller is expected to tolerate.
func HeadCommit(dir string) (CommitInfo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return CommitInfo{}, err
	}
	head, err := repo.Head()
	if err != nil {
		return CommitInfo{}, err
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return CommitInfo{}, err
	}

	hash := head.Hash().String()
	return CommitInfo{
		Hash:      hash,
		ShortHash: hash[:ShortHashLen],
		Date:      commit.Committer.When.Format("2006-01-02"),
	}, nil
}

// DefaultAuthor returns "Name <email>" from the user's git
// configuration, or "" when unset.
func DefaultAuthor() string {
	cfg, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		return ""
	}
	name := cfg.User.Name
	email := cfg.User.Email
	if name == "" && email == "" {
		return ""
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// IgnoreMatcher matches paths against the project's .gitignore rules.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher reads the .gitignore at root (if any). The .git
// directory itself is always ignored.
func NewIgnoreMatcher(root string) (*IgnoreMatcher, error) {
	patterns := []gitignore.Pattern{
		gitignore.ParsePattern(".git/", nil),
	}

	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, nil))
		}
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// Ignored reports whether the slash-separated relative path is
// excluded.
func (m *IgnoreMatcher) Ignored(relPath string, isDir bool) bool {
	return m.matcher.Match(strings.Split(relPath, "/"), isDir)
}
