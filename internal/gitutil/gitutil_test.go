// Copyright 2025 The cabin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gitutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Init(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		t.Errorf("missing .git: %v", err)
	}
}

func TestHeadCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("file.txt"); err != nil {
		t.Fatal(err)
	}
	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "t", Email: "t@example.com", When: when},
	})
	if err != nil {
		t.Fatal(err)
	}

	info, err := HeadCommit(dir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Hash != hash.String() {
		t.Errorf("Hash = %q, want %q", info.Hash, hash)
	}
	if info.ShortHash != hash.String()[:ShortHashLen] {
		t.Errorf("ShortHash = %q", info.ShortHash)
	}
	if info.Date != "2025-06-01" {
		t.Errorf("Date = %q", info.Date)
	}

	// Subdirectories resolve to the enclosing repository.
	sub := filepath.Join(dir, "src")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := HeadCommit(sub); err != nil {
		t.Errorf("HeadCommit(subdir): %v", err)
	}
}

func TestHeadCommitOutsideRepo(t *testing.T) {
	if _, err := HeadCommit(t.TempDir()); err == nil {
		t.Error("HeadCommit outside a repository succeeded")
	}
}

func TestIgnoreMatcher(t *testing.T) {
	dir := t.TempDir()
	ignore := "/cabin-out\n# comment\n*.o\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(ignore), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewIgnoreMatcher(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Ignored("cabin-out", true) {
		t.Error("cabin-out not ignored")
	}
	if !m.Ignored("src/main.o", false) {
		t.Error("*.o not ignored")
	}
	if !m.Ignored(".git", true) {
		t.Error(".git not ignored")
	}
	if m.Ignored("src/main.cc", false) {
		t.Error("src/main.cc ignored")
	}
}

func TestIgnoreMatcherNoGitignore(t *testing.T) {
	m, err := NewIgnoreMatcher(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if m.Ignored("src/main.cc", false) {
		t.Error("path ignored without .gitignore")
	}
}
