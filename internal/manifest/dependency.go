package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/cabinpkg/cabin/internal/compiler"
	"github.com/cabinpkg/cabin/internal/gitutil"
	"github.com/cabinpkg/cabin/internal/semver"
)

// Dependency is one entry of [dependencies]: git, path, or system.
// Install makes the dependency available locally and reports the
// compiler options it contributes.
type Dependency interface {
	Name() string
	Install() (compiler.CompilerOptions, error)
}

// gitCacheDir is where git dependencies are cloned:
// $XDG_CACHE_HOME (or $HOME/.cache) /cabin/git/src.
func gitCacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, "cabin", "git", "src"), nil
}

// includeOptions points a -isystem include at <dir>/include when that
// directory exists non-empty, else at <dir> itself.
func includeOptions(installDir string) compiler.CompilerOptions {
	includeDir := filepath.Join(installDir, "include")
	dir := installDir
	if entries, err := os.ReadDir(includeDir); err == nil && len(entries) > 0 {
		dir = includeDir
	}
	return compiler.CompilerOptions{
		CFlags: compiler.CFlags{
			IncludeDirs: []compiler.IncludeDir{{Dir: dir, IsSystem: true}},
		},
	}
}

func dirExistsNonEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// GitDependency is fetched by cloning a repository, optionally pinned
// to a rev, tag, or branch.
type GitDependency struct {
	DepName string
	URL     string
	Target  string // rev, tag, or branch; empty for default HEAD
}

func (d GitDependency) Name() string { return d.DepName }

func (d GitDependency) Install() (compiler.CompilerOptions, error) {
	cacheDir, err := gitCacheDir()
	if err != nil {
		return compiler.CompilerOptions{}, err
	}
	installDir := filepath.Join(cacheDir, d.DepName)
	if d.Target != "" {
		installDir += "-" + d.Target
	}

	if dirExistsNonEmpty(installDir) {
		log.Debug().Msgf("%s is already installed", d.DepName)
	} else {
		if err := gitutil.Clone(d.URL, installDir, d.Target); err != nil {
			return compiler.CompilerOptions{}, err
		}
		what := d.URL
		if d.Target != "" {
			what = d.Target
		}
		log.Info().Msgf("Downloaded %s %s", d.DepName, what)
	}

	// No libs are supported for git dependencies; they are consumed
	// header-only.
	return includeOptions(installDir), nil
}

// PathDependency points at a local directory.
type PathDependency struct {
	DepName string
	Path    string
}

func (d PathDependency) Name() string { return d.DepName }

func (d PathDependency) Install() (compiler.CompilerOptions, error) {
	installDir, err := filepath.Abs(d.Path)
	if err != nil {
		return compiler.CompilerOptions{}, err
	}
	if resolved, err := filepath.EvalSymlinks(installDir); err == nil {
		installDir = resolved
	}

	if !dirExistsNonEmpty(installDir) {
		return compiler.CompilerOptions{}, fmt.Errorf(
			"%s can't be accessible as directory", installDir)
	}
	log.Debug().Msgf("%s is already installed", d.DepName)
	return includeOptions(installDir), nil
}

// SystemDependency is resolved through pkg-config.
type SystemDependency struct {
	DepName    string
	VersionReq semver.VersionReq
}

func (d SystemDependency) Name() string { return d.DepName }

func (d SystemDependency) Install() (compiler.CompilerOptions, error) {
	return compiler.ParsePkgConfig(d.VersionReq, d.DepName)
}

// InstallDeps installs every dependency in order and returns the
// compiler options each contributed.
func (m *Manifest) InstallDeps(includeDevDeps bool) ([]compiler.CompilerOptions, error) {
	deps := m.Dependencies
	if includeDevDeps {
		deps = append(append([]Dependency{}, deps...), m.DevDependencies...)
	}

	installed := make([]compiler.CompilerOptions, 0, len(deps))
	for _, dep := range deps {
		opts, err := dep.Install()
		if err != nil {
			return nil, fmt.Errorf("install dependency `%s`: %w", dep.Name(), err)
		}
		installed = append(installed, opts)
	}
	return installed, nil
}
