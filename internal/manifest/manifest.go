// Package manifest loads and validates cabin.toml.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"github.com/cabinpkg/cabin/internal/semver"
)

// FileName is the manifest file cabin looks for.
const FileName = "cabin.toml"

// Package is the [package] table.
type Package struct {
	Name    string
	Edition Edition
	Version semver.Version
}

// Cpplint is the [lint.cpplint] table.
type Cpplint struct {
	Filters []string
}

// Lint is the [lint] table.
type Lint struct {
	Cpplint Cpplint
}

// Manifest is the fully validated cabin.toml. Immutable after load.
type Manifest struct {
	Path            string // absolute path of the manifest file
	Package         Package
	Dependencies    []Dependency
	DevDependencies []Dependency
	Profiles        map[string]Profile
	Lint            Lint
}

// ProjectRoot is the directory containing the manifest.
func (m *Manifest) ProjectRoot() string {
	return filepath.Dir(m.Path)
}

// rawDependency is one inline dependency table before classification.
type rawDependency struct {
	Git     string `toml:"git"`
	Rev     string `toml:"rev"`
	Tag     string `toml:"tag"`
	Branch  string `toml:"branch"`
	Path    string `toml:"path"`
	Version string `toml:"version"`
	System  bool   `toml:"system"`
}

type rawManifest struct {
	Package struct {
		Name    string   `toml:"name"`
		Edition string   `toml:"edition"`
		Version string   `toml:"version"`
		Authors []string `toml:"authors"`
	} `toml:"package"`
	Dependencies    map[string]rawDependency `toml:"dependencies"`
	DevDependencies map[string]rawDependency `toml:"dev-dependencies"`
	Profile         rawProfileTable          `toml:"profile"`
	Lint            struct {
		Cpplint struct {
			Filters []string `toml:"filters"`
		} `toml:"cpplint"`
	} `toml:"lint"`
}

// Find ascends from startDir toward the filesystem root looking for
// cabin.toml and returns its path.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		log.Trace().Msgf("Finding manifest: %s", candidate)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("could not find `%s` here and in its parents", FileName)
}

// Parse loads the manifest at path. With findParents it first ascends
// from path's directory to locate the nearest cabin.toml.
func Parse(path string, findParents bool) (*Manifest, error) {
	if findParents {
		found, err := Find(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return FromToml(data, abs)
}

// FromToml validates a raw manifest document in full.
func FromToml(data []byte, path string) (*Manifest, error) {
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := ValidatePackageName(raw.Package.Name); err != nil {
		return nil, err
	}
	edition, err := EditionFromString(raw.Package.Edition)
	if err != nil {
		return nil, err
	}
	version, err := semver.Parse(raw.Package.Version)
	if err != nil {
		return nil, err
	}

	deps, err := parseDependencies(raw.Dependencies)
	if err != nil {
		return nil, err
	}
	devDeps, err := parseDependencies(raw.DevDependencies)
	if err != nil {
		return nil, err
	}

	profiles, err := parseProfiles(raw.Profile)
	if err != nil {
		return nil, err
	}

	return &Manifest{
		Path: path,
		Package: Package{
			Name:    raw.Package.Name,
			Edition: edition,
			Version: version,
		},
		Dependencies:    deps,
		DevDependencies: devDeps,
		Profiles:        profiles,
		Lint: Lint{
			Cpplint: Cpplint{Filters: raw.Lint.Cpplint.Filters},
		},
	}, nil
}

// parseDependencies classifies each entry as git, system, or path, in
// that precedence order, and validates its name. Entries are sorted by
// name so installation order is deterministic.
func parseDependencies(raw map[string]rawDependency) ([]Dependency, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]Dependency, 0, len(raw))
	for _, name := range names {
		if err := ValidateDepName(name); err != nil {
			return nil, err
		}
		info := raw[name]

		switch {
		case info.Git != "":
			target := ""
			// rev wins over tag wins over branch.
			for _, t := range []string{info.Rev, info.Tag, info.Branch} {
				if t != "" {
					target = t
					break
				}
			}
			deps = append(deps, GitDependency{DepName: name, URL: info.Git, Target: target})
		case info.System:
			if info.Version == "" {
				return nil, fmt.Errorf(
					"system dependency `%s` requires a `version` string", name)
			}
			req, err := semver.ParseVersionReq(info.Version)
			if err != nil {
				return nil, err
			}
			deps = append(deps, SystemDependency{DepName: name, VersionReq: req})
		case info.Path != "":
			deps = append(deps, PathDependency{DepName: name, Path: info.Path})
		default:
			return nil, fmt.Errorf(
				"Only Git dependency, path dependency, and system dependency are supported for now: %s",
				name)
		}
	}
	return deps, nil
}
