// Package project combines a manifest, a build profile, and the
// environment into a concrete compiler configuration and output
// layout.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cabinpkg/cabin/internal/compiler"
	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/gitutil"
	"github.com/cabinpkg/cabin/internal/manifest"
)

// ProfileName selects dev or release.
type ProfileName string

const (
	Dev     ProfileName = "dev"
	Release ProfileName = "release"
)

// FromDebugFlag maps the -d/-r CLI switches onto a profile name.
func FromDebugFlag(isDebug bool) ProfileName {
	if isDebug {
		return Dev
	}
	return Release
}

// OutDirName is the profile's directory under cabin-out.
func (p ProfileName) OutDirName() string {
	if p == Dev {
		return "debug"
	}
	return "release"
}

// Project is the resolved build context for one manifest + profile.
type Project struct {
	Manifest *manifest.Manifest
	Profile  ProfileName
	Compiler *compiler.Compiler

	// OutBasePath is <root>/cabin-out/<debug|release>.
	OutBasePath string
	// BuildOutPath is <OutBasePath>/<pkgname>.d, holding production
	// objects.
	BuildOutPath string
	// UnittestOutPath is <OutBasePath>/unittests.
	UnittestOutPath string
	// LibName is the static archive file name.
	LibName string
}

// Init detects the compiler and assembles the base CFlags shared by
// every profile: the language standard, diagnostics color, and the
// project's own include directory.
func Init(m *manifest.Manifest, profile ProfileName) (*Project, error) {
	cxx, err := compiler.Detect()
	if err != nil {
		return nil, err
	}

	root := m.ProjectRoot()
	outBase := filepath.Join(root, "cabin-out", profile.OutDirName())

	libName := m.Package.Name + ".a"
	if !strings.HasPrefix(m.Package.Name, "lib") {
		libName = "lib" + libName
	}

	p := &Project{
		Manifest:        m,
		Profile:         profile,
		Compiler:        cxx,
		OutBasePath:     outBase,
		BuildOutPath:    filepath.Join(outBase, m.Package.Name+".d"),
		UnittestOutPath: filepath.Join(outBase, "unittests"),
		LibName:         libName,
	}

	cf := &p.Compiler.Opts.CFlags
	cf.Others = append(cf.Others, "-std=c++"+m.Package.Edition.Str)
	if diag.ShouldColorStderr() {
		cf.Others = append(cf.Others, "-fdiagnostics-color")
	}
	if includeDir := filepath.Join(root, "include"); dirExists(includeDir) {
		cf.IncludeDirs = append(cf.IncludeDirs,
			compiler.IncludeDir{Dir: includeDir, IsSystem: false})
	}

	p.applyProfile()
	return p, nil
}

// applyProfile layers the selected profile's flags, the environment
// overrides, and the built-in CABIN_* macros onto the compiler.
func (p *Project) applyProfile() {
	prof := p.Manifest.Profiles[string(p.Profile)]
	opts := &p.Compiler.Opts

	if prof.Debug {
		opts.CFlags.Others = append(opts.CFlags.Others, "-g")
		opts.CFlags.Macros = append(opts.CFlags.Macros, compiler.Macro{Name: "DEBUG"})
	} else {
		opts.CFlags.Macros = append(opts.CFlags.Macros, compiler.Macro{Name: "NDEBUG"})
	}
	opts.CFlags.Others = append(opts.CFlags.Others, fmt.Sprintf("-O%d", prof.OptLevel))
	if prof.LTO {
		opts.CFlags.Others = append(opts.CFlags.Others, "-flto")
	}
	opts.CFlags.Others = append(opts.CFlags.Others, prof.Cxxflags...)
	// Environment variables take the highest precedence and are
	// appended last.
	opts.CFlags.Others = append(opts.CFlags.Others, envFlags("CXXFLAGS")...)

	opts.CFlags.Macros = append(opts.CFlags.Macros, p.builtinMacros()...)

	opts.LdFlags.Others = append(opts.LdFlags.Others, prof.Ldflags...)
	opts.LdFlags.Others = append(opts.LdFlags.Others, envFlags("LDFLAGS")...)
}

// builtinMacros are the CABIN_<PKG>_* definitions cabin provides to
// the compiled code.
func (p *Project) builtinMacros() []compiler.Macro {
	pkg := p.Manifest.Package
	pkgMacro := ToMacroName(pkg.Name)

	var commit gitutil.CommitInfo
	if info, err := gitutil.HeadCommit(p.Manifest.ProjectRoot()); err == nil {
		commit = info
	} else {
		log.Trace().Msg("No git repository found")
	}

	// String values are single-quoted then double-quoted so they reach
	// the preprocessor as string literals.
	quoted := func(s string) string { return `'"` + s + `"'` }
	num := func(n uint64) string { return fmt.Sprintf("%d", n) }

	defs := []struct {
		key   string
		value string
	}{
		{"PKG_NAME", quoted(pkg.Name)},
		{"PKG_VERSION", quoted(pkg.Version.String())},
		{"PKG_VERSION_MAJOR", num(pkg.Version.Major)},
		{"PKG_VERSION_MINOR", num(pkg.Version.Minor)},
		{"PKG_VERSION_PATCH", num(pkg.Version.Patch)},
		{"PKG_VERSION_PRE", quoted(pkg.Version.Pre.String())},
		{"COMMIT_HASH", quoted(commit.Hash)},
		{"COMMIT_SHORT_HASH", quoted(commit.ShortHash)},
		{"COMMIT_DATE", quoted(commit.Date)},
		{"PROFILE", quoted(string(p.Profile))},
	}

	macros := make([]compiler.Macro, 0, len(defs))
	for _, def := range defs {
		macros = append(macros, compiler.Macro{
			Name:  fmt.Sprintf("CABIN_%s_%s", pkgMacro, def.key),
			Value: def.value,
		})
	}
	return macros
}

// InstallDeps installs the manifest's dependencies and merges their
// options into the compiler.
func (p *Project) InstallDeps(includeDevDeps bool) error {
	depOpts, err := p.Manifest.InstallDeps(includeDevDeps)
	if err != nil {
		return err
	}
	for _, opts := range depOpts {
		p.Compiler.Opts.Merge(opts)
	}
	return nil
}

// ToMacroName uppercases letters and folds everything else but digits
// into underscores, producing a valid macro fragment.
func ToMacroName(name string) string {
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			sb.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
