package buildcfg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/cabinpkg/cabin/internal/command"
	"github.com/cabinpkg/cabin/internal/diag"
	"github.com/cabinpkg/cabin/internal/project"
)

// MakeCommand builds the make invocation used to execute the generated
// Makefile.
func MakeCommand(jobs int) *command.Command {
	cmd := command.New("make")
	if !diag.IsVerbose() {
		cmd.AddArg("-s").AddArg("--no-print-directory").AddArg("Q=@")
	}
	if diag.IsQuiet() {
		cmd.AddArg("QUIET=1")
	}
	if jobs > 1 {
		cmd.AddArg(fmt.Sprintf("-j%d", jobs))
	}
	return cmd
}

// GenerateMakefile installs dependencies, regenerates the Makefile
// (and the compile database when the profile asks for one) unless they
// are fresh, and returns the configuration for the caller to run make
// against.
func GenerateMakefile(proj *project.Project, includeDevDeps bool, jobs int) (*BuildConfig, error) {
	config := New(proj, jobs)

	// Building also needs the dependencies on disk, so install here
	// even when everything is up to date.
	if err := proj.InstallDeps(includeDevDeps); err != nil {
		return nil, err
	}

	profile := proj.Manifest.Profiles[string(proj.Profile)]

	buildProj := false
	if config.MakefileIsUpToDate() {
		log.Debug().Msg("Makefile is up to date")
	} else {
		log.Debug().Msg("Makefile is NOT up to date")
		buildProj = true
	}
	buildCompDb := false
	if profile.CompDb {
		if config.CompdbIsUpToDate() {
			log.Debug().Msg("compile_commands.json is up to date")
		} else {
			log.Debug().Msg("compile_commands.json is NOT up to date")
			buildCompDb = true
		}
	}
	if !buildProj && !buildCompDb {
		// Building is still delegated to make; it just reuses the
		// existing Makefile.
		if err := config.detectTargets(); err != nil {
			return nil, err
		}
		return config, nil
	}

	if err := config.ConfigureBuild(); err != nil {
		return nil, err
	}

	if buildProj {
		if err := writeWith(config.Project.OutBasePath, "Makefile", config.EmitMakefile); err != nil {
			return nil, err
		}
	}
	if buildCompDb {
		if err := writeWith(config.Project.OutBasePath, "compile_commands.json", config.EmitCompdb); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// GenerateCompdb regenerates only the compilation database and returns
// the directory containing it.
func GenerateCompdb(proj *project.Project, includeDevDeps bool, jobs int) (string, error) {
	config := New(proj, jobs)

	// The database needs INCLUDES from the dependencies, but not LIBS.
	if err := proj.InstallDeps(includeDevDeps); err != nil {
		return "", err
	}

	if config.CompdbIsUpToDate() {
		log.Debug().Msg("compile_commands.json is up to date")
		return config.Project.OutBasePath, nil
	}
	log.Debug().Msg("compile_commands.json is NOT up to date")

	if err := config.ConfigureBuild(); err != nil {
		return "", err
	}
	if err := writeWith(config.Project.OutBasePath, "compile_commands.json", config.EmitCompdb); err != nil {
		return "", err
	}
	return config.Project.OutBasePath, nil
}

// writeWith streams a generated artifact to a file. On any emission
// error (a cyclic graph, say) the partial file is removed.
func writeWith(dir, name string, emit func(w io.Writer) error) error {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := emit(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
