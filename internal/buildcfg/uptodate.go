package buildcfg

import (
	"os"
	"path/filepath"

	"github.com/cabinpkg/cabin/internal/manifest"
)

// isUpToDate reports whether the artifact under outBasePath is newer
// than every file under src/ and the manifest itself.
func (c *BuildConfig) isUpToDate(fileName string) bool {
	artifact := filepath.Join(c.Project.OutBasePath, fileName)
	info, err := os.Stat(artifact)
	if err != nil {
		return false
	}
	artifactTime := info.ModTime()

	stale := false
	_ = filepath.WalkDir(c.srcDir(), func(path string, d os.DirEntry, err error) error {
		if err != nil || stale {
			return err
		}
		entryInfo, err := d.Info()
		if err != nil {
			return err
		}
		if entryInfo.ModTime().After(artifactTime) {
			stale = true
		}
		return nil
	})
	if stale {
		return false
	}

	manifestInfo, err := os.Stat(filepath.Join(c.Project.Manifest.ProjectRoot(), manifest.FileName))
	if err != nil {
		return false
	}
	return !manifestInfo.ModTime().After(artifactTime)
}

// MakefileIsUpToDate reports whether the generated Makefile is fresh.
func (c *BuildConfig) MakefileIsUpToDate() bool {
	return c.isUpToDate("Makefile")
}

// CompdbIsUpToDate reports whether compile_commands.json is fresh.
func (c *BuildConfig) CompdbIsUpToDate() bool {
	return c.isUpToDate("compile_commands.json")
}
