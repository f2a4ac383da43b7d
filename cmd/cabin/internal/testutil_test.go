package internal

import (
	"os"
	"testing"
)

// chdirT changes the working directory to dir for the duration of the test,
// restoring the original directory on cleanup.
func chdirT(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(old)
	})
}
