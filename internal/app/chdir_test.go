package app

import (
	"os"
	"testing"
)

// chdir mirrors testing.T.Chdir (added in Go 1.24) for older toolchains:
// it changes into dir, updates PWD, and restores both on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	oldPwd, hadPwd := os.LookupEnv("PWD")
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	os.Setenv("PWD", dir)
	t.Cleanup(func() {
		if hadPwd {
			os.Setenv("PWD", oldPwd)
		} else {
			os.Unsetenv("PWD")
		}
		if err := os.Chdir(oldWd); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}
