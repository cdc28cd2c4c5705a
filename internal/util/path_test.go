package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	cases := map[string]string{
		"~/backups/main": filepath.Join(home, "backups/main"),
		"~":              home,
		"/abs/path":      "/abs/path",
		"relative/path":  "relative/path",
		"~user/path":     "~user/path",
		"":               "",
	}
	for in, want := range cases {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
