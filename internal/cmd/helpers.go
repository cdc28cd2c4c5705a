package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/repolock/repolock/internal/settings"
	"github.com/repolock/repolock/internal/util"
)

// loadSettings reads the tool settings, falling back to defaults with a
// warning if the file is broken. A bad settings file shouldn't brick every
// command.
func loadSettings() *settings.Settings {
	s, err := settings.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		return settings.Default()
	}
	return s
}

// resolveRepoPath picks the repository path from the command args, falling
// back to the settings default.
func resolveRepoPath(args []string, s *settings.Settings) (string, error) {
	if len(args) > 0 {
		return util.ExpandHome(args[0]), nil
	}
	if s.DefaultRepository != "" {
		return util.ExpandHome(s.DefaultRepository), nil
	}
	return "", fmt.Errorf("no repository given and no default_repository configured in %s", settings.Path())
}

// colorEnabled decides whether styled output should be used.
func colorEnabled(s *settings.Settings) bool {
	switch s.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
