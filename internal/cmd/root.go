// Package cmd implements the repolock CLI command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version and Build are stamped at link time via -ldflags.
var (
	Version = "0.1.0-dev"
	Build   = "source"
)

// Command group IDs for help output.
const (
	GroupLock = "lock"
	GroupRepo = "repo"
	GroupDiag = "diag"
)

var rootCmd = &cobra.Command{
	Use:   "repolock",
	Short: "Coordinate access to a shared on-disk repository",
	Long: `repolock coordinates shared and exclusive access to an on-disk
repository among unrelated processes, using only filesystem primitives:
an atomically created guard directory plus a roster file recording the
current holders.

Acquisition never waits. A busy lock fails immediately and retrying is
the caller's decision.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode lets subcommands (notably `run`) forward a child's exit status
// without treating it as a repolock error.
var exitCode int

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Build)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return exitCode
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupLock, Title: "Lock Commands:"},
		&cobra.Group{ID: GroupRepo, Title: "Repository Commands:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostic Commands:"},
	)
}
