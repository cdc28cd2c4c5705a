package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/repolock/repolock/internal/lock"
	"github.com/repolock/repolock/internal/repo"
	"github.com/repolock/repolock/internal/state"
)

var runShared bool

var runCmd = &cobra.Command{
	Use:     "run [repository] -- command [args...]",
	GroupID: GroupLock,
	Short:   "Run a command while holding the repository lock",
	Long: `Acquire the repository lock, run the given command, and release the
lock when the command exits, on every exit path.

By default the lock is taken exclusively; --shared takes a read lock
instead. If the lock is busy the command is not started and repolock
exits immediately; retrying is up to you.

The child's exit code becomes repolock's exit code.

Examples:
  repolock run ~/backups/main -- borg-compact
  repolock run --shared ~/backups/main -- du -sh .`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dash := cmd.ArgsLenAtDash()
		if dash < 0 || dash > 1 || dash == len(args) {
			return fmt.Errorf("usage: repolock run [repository] -- command [args...]")
		}
		repoArgs, childArgs := args[:dash], args[dash:]

		s := loadSettings()
		path, err := resolveRepoPath(repoArgs, s)
		if err != nil {
			return err
		}
		r, err := repo.Open(path)
		if err != nil {
			return err
		}
		id, err := lock.CurrentIdentity()
		if err != nil {
			return err
		}

		l := r.NewLock(id)
		mode := "exclusive"
		if runShared {
			mode = "shared"
			err = l.LockShared()
		} else {
			err = l.LockExclusive()
		}
		if err != nil {
			return err
		}
		defer l.Close()

		rememberRepo(r.Path, mode)

		child := exec.Command(childArgs[0], childArgs[1:]...)
		child.Stdin = os.Stdin
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr
		if err := child.Run(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
				return nil
			}
			return fmt.Errorf("running %s: %w", childArgs[0], err)
		}
		return nil
	},
}

// rememberRepo records the repository in the recent list. Purely a
// convenience; failures only warn.
func rememberRepo(path, mode string) {
	m, err := state.DefaultManager()
	if err == nil {
		err = m.Touch(path, mode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record recent repository: %v\n", err)
	}
}

func init() {
	runCmd.Flags().BoolVar(&runShared, "shared", false, "take a shared (read) lock instead of exclusive")
	rootCmd.AddCommand(runCmd)
}
