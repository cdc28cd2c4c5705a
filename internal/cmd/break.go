package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/repolock/repolock/internal/lock"
	"github.com/repolock/repolock/internal/repo"
	"github.com/repolock/repolock/internal/style"
)

var breakForce bool

var breakCmd = &cobra.Command{
	Use:     "break [repository]",
	GroupID: GroupDiag,
	Short:   "Inspect and break stale lock guards",
	Long: `List guard directories left behind by crashed processes and, with
--force, remove them and scrub their holders from the roster.

A guard is reported breakable only under a conservative policy: its
recorded holder is on this host and that pid is no longer alive, or the
guard is older than stale_max_age from the settings file. Guards held
by live or unverifiable processes are never touched. Without --force
nothing is modified.

Breaking a guard whose holder is actually alive destroys the lock's
guarantee. Only force this when you know the holder is gone.

Examples:
  repolock break ~/backups/main
  repolock break --force ~/backups/main`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := loadSettings()
		path, err := resolveRepoPath(args, s)
		if err != nil {
			return err
		}
		r, err := repo.Open(path)
		if err != nil {
			return err
		}

		guards, err := lock.InspectGuards(r.Path, r.LockBase())
		if err != nil {
			return err
		}
		if len(guards) == 0 {
			fmt.Println("no guard directories present")
			return nil
		}

		self, err := lock.CurrentIdentity()
		if err != nil {
			return err
		}
		policy := lock.BreakPolicy{
			MaxAge:    s.StaleMaxAge.Duration,
			LocalHost: self.Host,
		}

		now := time.Now()
		broke := 0
		for _, g := range guards {
			ok, reason := policy.Breakable(g, now)
			if !ok {
				holder := "unknown holder"
				if g.HolderKnown {
					holder = g.Holder.Filename()
				}
				fmt.Printf("keeping %s (%s, %s old)\n", g.Dir, holder, g.Age(now).Round(time.Second))
				continue
			}

			if !breakForce {
				fmt.Printf("%s %s: %s\n", style.Warn.Render("breakable"), g.Dir, reason)
				continue
			}

			if err := lock.BreakGuard(g); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				continue
			}
			if g.HolderKnown {
				if err := lock.ScrubHolder(r.Path, r.LockBase(), g.Holder, self); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: scrubbing roster: %v\n", err)
				}
			}
			fmt.Printf("broke %s: %s\n", g.Dir, reason)
			broke++
		}

		if !breakForce && broke == 0 {
			fmt.Println("run again with --force to remove breakable guards")
		}
		return nil
	},
}

func init() {
	breakCmd.Flags().BoolVar(&breakForce, "force", false, "actually remove breakable guards")
	rootCmd.AddCommand(breakCmd)
}
