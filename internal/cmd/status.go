package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/repolock/repolock/internal/lock"
	"github.com/repolock/repolock/internal/repo"
	"github.com/repolock/repolock/internal/style"
)

var statusCmd = &cobra.Command{
	Use:     "status [repository]",
	GroupID: GroupLock,
	Short:   "Show who holds the repository lock",
	Long: `Read the repository's roster file and guard directories and report
the lock state: free, shared (with the list of readers), or exclusive.

This is a read-only peek. It takes no guard and can run while the lock
is held by anyone.

Examples:
  repolock status ~/backups/main
  repolock status --json`,
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

		roster, err := lock.LoadRoster(lock.New(r.Path, r.LockBase(), lock.Identity{}).RosterPath())
		if err != nil {
			return err
		}
		guards, err := lock.InspectGuards(r.Path, r.LockBase())
		if err != nil {
			return err
		}

		jsonFlag, _ := cmd.Flags().GetBool("json")
		if jsonFlag {
			type guardOut struct {
				Kind   string        `json:"kind"`
				Holder string        `json:"holder,omitempty"`
				Age    time.Duration `json:"age_seconds"`
			}
			out := struct {
				Repository string          `json:"repository"`
				Mode       string          `json:"mode"`
				Holders    []lock.Identity `json:"holders,omitempty"`
				Guards     []guardOut      `json:"guards,omitempty"`
			}{Repository: r.Path, Mode: roster.Mode().String()}
			out.Holders = roster.Holders()
			now := time.Now()
			for _, g := range guards {
				item := guardOut{Kind: g.Kind, Age: g.Age(now) / time.Second}
				if g.HolderKnown {
					item.Holder = g.Holder.Filename()
				}
				out.Guards = append(out.Guards, item)
			}
			return printJSON(out)
		}

		printStatus(r, roster, guards, colorEnabled(s))
		return nil
	},
}

func printStatus(r *repo.Repository, roster *lock.Roster, guards []lock.GuardInfo, color bool) {
	mode := roster.Mode().String()
	display := mode
	if roster.Mode() == lock.ModeNone {
		display = "free"
	}
	if color {
		display = style.ForMode(mode).Render(display)
	}
	fmt.Printf("%s: %s\n", r.Path, display)

	if holders := roster.Holders(); len(holders) > 0 {
		t := style.NewTable("HOST", "PID", "IDENTITY")
		for _, h := range holders {
			t.AddRow(h.Host, strconv.Itoa(h.Pid), h.Filename())
		}
		fmt.Print(t.Render())
	}

	now := time.Now()
	for _, g := range guards {
		holder := "unknown holder"
		if g.HolderKnown {
			holder = g.Holder.Filename()
		}
		line := fmt.Sprintf("  guard %s: %s, %s old", g.Kind, holder, g.Age(now).Round(time.Second))
		if g.Kind == "mutate" {
			// A visible mutate guard means a roster update is in flight
			// or a process crashed mid-mutation.
			line += " (roster mutation in progress?)"
		}
		fmt.Println(line)
	}
}

func init() {
	statusCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}
