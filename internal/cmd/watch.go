package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/repolock/repolock/internal/repo"
	"github.com/repolock/repolock/internal/tui/watch"
)

var watchCmd = &cobra.Command{
	Use:     "watch [repository]",
	GroupID: GroupDiag,
	Short:   "Watch the repository lock state live",
	Long: `Open a full-screen view that re-reads the roster and guard
directories every second. Useful while waiting for another process to
finish with the repository, or to spot a stale guard.

Press r to refresh immediately, q to quit.`,
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

		p := tea.NewProgram(watch.NewModel(r.Path, r.LockBase()), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("watch TUI: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
