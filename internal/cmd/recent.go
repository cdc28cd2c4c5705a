package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/repolock/repolock/internal/state"
	"github.com/repolock/repolock/internal/style"
)

var recentCmd = &cobra.Command{
	Use:     "recent",
	GroupID: GroupDiag,
	Short:   "List recently locked repositories",
	Long: `Show repositories this user has recently locked through repolock,
newest first. The list is local convenience state, not repository data.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := state.DefaultManager()
		if err != nil {
			return err
		}
		r, err := m.Load()
		if err != nil {
			return err
		}
		if len(r.Repositories) == 0 {
			fmt.Println("no repositories recorded yet")
			return nil
		}

		jsonFlag, _ := cmd.Flags().GetBool("json")
		if jsonFlag {
			return printJSON(r.Repositories)
		}

		t := style.NewTable("REPOSITORY", "LAST MODE", "LAST USED")
		for _, e := range r.Repositories {
			t.AddRow(e.Path, e.LastMode, e.LastUsed.Format(time.DateTime))
		}
		fmt.Print(t.Render())
		return nil
	},
}

func init() {
	recentCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(recentCmd)
}
