package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repolock/repolock/internal/lock"
)

var idCmd = &cobra.Command{
	Use:     "id",
	GroupID: GroupDiag,
	Short:   "Show the identity this process would lock as",
	Long: `Print the process identity used for lock bookkeeping: hostname,
pid and the reserved sub-id, plus the filename-safe form that appears
as the guard marker and in roster entries.

Examples:
  repolock id
  repolock id --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := lock.CurrentIdentity()
		if err != nil {
			return err
		}

		jsonFlag, _ := cmd.Flags().GetBool("json")
		if jsonFlag {
			return printJSON(id)
		}

		triple, err := json.Marshal(id)
		if err != nil {
			return err
		}
		fmt.Printf("identity: %s\n", triple)
		fmt.Printf("filename: %s\n", id.Filename())
		return nil
	},
}

func init() {
	idCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(idCmd)
}
