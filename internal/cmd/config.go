package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repolock/repolock/internal/repo"
	"github.com/repolock/repolock/internal/style"
)

var configCmd = &cobra.Command{
	Use:     "config [repository]",
	GroupID: GroupRepo,
	Short:   "Dump the parsed repository config",
	Long: `Parse the repository's config file and print its ordered (key, value)
pairs. Section headers appear as entries with an empty key. Binary blob
values are summarized by size, not printed raw.

Examples:
  repolock config ~/backups/main
  repolock config --json ~/backups/main`,
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

		jsonFlag, _ := cmd.Flags().GetBool("json")
		if jsonFlag {
			type pair struct {
				Key   string `json:"key"`
				Kind  string `json:"kind"`
				Value string `json:"value"`
			}
			var out []pair
			for _, e := range r.Entries() {
				out = append(out, pair{Key: e.Key, Kind: e.Value.Kind().String(), Value: e.Value.String()})
			}
			return printJSON(out)
		}

		for _, e := range r.Entries() {
			if e.IsSection() {
				name, _ := e.Value.Text()
				fmt.Println(style.Header.Render("[" + name + "]"))
				continue
			}
			fmt.Printf("%s = %s\n", e.Key, e.Value)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(configCmd)
}
