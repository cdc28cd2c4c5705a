// repolock is the CLI for coordinating access to shared on-disk repositories.
package main

import (
	"os"

	"github.com/repolock/repolock/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
