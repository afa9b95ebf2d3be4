// Command rhxdctl administers an rhxd account store: creating, listing,
// and adjusting named accounts without a running server connection.
package main

import (
	"fmt"
	"os"

	"github.com/rhxd/rhxd/cmd/rhxdctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
