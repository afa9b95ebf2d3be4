// Command rhxd runs the Hotline Connect server core.
package main

import (
	"fmt"
	"os"

	"github.com/rhxd/rhxd/cmd/rhxd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
