// Command resource-cli manages the data sources and events of a site from
// the terminal. It drives the same handlers as the admin's index pages.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
