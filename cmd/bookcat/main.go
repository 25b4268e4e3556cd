// Command bookcat manages a book catalogue whose dates may be partial.
package main

import (
	"os"

	"github.com/roach88/bookcat/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
