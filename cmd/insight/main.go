// Command insight stores sections and rooms datasets and answers queries
// over them, from the command line or over HTTP.
package main

import (
	"context"
	"os"

	"github.com/roach88/insight/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
