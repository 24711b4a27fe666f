// Command vlog manages a causally stamped log stored on disk.
package main

import (
	"os"

	"vectorlog/internal/cli"
)

func main() {
	os.Exit(cli.RunLog(os.Args[1:], os.Stdout, os.Stderr))
}
