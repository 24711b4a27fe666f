// Command vclock creates, advances and checks base64 vector clock stamps.
package main

import (
	"os"

	"vectorlog/internal/cli"
)

func main() {
	os.Exit(cli.RunClock(os.Args[1:], os.Stdout, os.Stderr))
}
