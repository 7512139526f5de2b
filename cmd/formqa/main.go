// cmd/formqa/main.go
package main

import (
	"os"

	"formqa/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
