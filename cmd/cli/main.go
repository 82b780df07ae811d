package main

import (
	"fmt"
	"os"

	"github.com/de-tools/tagwarden/pkg/runtime/app"
	"github.com/de-tools/tagwarden/pkg/runtime/terminal"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	cli := terminal.NewCLI(terminal.Options{
		Bootstrap: app.Bootstrap,
		Output:    os.Stdout,
		Errors:    os.Stderr,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
