package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Charles8li/weekly-calendar/internal/cli"
)

func main() {
	// Optional .env next to the binary; absence is not an error.
	_ = godotenv.Load()

	if err := cli.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
