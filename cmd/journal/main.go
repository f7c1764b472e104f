package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"trading-journal/internal/cli"
)

func main() {
	// A missing .env is fine; JOURNAL_* variables may come from the shell.
	_ = godotenv.Load()

	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
