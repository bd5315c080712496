// Package main provides the pantry command line client: ingredient
// selection, recipe search, session and favorites management, plus the
// local stub backend and the ops server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment and config file still apply
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		os.Exit(1)
	}
}
