// Package main provides the entry point for the eventsnap command-line tool.
package main

import (
	"github.com/joho/godotenv"

	"github.com/mlisowski/eventsnap/internal/cli"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cli.Execute()
}
