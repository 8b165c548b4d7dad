package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/rcliao/scriptsync/internal/cli"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
