// Package main is the entry point for searchctl.
package main

import (
	"log"
	"os"

	"github.com/Ayash-Bera/hirescout/backend/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
