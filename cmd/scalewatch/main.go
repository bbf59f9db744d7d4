package main

import (
	"fmt"
	"os"

	"github.com/fakelit/scalewatch/internal/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
