package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rackden/rackden/cmd/cli/commands"
)

func main() {
	// .env is optional for the CLI; explicit flags win over it
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
