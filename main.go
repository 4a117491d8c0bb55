package main

import (
	"github.com/joho/godotenv"

	"urzis-pass/cmd"
)

func main() {
	// A missing .env is fine, the environment and config file still apply
	godotenv.Load()

	cmd.Execute()
}
