package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nh13/snakeparse/internal/cli"
	"github.com/nh13/snakeparse/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: no .env file found, relying on real ENV: %v", err)
	}

	logger := logging.New(os.Stderr, false)
	app := cli.New(logger)
	os.Exit(app.Run(os.Args[1:]))
}
