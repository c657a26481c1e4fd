package main

import (
	"context"
	"os"

	"diary-service/internal/commands"
)

func main() {
	if err := commands.New().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
