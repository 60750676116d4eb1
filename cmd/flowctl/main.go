package main

import (
	"os"

	"flow-chat/backend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
