package main

import (
	"os"

	"flow-chat/backend/internal/app"
)

// @title        Flow Chat API
// @version      1.0
// @description  Conversation sessions, streamed replies, slash commands and searchable history.
// @BasePath     /api
func main() {
	os.Exit(app.Run())
}
