package main

import (
	"log"
	"os"

	approuters "github.com/yashveerji/LinkedIn-B/internal/app_routers"
	"github.com/yashveerji/LinkedIn-B/internal/configuration"
)

const defaultConfigPath = "config.json"

func main() {
	container, err := configuration.BuildContainer(configPath())
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Ensure cleanup on shutdown
	defer container.Close()

	// Setup routers
	approuters.StartServer(container)
}

// configPath prefers CONFIG_PATH, then ./config.json when present. An empty
// result configures from the environment alone.
func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}
