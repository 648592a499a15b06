package config_test

import (
	"fmt"

	"github.com/wonny/analyst/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Timezone: %s\n", cfg.Location())
	fmt.Printf("Knowledge dir: %s\n", cfg.Storage.KnowledgeDir)
	fmt.Printf("Poll interval: %s\n", cfg.PollInterval)
}
