package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/analyst/pkg/config"
	"github.com/wonny/analyst/pkg/database"
	"github.com/wonny/analyst/pkg/redis"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check configuration and optional backends",
	Long: `Load configuration and test the optional PostgreSQL document store
and Redis guard store.

Example:
  go run ./cmd/analyst check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	printHeader("Configuration Check")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s, TZ: %s, poll: %s)\n", cfg.Env, cfg.Location(), cfg.PollInterval)
	fmt.Printf("   Knowledge dir: %s\n", cfg.Storage.KnowledgeDir)
	fmt.Printf("   Export path:   %s\n", cfg.Storage.ExportPath)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		fmt.Printf("ℹ️  PostgreSQL not configured; documents stored under %s\n", cfg.Storage.DataDir)
	case err != nil:
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	default:
		defer db.Close()
		status := db.HealthCheck(ctx)
		fmt.Printf("✅ PostgreSQL %s (healthy: %v, %s, %d/%d idle conns)\n",
			maskPassword(cfg.Database.URL), status.Healthy, status.ResponseTime, status.IdleConns, status.TotalConns)
	}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to redis: %w", err)
	}
	defer rc.Close()
	if rc.Enabled() {
		fmt.Printf("✅ Redis %s:%s (day guards shared)\n", cfg.Redis.Host, cfg.Redis.Port)
	} else {
		fmt.Println("ℹ️  Redis disabled; day guards are in-memory")
	}

	if cfg.LLM.APIKey == "" {
		fmt.Println("⚠️  ANTHROPIC_API_KEY not set; scans and reviews will fail")
	} else {
		fmt.Printf("✅ Text generation model: %s\n", cfg.LLM.Model)
	}
	return nil
}

// maskPassword hides the password in a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
