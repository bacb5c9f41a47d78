package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/repolens/internal/cache"
	"github.com/mvp-joe/repolens/internal/config"
)

// cacheCmd represents the cache command group
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the annotation cache",
	Long: `Manage the on-disk annotation cache.

Available commands:
  status - Show cache location and stats
  clean  - Manually trigger cache eviction`,
}

// cacheStatusCmd shows cache location and basic stats
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache location and stats",
	RunE:  runCacheStatus,
}

// cacheCleanCmd manually triggers cache eviction
var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Manually trigger cache eviction",
	Long: `Manually trigger cache eviction.

Eviction removes entries not read across the last N analysis runs, then
trims least-recently-read entries until the cache fits its byte budget.`,
	RunE: runCacheClean,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

func openCacheStore() (*cache.Store, *config.Config, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	dir, err := cache.Location(cfg.Cache.Location, rootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve cache location: %w", err)
	}
	store, err := cache.OpenStore(dir)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	store, _, err := openCacheStore()
	if err != nil {
		return err
	}
	defer store.Close()

	count, bytes, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	fmt.Printf("Location: %s\n", store.Path())
	fmt.Printf("Entries:  %d\n", count)
	fmt.Printf("Size:     %.2f MB\n", float64(bytes)/(1024*1024))
	return nil
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	store, cfg, err := openCacheStore()
	if err != nil {
		return err
	}
	defer store.Close()

	policy := cache.EvictionPolicy{
		MaxRuns:  cfg.Cache.MaxRuns,
		MaxBytes: int64(cfg.Cache.MaxSizeMB * 1024 * 1024),
	}
	result, err := store.Evict(policy)
	if err != nil {
		return fmt.Errorf("eviction failed: %w", err)
	}

	fmt.Printf("Evicted %d entries, freed %.2f MB in %v\n",
		result.Removed, float64(result.FreedBytes)/(1024*1024),
		result.Duration.Round(time.Millisecond))
	return nil
}
