package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/betslip/internal/config"
	"github.com/yourusername/betslip/internal/feed"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	logger     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(matchesCmd)
}

var rootCmd = &cobra.Command{
	Use:   "feed-status",
	Short: "Check match feed connectivity and contents",
	Long:  `Displays health status for the match feed and a summary of the current match list.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)

		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		displayStatus()
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the matches currently offered by the feed",
	Run: func(cmd *cobra.Command, args []string) {
		displayMatches()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func newFeedClient() (*feed.Client, *feed.RateLimitedHTTPClient) {
	httpCfg := feed.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.FeedRequestTimeout()
	httpCfg.RateLimit = cfg.MatchFeed.RateLimit
	httpClient := feed.NewRateLimitedHTTPClient(httpCfg, logger)

	return feed.NewClient(cfg.MatchFeed.APIURL, httpClient, cfg.FeedCacheTTL(), logger), httpClient
}

func displayStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("\n╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                     Match Feed Status                          ║")
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Println()

	feedClient, httpClient := newFeedClient()
	defer httpClient.Close()

	fmt.Print("Feed Health: ")
	if err := feedClient.Ping(ctx); err != nil {
		fmt.Println("❌ UNAVAILABLE")
		fmt.Printf("   Error: %v\n", err)
	} else {
		fmt.Println("✓ ONLINE")
	}

	fmt.Print("Match List: ")
	matches, err := feedClient.FetchMatches(ctx)
	if err != nil {
		fmt.Println("❌ FETCH FAILED")
		fmt.Printf("   Error: %v\n", err)
	} else {
		live := 0
		for _, m := range matches {
			if m.IsLive {
				live++
			}
		}
		fmt.Printf("%d matches (%d live)\n", len(matches), live)
	}

	fmt.Println("\nConfiguration:")
	fmt.Printf("  Feed URL: %s\n", cfg.MatchFeed.APIURL)
	fmt.Printf("  Stream URL: %s\n", cfg.MatchFeed.StreamURL)
	fmt.Printf("  Refresh Interval: %d seconds\n", cfg.MatchFeed.RefreshIntervalSeconds)
	fmt.Printf("  Cache TTL: %d seconds\n", cfg.MatchFeed.CacheTTLSeconds)
	fmt.Printf("  Live Updates: %v\n", cfg.Features.LiveUpdatesEnabled)
	fmt.Printf("  Auto Refresh: %v\n", cfg.Features.AutoRefreshEnabled)
	fmt.Printf("  Version: %s (%s)\n", Version, GitCommit)

	fmt.Println()
}

func displayMatches() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	feedClient, httpClient := newFeedClient()
	defer httpClient.Close()

	matches, err := feedClient.FetchMatches(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch matches: %v", err)
	}

	fmt.Printf("\n%-6s %-40s %-20s %-8s %-22s\n", "ID", "MATCH", "LEAGUE", "LIVE", "ODDS (H/D/A)")
	for _, m := range matches {
		live := "-"
		if m.IsLive {
			live = "LIVE"
			if m.Score != nil {
				live = fmt.Sprintf("%d-%d", m.Score.Home, m.Score.Away)
			}
		}
		odds := "-"
		if m.Odds.Home > 0 {
			odds = fmt.Sprintf("%.2f / %.2f / %.2f", m.Odds.Home, m.Odds.Draw, m.Odds.Away)
		}
		fmt.Printf("%-6d %-40s %-20s %-8s %-22s\n", m.ID, m.Label(), m.League, live, odds)
	}
	fmt.Println()
}
