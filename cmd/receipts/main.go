package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/betslip/internal/config"
	"github.com/yourusername/betslip/internal/database"
	"github.com/yourusername/betslip/internal/models"
	"github.com/yourusername/betslip/internal/repository"
)

var (
	configFile string
	sinceFlag  string
	untilFlag  string
	cfg        *config.Config
	db         *database.DB
	receipts   repository.ReceiptRepository
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	listCmd.Flags().StringVar(&sinceFlag, "since", "", "Start of the accepted-at range (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&untilFlag, "until", "", "End of the accepted-at range (YYYY-MM-DD, exclusive)")
	rootCmd.AddCommand(openCmd, listCmd, showCmd, settleCmd)
}

var rootCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Inspect and settle archived bet receipts",
	Long:  `Operator tooling for the receipt archive: list open wagers, look up tickets and record settlement.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if !cfg.Features.ReceiptArchiveEnabled {
			return fmt.Errorf("receipt archive is disabled in configuration")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err = database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to receipt archive: %w", err)
		}
		receipts = repository.NewPostgresReceiptRepository(db)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "List receipts still awaiting settlement",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		found, err := receipts.GetOpen(ctx)
		if err != nil {
			return err
		}
		printReceipts(found)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List receipts accepted within a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := parseRange(sinceFlag, untilFlag)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		found, err := receipts.GetByDateRange(ctx, start, end)
		if err != nil {
			return err
		}
		printReceipts(found)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <receipt-id>",
	Short: "Show one receipt with its legs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid receipt id: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		receipt, err := receipts.GetByID(ctx, id)
		if err != nil {
			return err
		}

		fmt.Printf("\nReceipt %s\n", receipt.ID)
		fmt.Printf("  Ticket:        %s\n", receipt.TicketRef)
		fmt.Printf("  Session:       %s\n", receipt.SessionID)
		fmt.Printf("  Status:        %s\n", receipt.Status)
		fmt.Printf("  Stake:         %.2f\n", receipt.Stake)
		fmt.Printf("  Potential Win: %.2f\n", receipt.PotentialWin)
		fmt.Printf("  Accepted:      %s\n", receipt.AcceptedAt.Format(time.RFC3339))
		fmt.Println("  Legs:")
		for _, sel := range receipt.Selections {
			fmt.Printf("    %-12s %-30s %-20s %.2f\n", sel.ID, sel.Match, sel.BetName, sel.Odds)
		}
		fmt.Println()
		return nil
	},
}

var settleCmd = &cobra.Command{
	Use:   "settle <receipt-id> <settled|voided>",
	Short: "Record the settlement outcome for a receipt",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid receipt id: %w", err)
		}

		status := models.ReceiptStatus(args[1])
		if status != models.ReceiptStatusSettled && status != models.ReceiptStatusVoided {
			return fmt.Errorf("status must be 'settled' or 'voided', got %q", args[1])
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := receipts.UpdateStatus(ctx, id, status); err != nil {
			return err
		}

		fmt.Printf("Receipt %s marked %s\n", id, status)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func parseRange(since, until string) (time.Time, time.Time, error) {
	if since == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--since is required")
	}
	start, err := time.Parse("2006-01-02", since)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --since date: %w", err)
	}

	end := start.AddDate(0, 0, 1)
	if until != "" {
		end, err = time.Parse("2006-01-02", until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until date: %w", err)
		}
	}
	return start, end, nil
}

func printReceipts(found []*models.Receipt) {
	if len(found) == 0 {
		fmt.Println("No receipts found")
		return
	}

	fmt.Printf("\n%-38s %-18s %-9s %-5s %10s %14s  %s\n",
		"ID", "TICKET", "STATUS", "LEGS", "STAKE", "POTENTIAL WIN", "ACCEPTED")
	for _, r := range found {
		fmt.Printf("%-38s %-18s %-9s %-5d %10.2f %14.2f  %s\n",
			r.ID, r.TicketRef, r.Status, r.LegCount(), r.Stake, r.PotentialWin,
			r.AcceptedAt.Format(time.RFC3339))
	}
	fmt.Println()
}
