package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dineshvn/metroplan/app"
	"github.com/dineshvn/metroplan/config"
	"github.com/dineshvn/metroplan/core/schedule"
)

var generateDate string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one schedule and print it as JSON",
	RunE:  generateOnce,
}

func init() {
	generateCmd.Flags().StringVarP(&generateDate, "date", "d", "", "planning date (YYYY-MM-DD), defaults to today")
	rootCmd.AddCommand(generateCmd)
}

func generateOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	date := generateDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	res, err := svc.Orchestrator.Generate(ctx, schedule.GenerateRequest{PlanningDate: date})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Snapshot)
}
