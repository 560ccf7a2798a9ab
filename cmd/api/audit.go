package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/service"
	"github.com/spf13/cobra"
)

func auditCmd() *cobra.Command {
	var (
		date   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run the daily reminder audit once and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			today := billing.DateOf(time.Now().In(cfg.Location()))
			if date != "" {
				d, ok := billing.ParseDate(date)
				if !ok {
					return fmt.Errorf("invalid --date %q", date)
				}
				today = d
			}

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			var report *service.Report
			if dryRun {
				report, err = a.svc.PreviewDue(cmd.Context(), today)
			} else {
				report, err = a.svc.RunDailyAudit(cmd.Context(), today)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Audit day (YYYY-MM-DD or D/M/YYYY), defaults to today in TIMEZONE")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List due accounts without sending or recording anything")
	return cmd
}
