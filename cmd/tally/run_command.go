package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/extract"
	"tally/internal/ledger"
	"tally/internal/report"
	"tally/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile the inbox and process new invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := executeRun(ctx, cmd, dryRun)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.RunSummary(summary))
			if failed := summary.Failed(); failed > 0 {
				return fmt.Errorf("%d invoice(s) failed; see the log for details", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Reconcile and report without archiving or recording")
	return cmd
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Reconcile and show what a run would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := executeRun(ctx, cmd, true)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.RunSummary(summary))
			return nil
		},
	}
}

func executeRun(ctx *commandContext, cmd *cobra.Command, dryRun bool) (*workflow.Summary, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}

	store, err := ledger.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	var extractor extract.Extractor
	if cfg.Extraction.Enabled && !dryRun {
		gemini, err := extract.NewGemini(cmd.Context(), cfg.Extraction, logger)
		if err != nil {
			return nil, err
		}
		extractor = gemini
	}

	runner, err := workflow.New(cfg, store, extractor, logger)
	if err != nil {
		return nil, err
	}
	return runner.Run(cmd.Context(), dryRun)
}
