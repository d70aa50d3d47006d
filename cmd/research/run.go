package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/service/render"
	"FinResearch/internal/usecase"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Research a company and print the report",
	Long: `Run executes the full research pipeline for one company. Failed branches
and an unreachable market data provider degrade the report instead of failing
the run; the degradation is listed in the output.

With --save the report is stored under --owner. A store failure is reported
but the report is still written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		company, _ := cmd.Flags().GetString("company")
		ticker, _ := cmd.Flags().GetString("ticker")
		save, _ := cmd.Flags().GetBool("save")
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		owner, _ := cmd.Flags().GetString("owner")

		if format != "markdown" && out == "" {
			return fmt.Errorf("--out is required for format %q", format)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withResearch(cmd, func(uc *usecase.ResearchUseCase) error {
			req := models.ResearchRequest{CompanyName: company, Ticker: ticker}
			var (
				report models.ResearchReport
				err    error
			)
			if save {
				report, err = uc.Create(ctx, owner, req)
			} else {
				report, err = uc.Run(ctx, req)
			}
			var storeErr *models.StoreError
			switch {
			case errors.As(err, &storeErr):
				fmt.Fprintf(os.Stderr, "warning: report %s was not saved: %v\n", report.ID, storeErr.Err)
			case err != nil:
				return err
			}
			if d := report.Degradation; d.Degraded() {
				fmt.Fprintf(os.Stderr, "warning: degraded report (synthetic market: %t, fallback branches: %v, synthesis fallback: %t)\n",
					d.SyntheticMarketData, d.FallbackBranches, d.SynthesisFallback)
			}
			return write(report, format, out)
		})
	},
}

func write(r models.ResearchReport, format, out string) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case "markdown":
		b = []byte(render.Markdown(r))
	case "html":
		b, err = render.HTML(r)
	case "pdf":
		b, err = render.PDF(r)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if out == "" {
		_, err = os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	return nil
}

func init() {
	runCmd.Flags().String("company", "", "company name to research")
	runCmd.Flags().String("ticker", "", "ticker symbol, e.g. AAPL (optional)")
	runCmd.Flags().Bool("save", false, "save the report to the configured store")
	runCmd.Flags().String("format", "markdown", "output format: markdown, html or pdf")
	runCmd.Flags().String("out", "", "output file (stdout when empty, markdown only)")
	_ = runCmd.MarkFlagRequired("company")

	rootCmd.AddCommand(runCmd)
}
