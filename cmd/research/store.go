package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"FinResearch/internal/usecase"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withResearch(cmd, func(uc *usecase.ResearchUseCase) error {
			summaries, err := uc.List(cmd.Context(), owner, limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTICKER\tCOMPANY\tCREATED\tDEGRADED")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", s.ID, s.Ticker, s.CompanyName, s.Timestamp.Format(time.RFC3339), s.Degraded)
			}
			return tw.Flush()
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Render a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		if format != "markdown" && out == "" {
			return fmt.Errorf("--out is required for format %q", format)
		}

		return withResearch(cmd, func(uc *usecase.ResearchUseCase) error {
			report, err := uc.Get(cmd.Context(), owner, args[0])
			if err != nil {
				return err
			}
			return write(report, format, out)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		return withResearch(cmd, func(uc *usecase.ResearchUseCase) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := uc.Delete(ctx, owner, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	listCmd.Flags().Int("limit", 20, "maximum number of reports to list")
	listCmd.Flags().Bool("json", false, "output summaries as JSON")

	showCmd.Flags().String("format", "markdown", "output format: markdown, html or pdf")
	showCmd.Flags().String("out", "", "output file (stdout when empty, markdown only)")

	rootCmd.AddCommand(listCmd, showCmd, deleteCmd)
}
