package render

import (
	"fmt"
	"strings"

	"FinResearch/internal/domain/models"
	"FinResearch/pkg/util"
)

// Markdown lays out a report as a standalone markdown document.
func Markdown(r models.ResearchReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.CompanyName)
	fmt.Fprintf(&sb, "*Generated %s*\n\n", util.ISOTimestamp(r.Timestamp))

	ov, fin := r.Data.Overview, r.Data.Financials
	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Name | Ticker | Sector | Market Cap | Price | Change |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n\n",
		cell(ov.Name), cell(ov.Ticker), cell(ov.Sector), ov.MarketCap, ov.Price, ov.Change)

	sb.WriteString("## Financials\n\n")
	sb.WriteString("| Revenue | Net Income | EPS | P/E |\n")
	sb.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n\n", fin.Revenue, fin.NetIncome, fin.EPS, fin.PERatio)

	sb.WriteString("## Analysis\n\n")
	sb.WriteString(strings.TrimSpace(r.Data.Analysis))
	sb.WriteString("\n\n")

	if c := r.Data.Competitive; c != nil {
		sb.WriteString("## Competitors\n\n")
		competitorTable(&sb, "Global", c.Global)
		competitorTable(&sb, "National", c.National)
	}

	if srcs := sources(r.Branches); len(srcs) > 0 {
		sb.WriteString("## Sources\n\n")
		for _, s := range srcs {
			title := s.Title
			if title == "" {
				title = s.URI
			}
			fmt.Fprintf(&sb, "* [%s](%s)\n", cell(title), s.URI)
		}
		sb.WriteString("\n")
	}

	if r.Degradation.Degraded() {
		sb.WriteString("---\n\n*Parts of this report were produced from fallback data.*\n")
	}
	return sb.String()
}

func competitorTable(sb *strings.Builder, label string, rows []models.CompetitorData) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(sb, "### %s\n\n", label)
	sb.WriteString("| Ticker | Name | Market Cap | Price | Change | P/E |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, c := range rows {
		fmt.Fprintf(sb, "| %s | %s | %s | %s | %s | %s |\n",
			c.Ticker, cell(c.Name), c.MarketCap, c.Price, c.Change, c.PERatio)
	}
	sb.WriteString("\n")
}

// sources returns the unique sources of all branches in order of first appearance.
func sources(branches []models.BranchFinding) []models.Source {
	seen := map[string]bool{}
	var out []models.Source
	for _, b := range branches {
		for _, s := range b.Sources {
			if s.URI == "" || seen[s.URI] {
				continue
			}
			seen[s.URI] = true
			out = append(out, s)
		}
	}
	return out
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
