package usecase

import (
	"fmt"
	"strings"

	"FinResearch/internal/domain/models"
)

func branchPrompt(b models.Branch, today string) string {
	return fmt.Sprintf(`You are a focused research agent. Conduct in-depth, neutral research on one specific branch using Google Search and report only verifiable information.

Stay strictly within this branch:
Topic: %s
Question: %s
Current date: %s

Gather multiple distinct findings. Each finding must be stated by a source and include the date it happened. Keep a critical view.

Return only this JSON block, with no other text:
`+"```json"+`
{"findings": ["finding 1", "finding 2", "finding N"]}
`+"```", b.Topic, b.Query, today)
}

func synthesisPrompt(company string, overview models.Overview, financials models.Financials, findings []models.BranchFinding) string {
	var sb strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&sb, "### %s\n%s\n\n", f.Topic, f.Text)
	}
	return fmt.Sprintf(`You are a senior research analyst. Synthesize the findings below into one coherent, objective report on %s.

Instructions:
- Use only the findings and market data provided.
- Identify key themes and connections between findings.
- Be chronological, starting in the past and moving to the present.
- Keep a neutral tone.
- Format with markdown: ## for headings, ** for bold, * for bullets. Do not use HTML.

Return exactly this JSON object:
{"full_report": "the full report text"}

--- MARKET DATA ---
Name: %s | Ticker: %s | Sector: %s
Market cap: %s | Price: %s | Change: %s
Revenue: %s | Net income: %s | EPS: %s | P/E: %s

--- FINDINGS ---
%s--- END OF FINDINGS ---`,
		company,
		overview.Name, overview.Ticker, overview.Sector,
		overview.MarketCap, overview.Price, overview.Change,
		financials.Revenue, financials.NetIncome, financials.EPS, financials.PERatio,
		sb.String())
}

func competitorPrompt(ticker string) string {
	return fmt.Sprintf(`Find the top 5 direct competitors of the company with ticker symbol %s.
Only include publicly traded companies in the same industry with valid stock ticker symbols.
National competitors trade in the same country as %s; global competitors may trade anywhere.

Return only the ticker symbols in this exact JSON format, with no explanation:
`+"```json"+`
{"global_competitors": ["TICKER1", "TICKER2"], "national_competitors": ["TICKER1", "TICKER2"]}
`+"```", ticker, ticker)
}
