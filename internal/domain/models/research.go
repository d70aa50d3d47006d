package models

import "time"

// Placeholder is rendered for every market value the provider could not supply.
const Placeholder = "N/A"

// ResearchRequest is the caller-supplied input of one research run.
type ResearchRequest struct {
	CompanyName string `json:"company_name"`
	Ticker      string `json:"ticker"`
}

// MarketSnapshot holds normalized quantitative facts for a ticker.
// Every value is independently nullable. Synthetic marks a placeholder snapshot
// produced when the provider could not be reached or rejected the ticker.
type MarketSnapshot struct {
	Ticker    string    `json:"ticker"`
	Name      *string   `json:"name"`
	Sector    *string   `json:"sector"`
	MarketCap *float64  `json:"market_cap"`
	Price     *float64  `json:"price"`
	ChangePct *float64  `json:"change_pct"`
	Revenue   *float64  `json:"revenue"`
	NetIncome *float64  `json:"net_income"`
	EPS       *float64  `json:"eps"`
	PERatio   *float64  `json:"pe_ratio"`
	Synthetic bool      `json:"synthetic"`
	FetchedAt time.Time `json:"fetched_at"`
}

// SyntheticSnapshot returns an all-null snapshot flagged as synthetic.
func SyntheticSnapshot(ticker string, at time.Time) MarketSnapshot {
	return MarketSnapshot{Ticker: ticker, Synthetic: true, FetchedAt: at}
}

// Branch is one analytical angle and the question posed to the AI provider.
type Branch struct {
	Topic string `json:"topic"`
	Query string `json:"query"`
}

// Source is a web reference returned by a grounded completion.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// BranchFinding is the outcome of analyzing one branch. OK=false marks fallback text.
type BranchFinding struct {
	Topic   string   `json:"topic"`
	Text    string   `json:"text"`
	OK      bool     `json:"ok"`
	Sources []Source `json:"sources,omitempty"`
}

// Completion is the text returned by a generative-AI call.
type Completion struct {
	Text     string
	Grounded bool
	Sources  []Source
}

type Overview struct {
	Name      string `json:"name"`
	Ticker    string `json:"ticker"`
	Sector    string `json:"sector"`
	MarketCap string `json:"marketCap"`
	Price     string `json:"price"`
	Change    string `json:"change"`
}

type Financials struct {
	Revenue   string `json:"revenue"`
	NetIncome string `json:"netIncome"`
	EPS       string `json:"eps"`
	PERatio   string `json:"peRatio"`
}

// CompetitorData is the formatted market view of one competitor.
type CompetitorData struct {
	Ticker string `json:"ticker"`
	Overview
	Financials
}

type CompetitiveAnalysis struct {
	Global   []CompetitorData `json:"global_competitors"`
	National []CompetitorData `json:"national_competitors"`
}

// Synthesis is the output of the synthesizer, before identity is stamped.
type Synthesis struct {
	Overview          Overview
	Financials        Financials
	Analysis          string
	SynthesisFallback bool
}

type ReportData struct {
	Overview    Overview             `json:"overview"`
	Financials  Financials           `json:"financials"`
	Analysis    string               `json:"analysis"`
	Competitive *CompetitiveAnalysis `json:"competitive,omitempty"`
}

// Degradation lists every fallback that was substituted while building a report.
type Degradation struct {
	SyntheticMarketData bool     `json:"synthetic_market_data"`
	FallbackBranches    []string `json:"fallback_branches"`
	SynthesisFallback   bool     `json:"synthesis_fallback"`
}

// Degraded reports whether any fallback was used.
func (d Degradation) Degraded() bool {
	return d.SyntheticMarketData || d.SynthesisFallback || len(d.FallbackBranches) > 0
}

// ResearchReport is the assembled, immutable result of one research run.
type ResearchReport struct {
	ID          string          `json:"id"`
	CompanyName string          `json:"companyName"`
	Ticker      string          `json:"ticker"`
	Timestamp   time.Time       `json:"timestamp"`
	Data        ReportData      `json:"data"`
	Branches    []BranchFinding `json:"branches"`
	Degradation Degradation     `json:"degradation"`
}

// Clone returns a deep copy so stores never share slices with callers.
func (r ResearchReport) Clone() ResearchReport {
	out := r
	if r.Branches != nil {
		out.Branches = make([]BranchFinding, len(r.Branches))
		for i, b := range r.Branches {
			b.Sources = append([]Source(nil), b.Sources...)
			out.Branches[i] = b
		}
	}
	if r.Degradation.FallbackBranches != nil {
		out.Degradation.FallbackBranches = append([]string(nil), r.Degradation.FallbackBranches...)
	}
	if r.Data.Competitive != nil {
		c := CompetitiveAnalysis{
			Global:   append([]CompetitorData(nil), r.Data.Competitive.Global...),
			National: append([]CompetitorData(nil), r.Data.Competitive.National...),
		}
		out.Data.Competitive = &c
	}
	return out
}

// Summary returns the list view of the report.
func (r ResearchReport) Summary() ReportSummary {
	return ReportSummary{
		ID:          r.ID,
		CompanyName: r.CompanyName,
		Ticker:      r.Ticker,
		Timestamp:   r.Timestamp,
		Degraded:    r.Degradation.Degraded(),
	}
}

type ReportSummary struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Ticker      string    `json:"ticker"`
	Timestamp   time.Time `json:"timestamp"`
	Degraded    bool      `json:"degraded"`
}
