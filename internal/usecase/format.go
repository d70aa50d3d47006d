package usecase

import (
	"fmt"
	"strings"

	"FinResearch/internal/domain/models"
)

func billions(v *float64) string {
	if v == nil {
		return models.Placeholder
	}
	return fmt.Sprintf("$%.1fB", *v/1e9)
}

func dollars(v *float64) string {
	if v == nil {
		return models.Placeholder
	}
	return fmt.Sprintf("$%.2f", *v)
}

func percent(v *float64) string {
	if v == nil {
		return models.Placeholder
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

func ratio(v *float64) string {
	if v == nil {
		return models.Placeholder
	}
	return fmt.Sprintf("%.1f", *v)
}

func label(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return models.Placeholder
	}
	return *v
}

// overviewOf maps a snapshot to display strings. A synthetic snapshot yields placeholders only.
func overviewOf(s models.MarketSnapshot) models.Overview {
	ticker := models.Placeholder
	if !s.Synthetic && s.Ticker != "" {
		ticker = strings.ToUpper(s.Ticker)
	}
	return models.Overview{
		Name:      label(s.Name),
		Ticker:    ticker,
		Sector:    label(s.Sector),
		MarketCap: billions(s.MarketCap),
		Price:     dollars(s.Price),
		Change:    percent(s.ChangePct),
	}
}

func financialsOf(s models.MarketSnapshot) models.Financials {
	return models.Financials{
		Revenue:   billions(s.Revenue),
		NetIncome: billions(s.NetIncome),
		EPS:       dollars(s.EPS),
		PERatio:   ratio(s.PERatio),
	}
}
