package models

// Requests for research HTTP endpoints. Defined in domain for consistency and reuse.

type CreateResearchRequest struct {
	CompanyName string `json:"company_name" validate:"required,max=200"`
	Ticker      string `json:"ticker" validate:"omitempty,ticker"`
}

func (r CreateResearchRequest) ToDomain() ResearchRequest {
	return ResearchRequest{CompanyName: r.CompanyName, Ticker: r.Ticker}
}

type ListResearchRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=100"`
}

type ReportIDRequest struct {
	ID string `param:"id" json:"id" validate:"required,uuid"`
}
