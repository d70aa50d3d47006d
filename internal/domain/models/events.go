package models

import "time"

const EventReportDelivered = "report.delivered"

// ReportEvent is published whenever a report reaches the Delivered state.
type ReportEvent struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Company   string    `json:"company"`
	Ticker    string    `json:"ticker"`
	Degraded  bool      `json:"degraded"`
	Timestamp time.Time `json:"timestamp"`
}

// ResearchJob is an asynchronous research request received from the message bus.
type ResearchJob struct {
	Owner       string `json:"owner"`
	CompanyName string `json:"company_name"`
	Ticker      string `json:"ticker"`
}
