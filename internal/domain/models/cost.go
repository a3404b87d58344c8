package models

// CostObservation is one ingested cost data point for an account.
// Timestamp is unix seconds at the start of the billing period.
type CostObservation struct {
	Account   string  `json:"account"`
	Service   string  `json:"service,omitempty"`
	Timestamp int64   `json:"timestamp"`
	Cost      float64 `json:"cost"`
}
