package models

// SeriesPointPayload is one inline observation in a forecast request.
type SeriesPointPayload struct {
	Date string  `json:"date" validate:"required"`
	Cost float64 `json:"cost"`
}

// ForecastParams are per-request overrides for the self-contained
// algorithms. Zero values take the configured defaults.
type ForecastParams struct {
	SMAWindow         int     `json:"sma_window" query:"sma_window" validate:"omitempty,gte=1"`
	ESAlpha           float64 `json:"es_alpha" query:"es_alpha" validate:"omitempty,gt=0,lte=1"`
	HWAlpha           float64 `json:"hw_alpha" query:"hw_alpha" validate:"omitempty,gt=0,lte=1"`
	HWBeta            float64 `json:"hw_beta" query:"hw_beta" validate:"omitempty,gt=0,lte=1"`
	HWGamma           float64 `json:"hw_gamma" query:"hw_gamma" validate:"omitempty,gt=0,lte=1"`
	HWSeasonalPeriods int     `json:"hw_seasonal_periods" query:"hw_seasonal_periods" validate:"omitempty,gte=2"`
	Theta             float64 `json:"theta" query:"theta" validate:"omitempty,gt=0"`
}

// ForecastRequest asks for one forecast run. The series comes either
// inline (Points) or from storage (Account plus optional From/To dates).
type ForecastRequest struct {
	Account    string               `json:"account" query:"account"`
	From       string               `json:"from" query:"from"`
	To         string               `json:"to" query:"to"`
	Points     []SeriesPointPayload `json:"points" validate:"omitempty,dive"`
	Ensemble   bool                 `json:"ensemble" query:"ensemble" default:"true"`
	Milestones bool                 `json:"milestones" query:"milestones" default:"true"`
	Params     ForecastParams       `json:"params"`
}
