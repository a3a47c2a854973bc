package models

// DayForecast holds the simulated price distribution for one trading day.
type DayForecast struct {
	Day      int     `json:"day"`
	Expected float64 `json:"expected"`
	Lower95  float64 `json:"lower95"`
	Upper95  float64 `json:"upper95"`
	Lower68  float64 `json:"lower68"`
	Upper68  float64 `json:"upper68"`
}

// ForecastResult is a probabilistic multi-day price forecast produced by the
// forecast engine. PerDay is indexed 0..HorizonDays where day 0 is the
// current price with all bands collapsed onto it.
type ForecastResult struct {
	Symbol      string        `json:"symbol"`
	HorizonDays int           `json:"horizonDays"`
	PerDay      []DayForecast `json:"perDay"`
	SamplePaths [][]float64   `json:"samplePaths"`
}
