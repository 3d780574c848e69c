package entity

import "github.com/shopspring/decimal"

// ReportRow is one category line of the summary table. Amount is set only
// for the Approved row, where currency distinction is deliberately lost
// and all per-currency totals are combined.
type ReportRow struct {
	Category string           `json:"category"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Count    int              `json:"count"`
}

// ChartDataset mirrors the bar-chart rendering contract: parallel value
// and color lists, one entry per label.
type ChartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderColor     []string  `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// ChartSeries is the payload handed to a bar-chart renderer. Labels keep
// the first-seen order of the underlying scan.
type ChartSeries struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// Fixed palette cycled by key position.
var (
	ChartBackgroundPalette = []string{
		"rgba(75, 192, 192, 0.2)",
		"rgba(255, 99, 132, 0.2)",
		"rgba(255, 206, 86, 0.2)",
		"rgba(54, 162, 235, 0.2)",
	}
	ChartBorderPalette = []string{
		"rgba(75, 192, 192, 1)",
		"rgba(255, 99, 132, 1)",
		"rgba(255, 206, 86, 1)",
		"rgba(54, 162, 235, 1)",
	}
)

// NewChartSeries assembles the chart payload from parallel label and
// amount lists, cycling the palette by position.
func NewChartSeries(labels []string, amounts []decimal.Decimal) *ChartSeries {
	data := make([]float64, len(amounts))
	backgrounds := make([]string, len(labels))
	borders := make([]string, len(labels))
	for i, amount := range amounts {
		data[i] = amount.InexactFloat64()
		backgrounds[i] = ChartBackgroundPalette[i%len(ChartBackgroundPalette)]
		borders[i] = ChartBorderPalette[i%len(ChartBorderPalette)]
	}

	return &ChartSeries{
		Labels: labels,
		Datasets: []ChartDataset{{
			Label:           "Fund Requests",
			Data:            data,
			BackgroundColor: backgrounds,
			BorderColor:     borders,
			BorderWidth:     1,
		}},
	}
}
