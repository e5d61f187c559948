package hermes

import "time"

type ValuationCreatedEvent struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Technology   string    `json:"technology"`
	ValueMin     float64   `json:"value_min"`
	ValueAverage float64   `json:"value_average"`
	ValueMax     float64   `json:"value_max"`
	Confidence   float64   `json:"confidence"`
	CreatedAt    time.Time `json:"created_at"`
}

type ReportRenderedEvent struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
}
