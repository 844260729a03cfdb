// Package analysis provides the client for the external retina-analysis
// service and the view logic derived from its responses.
package analysis

import (
	"fmt"
	"strings"
)

// PredictionHealthy is the label the analysis service returns for a
// fundus image with no signs of diabetic retinopathy.
const PredictionHealthy = "No_DR"

// Record is a single past diagnostic result as returned by the history
// endpoint. Owned entirely by the analysis service; never mutated here.
type Record struct {
	ID         string  `json:"id"`
	Filename   string  `json:"filename"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Date       string  `json:"date"`
	ReportURL  string  `json:"report_url"`
	IsNoisy    bool    `json:"is_noisy"`
}

// Result is the response to a single image analysis.
type Result struct {
	Prediction string   `json:"prediction"`
	Confidence float64  `json:"confidence"`
	ReportURL  string   `json:"report_url"`
	IsNoisy    bool     `json:"is_noisy"`
	Tips       []string `json:"tips"`
}

// Summary holds the dashboard counts derived from a history snapshot.
type Summary struct {
	Total   int `json:"total"`
	Healthy int `json:"healthy"`
	DR      int `json:"dr"`
}

// Summarize computes the dashboard counts over a full history snapshot.
// Healthy is the number of "No_DR" predictions; DR is the remainder.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Prediction == PredictionHealthy {
			s.Healthy++
		}
	}
	s.DR = s.Total - s.Healthy
	return s
}

// Filter returns the records whose filename or prediction contains term,
// case-insensitively. An empty term returns the input unchanged. Filtering
// happens over the full retrieved set; it is never delegated upstream.
func Filter(records []Record, term string) []Record {
	if term == "" {
		return records
	}

	lower := strings.ToLower(term)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Filename), lower) ||
			strings.Contains(strings.ToLower(r.Prediction), lower) {
			out = append(out, r)
		}
	}
	return out
}

// Percent formats a 0..1 confidence as a percentage with two decimals,
// e.g. 0.8234 -> "82.34%".
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// PercentShort formats a 0..1 confidence with one decimal for list views.
func PercentShort(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// DisplayPrediction converts a raw prediction label to its display form
// ("Proliferate_DR" -> "Proliferate DR").
func DisplayPrediction(label string) string {
	return strings.ReplaceAll(label, "_", " ")
}
