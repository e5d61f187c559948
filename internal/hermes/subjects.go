package hermes

import "time"

const (
	SubjectAll = "valuation.>"

	StreamName   = "VALUATION_EVENTS"
	StreamMaxAge = 90 * 24 * time.Hour
)

func SubjectValuationCreated(id string) string { return "valuation." + id + ".created" }

// SubjectReportRendered is published when a report is built rather than served from cache.
func SubjectReportRendered(id string) string { return "valuation." + id + ".report.rendered" }
