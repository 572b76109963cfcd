// Package doctor inspects the shop client's configuration, its saved session
// and cart, and the backend, and can repair the local files it finds broken.
package doctor

import (
	"context"
	"encoding/json"
)

// Status is the outcome of a single check item.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
	// StatusFixed marks an item that was broken and repaired by --fix.
	StatusFixed
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	case StatusFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Item is one line of a check, e.g. the saved session or the currency.
// Fixable items can be repaired by running doctor with --fix.
type Item struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Result groups the items produced by one check.
type Result struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Check is a single area inspected by doctor.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Summary counts items by status. Fixable counts the broken items that
// --fix could still repair.
type Summary struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixed   int `json:"fixed"`
	Fixable int `json:"fixable"`
}

// Report is the outcome of a doctor run.
type Report struct {
	Healthy bool     `json:"healthy"`
	Summary Summary  `json:"summary"`
	Checks  []Result `json:"checks"`
}

// Run executes checks in order and tallies their items. A report is healthy
// when no item failed; repaired items do not count against it.
func Run(ctx context.Context, checks ...Check) Report {
	report := Report{Checks: make([]Result, 0, len(checks))}

	for _, check := range checks {
		result := check.Run(ctx)
		for _, item := range result.Items {
			report.Summary.add(item)
		}
		report.Checks = append(report.Checks, result)
	}

	report.Healthy = report.Summary.Failed == 0
	return report
}

func (s *Summary) add(item Item) {
	switch item.Status {
	case StatusPass:
		s.Passed++
	case StatusWarn:
		s.Warned++
	case StatusFail:
		s.Failed++
	case StatusFixed:
		s.Fixed++
	}

	if item.Fixable && (item.Status == StatusWarn || item.Status == StatusFail) {
		s.Fixable++
	}
}
