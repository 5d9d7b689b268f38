package dashboard

import "strings"

// Period is the reporting cadence of a report
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

var periodLabels = map[Period]string{
	PeriodDaily:   "Daily",
	PeriodWeekly:  "Weekly",
	PeriodMonthly: "Monthly",
}

// Label is the display text, falling back to the raw value for unknown periods
func (p Period) Label() string {
	if l, ok := periodLabels[p]; ok {
		return l
	}
	return string(p)
}

func (p Period) Valid() bool {
	_, ok := periodLabels[p]
	return ok
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var riskLabels = map[RiskLevel]string{
	RiskLow:    "Low",
	RiskMedium: "Medium",
	RiskHigh:   "High",
}

func (r RiskLevel) Label() string {
	if l, ok := riskLabels[r]; ok {
		return l
	}
	return string(r)
}

func (r RiskLevel) Valid() bool {
	_, ok := riskLabels[r]
	return ok
}

// ParsePeriod accepts the wire value in any case
func ParsePeriod(s string) (Period, bool) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

func ParseRiskLevel(s string) (RiskLevel, bool) {
	r := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}
