// Package dashboard defines the report and statistics records exchanged with the HR dashboard API
// and the aggregations that produce them.
package dashboard

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type DashboardStats struct {
	WeeklyReports  int     `json:"weekly_reports"`
	MonthlyReports int     `json:"monthly_reports"`
	HighRiskItems  int     `json:"high_risk_items"`
	OkrCompletion  float64 `json:"okr_completion"` // 0-100
	WeeklyTrend    float64 `json:"weekly_trend"`   // Percentage change
	MonthlyTrend   float64 `json:"monthly_trend"`
	RiskTrend      float64 `json:"risk_trend"`
	OkrTrend       float64 `json:"okr_trend"`
}

// ReportSummary is one row of the recent-reports and reports-list endpoints
type ReportSummary struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	UserName    string    `json:"user_name"`
	PeriodType  Period    `json:"period_type"`
	PeriodStart string    `json:"period_start,omitempty"`
	PeriodEnd   string    `json:"period_end,omitempty"`
	CreatedAt   string    `json:"created_at"`
	RiskLevel   RiskLevel `json:"risk_level"`
	HRSummary   string    `json:"hr_summary"`
}

// ReportDetail is a full translated report
type ReportDetail struct {
	ID            int64      `json:"id"`
	UserID        string     `json:"user_id"`
	UserName      string     `json:"user_name"`
	PeriodType    Period     `json:"period_type"`
	PeriodStart   string     `json:"period_start"`
	PeriodEnd     string     `json:"period_end"`
	CreatedAt     string     `json:"created_at"`
	RawText       string     `json:"raw_text"`
	HRSummary     string     `json:"hr_summary"`
	RiskLevel     RiskLevel  `json:"risk_level"`
	Risks         StringList `json:"risks,omitempty"`
	Needs         StringList `json:"needs,omitempty"`
	HitObjectives StringList `json:"hit_objectives,omitempty"`
	HitKRs        StringList `json:"hit_krs,omitempty"`
	OkrGaps       StringList `json:"okr_gaps,omitempty"`
	OkrConfidence *string    `json:"okr_confidence,omitempty"` // Decimal 0-1 as text
	NextActions   StringList `json:"next_actions,omitempty"`
	OkrBrief      *string    `json:"okr_brief,omitempty"`
}

// Summary projects the detail onto the list row
func (r *ReportDetail) Summary() ReportSummary {
	return ReportSummary{
		ID:          r.ID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		PeriodType:  r.PeriodType,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		CreatedAt:   r.CreatedAt,
		RiskLevel:   r.RiskLevel,
		HRSummary:   r.HRSummary,
	}
}

// Confidence parses OkrConfidence. ok is false when it is missing or not a number.
func (r *ReportDetail) Confidence() (value float64, ok bool) {
	if r.OkrConfidence == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*r.OkrConfidence), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SubmittedAt parses CreatedAt, which is either an ISO timestamp or a unix-seconds message stamp
func (r *ReportDetail) SubmittedAt() (time.Time, bool) {
	return parseCreatedAt(r.CreatedAt)
}

func parseCreatedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(0, int64(secs*float64(time.Second))).UTC(), true
	}
	return time.Time{}, false
}

type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

func (d RiskDistribution) Total() int {
	return d.Low + d.Medium + d.High
}

func (d *RiskDistribution) add(level RiskLevel) {
	switch level {
	case RiskLow:
		d.Low++
	case RiskMedium:
		d.Medium++
	case RiskHigh:
		d.High++
	}
}

type PeriodDistribution struct {
	Daily   int `json:"daily"`
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
}

func (d *PeriodDistribution) add(p Period) {
	switch p {
	case PeriodDaily:
		d.Daily++
	case PeriodWeekly:
		d.Weekly++
	case PeriodMonthly:
		d.Monthly++
	}
}

type OkrTrendPoint struct {
	Date          string  `json:"date"`           // YYYY-MM-DD
	OkrCompletion float64 `json:"okr_completion"` // 0-100
	ReportCount   int     `json:"report_count"`
}

type TimelinePoint struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Daily   int    `json:"daily"`
	Weekly  int    `json:"weekly"`
	Monthly int    `json:"monthly"`
}

type ReportsPage struct {
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
	Items      []ReportSummary `json:"items"`
}

type UserSubmissionStats struct {
	UserName         string  `json:"user_name"`
	TotalReports     int     `json:"total_reports"`
	WeeklyReports    int     `json:"weekly_reports"`
	MonthlyReports   int     `json:"monthly_reports"`
	HighRiskCount    int     `json:"high_risk_count"`
	AvgOkrConfidence float64 `json:"avg_okr_confidence"`
}

type RiskTrendPoint struct {
	Date   string `json:"date"`
	Low    int    `json:"low"`
	Medium int    `json:"medium"`
	High   int    `json:"high"`
	Total  int    `json:"total"`
}

type OkrRanking struct {
	UserName           string  `json:"user_name"`
	AvgConfidence      float64 `json:"avg_confidence"`
	ReportCount        int     `json:"report_count"`
	HitObjectivesCount int     `json:"hit_objectives_count"`
	HitKRsCount        int     `json:"hit_krs_count"`
}

type TeamStatistics struct {
	TotalUsers         int                `json:"total_users"`
	TotalReports       int                `json:"total_reports"`
	AvgReportsPerUser  float64            `json:"avg_reports_per_user"`
	RiskDistribution   RiskDistribution   `json:"risk_distribution"`
	PeriodDistribution PeriodDistribution `json:"period_distribution"`
	AvgOkrConfidence   float64            `json:"avg_okr_confidence"`
	HighRiskRate       float64            `json:"high_risk_rate"`
}

// StringList decodes fields the backend sends either as a single string or as a list of strings.
// A single empty string and null both decode to an empty list.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	case len(data) > 0 && data[0] == '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	return errors.Errorf("[StringList.UnmarshalJSON] expected string or list, got %s", data)
}
