package dashboard

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"
)

const recentSummaryLength = 100

// Analyzer computes dashboard figures over a set of reports
type Analyzer struct {
	reports []ReportDetail
	nowTime func() time.Time
}

type AnalyzerOption func(*Analyzer)

func WithNowTime(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.nowTime = now
	}
}

// NewAnalyzer sorts a copy of reports newest first
func NewAnalyzer(reports []ReportDetail, options ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		reports: append([]ReportDetail(nil), reports...),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(a)
	}
	sort.SliceStable(a.reports, func(i, j int) bool {
		ti, _ := a.reports[i].SubmittedAt()
		tj, _ := a.reports[j].SubmittedAt()
		return ti.After(tj)
	})
	return a
}

func (a *Analyzer) Stats() DashboardStats {
	var stats DashboardStats
	var scoreSum float64
	var scoreCount int
	for i := range a.reports {
		r := &a.reports[i]
		if r.PeriodType == PeriodWeekly {
			stats.WeeklyReports++
		}
		if r.RiskLevel == RiskHigh {
			stats.HighRiskItems++
		}
		if c, ok := r.Confidence(); ok {
			scoreSum += c * 100
			scoreCount++
		}
	}
	stats.MonthlyReports = len(a.reports)
	if scoreCount > 0 {
		stats.OkrCompletion = round1(scoreSum / float64(scoreCount))
	}
	return stats
}

// Recent returns the newest limit reports with their summaries shortened for the overview
func (a *Analyzer) Recent(limit int) []ReportSummary {
	if limit <= 0 || limit > len(a.reports) {
		limit = len(a.reports)
	}
	out := make([]ReportSummary, 0, limit)
	for i := 0; i < limit; i++ {
		s := a.reports[i].Summary()
		s.HRSummary = truncate(s.HRSummary, recentSummaryLength)
		out = append(out, s)
	}
	return out
}

func (a *Analyzer) RiskDistribution() RiskDistribution {
	var d RiskDistribution
	for i := range a.reports {
		d.add(a.reports[i].RiskLevel)
	}
	return d
}

// Find returns the report with id, or nil
func (a *Analyzer) Find(id int64) *ReportDetail {
	for i := range a.reports {
		if a.reports[i].ID == id {
			r := a.reports[i]
			return &r
		}
	}
	return nil
}

// List filters and paginates, newest first
func (a *Analyzer) List(f ReportsFilter) ReportsPage {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	matched := make([]ReportSummary, 0)
	for i := range a.reports {
		if f.Matches(&a.reports[i]) {
			matched = append(matched, a.reports[i].Summary())
		}
	}

	page := ReportsPage{
		Total:      len(matched),
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: (len(matched) + f.PageSize - 1) / f.PageSize,
		Items:      []ReportSummary{},
	}
	start := (f.Page - 1) * f.PageSize
	if start < len(matched) {
		end := min(start+f.PageSize, len(matched))
		page.Items = matched[start:end]
	}
	return page
}

// OkrTrend has one point per day for the last days days (days+1 points, oldest first).
// Days without a scored report are zero.
func (a *Analyzer) OkrTrend(days int) []OkrTrendPoint {
	type bucket struct {
		sum   float64
		count int
	}
	buckets := map[string]*bucket{}
	a.eachWithinDays(days, func(day string, r *ReportDetail) {
		c, ok := r.Confidence()
		if !ok || c <= 0 {
			return
		}
		b := buckets[day]
		if b == nil {
			b = &bucket{}
			buckets[day] = b
		}
		b.sum += c * 100
		b.count++
	})

	out := make([]OkrTrendPoint, 0, days+1)
	for _, day := range a.dayRange(days) {
		p := OkrTrendPoint{Date: day}
		if b := buckets[day]; b != nil {
			p.OkrCompletion = round1(b.sum / float64(b.count))
			p.ReportCount = b.count
		}
		out = append(out, p)
	}
	return out
}

// Timeline counts submissions per day and period for the last days days, oldest first
func (a *Analyzer) Timeline(days int) []TimelinePoint {
	counts := map[string]*TimelinePoint{}
	a.eachWithinDays(days, func(day string, r *ReportDetail) {
		p := counts[day]
		if p == nil {
			p = &TimelinePoint{Date: day}
			counts[day] = p
		}
		p.Total++
		switch r.PeriodType {
		case PeriodDaily:
			p.Daily++
		case PeriodWeekly:
			p.Weekly++
		case PeriodMonthly:
			p.Monthly++
		}
	})

	out := make([]TimelinePoint, 0, days+1)
	for _, day := range a.dayRange(days) {
		if p := counts[day]; p != nil {
			out = append(out, *p)
			continue
		}
		out = append(out, TimelinePoint{Date: day})
	}
	return out
}

// UserSubmissions ranks users by report count over the last days days
func (a *Analyzer) UserSubmissions(days int) []UserSubmissionStats {
	type acc struct {
		UserSubmissionStats
		sum   float64
		count int
	}
	byUser := map[string]*acc{}
	var order []string
	a.eachSince(days, func(r *ReportDetail) {
		u := byUser[r.UserName]
		if u == nil {
			u = &acc{UserSubmissionStats: UserSubmissionStats{UserName: r.UserName}}
			byUser[r.UserName] = u
			order = append(order, r.UserName)
		}
		u.TotalReports++
		switch r.PeriodType {
		case PeriodWeekly:
			u.WeeklyReports++
		case PeriodMonthly:
			u.MonthlyReports++
		}
		if r.RiskLevel == RiskHigh {
			u.HighRiskCount++
		}
		if c, ok := r.Confidence(); ok {
			u.sum += c
			u.count++
		}
	})

	out := make([]UserSubmissionStats, 0, len(order))
	for _, name := range order {
		u := byUser[name]
		if u.count > 0 {
			u.AvgOkrConfidence = u.sum / float64(u.count)
		}
		out = append(out, u.UserSubmissionStats)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalReports > out[j].TotalReports })
	return out
}

// RiskTrend counts risk levels per day over the last days days. Only days with reports appear.
func (a *Analyzer) RiskTrend(days int) []RiskTrendPoint {
	byDay := map[string]*RiskDistribution{}
	a.eachSince(days, func(r *ReportDetail) {
		at, _ := r.SubmittedAt()
		day := at.Format(dateLayout)
		d := byDay[day]
		if d == nil {
			d = &RiskDistribution{}
			byDay[day] = d
		}
		d.add(r.RiskLevel)
	})

	dates := make([]string, 0, len(byDay))
	for day := range byDay {
		dates = append(dates, day)
	}
	sort.Strings(dates)

	out := make([]RiskTrendPoint, 0, len(dates))
	for _, day := range dates {
		d := byDay[day]
		out = append(out, RiskTrendPoint{Date: day, Low: d.Low, Medium: d.Medium, High: d.High, Total: d.Total()})
	}
	return out
}

// OkrRanking ranks users with scored reports by average confidence
func (a *Analyzer) OkrRanking(days int) []OkrRanking {
	type acc struct {
		OkrRanking
		sum float64
	}
	byUser := map[string]*acc{}
	var order []string
	a.eachSince(days, func(r *ReportDetail) {
		c, ok := r.Confidence()
		if !ok {
			return
		}
		u := byUser[r.UserName]
		if u == nil {
			u = &acc{OkrRanking: OkrRanking{UserName: r.UserName}}
			byUser[r.UserName] = u
			order = append(order, r.UserName)
		}
		u.sum += c
		u.ReportCount++
		u.HitObjectivesCount += len(r.HitObjectives)
		u.HitKRsCount += len(r.HitKRs)
	})

	out := make([]OkrRanking, 0, len(order))
	for _, name := range order {
		u := byUser[name]
		u.AvgConfidence = u.sum / float64(u.ReportCount)
		out = append(out, u.OkrRanking)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgConfidence > out[j].AvgConfidence })
	return out
}

func (a *Analyzer) TeamStats() TeamStatistics {
	var stats TeamStatistics
	usersSeen := map[string]struct{}{}
	var sum float64
	var count int
	for i := range a.reports {
		r := &a.reports[i]
		usersSeen[r.UserName] = struct{}{}
		stats.RiskDistribution.add(r.RiskLevel)
		stats.PeriodDistribution.add(r.PeriodType)
		if c, ok := r.Confidence(); ok {
			sum += c
			count++
		}
	}
	stats.TotalUsers = len(usersSeen)
	stats.TotalReports = len(a.reports)
	if stats.TotalUsers > 0 {
		stats.AvgReportsPerUser = float64(stats.TotalReports) / float64(stats.TotalUsers)
	}
	if count > 0 {
		stats.AvgOkrConfidence = sum / float64(count)
	}
	if stats.TotalReports > 0 {
		stats.HighRiskRate = float64(stats.RiskDistribution.High) / float64(stats.TotalReports)
	}
	return stats
}

// eachWithinDays visits reports whose calendar day is at most days days before today
func (a *Analyzer) eachWithinDays(days int, fn func(day string, r *ReportDetail)) {
	today := truncateDay(a.nowTime())
	for i := range a.reports {
		at, ok := a.reports[i].SubmittedAt()
		if !ok {
			continue
		}
		day := truncateDay(at)
		if ago := int(today.Sub(day).Hours() / 24); ago >= 0 && ago <= days {
			fn(day.Format(dateLayout), &a.reports[i])
		}
	}
}

// eachSince visits reports submitted within the last days*24h
func (a *Analyzer) eachSince(days int, fn func(r *ReportDetail)) {
	cutoff := a.nowTime().Add(-time.Duration(days) * 24 * time.Hour)
	for i := range a.reports {
		at, ok := a.reports[i].SubmittedAt()
		if !ok || at.Before(cutoff) {
			continue
		}
		fn(&a.reports[i])
	}
}

func (a *Analyzer) dayRange(days int) []string {
	today := truncateDay(a.nowTime())
	out := make([]string, 0, days+1)
	for i := days; i >= 0; i-- {
		out = append(out, today.AddDate(0, 0, -i).Format(dateLayout))
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
