package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/jrsteele09/hrdash/dashboard"
	"github.com/jrsteele09/hrdash/export"
	"github.com/jrsteele09/hrdash/internal/utils"
	"github.com/jrsteele09/hrdash/users"
)

const summaryWidth = 60

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(tw *tabwriter.Writer, cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

// truncate shortens s to n runes, on one line
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func timestamp(t *users.Timestamp) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func printIdentity(w io.Writer, identity *users.Identity) {
	tw := newTable(w)
	row(tw, "Username", identity.Username)
	row(tw, "Name", identity.DisplayName())
	row(tw, "Email", utils.ValueOr(identity.Email, "-"))
	row(tw, "Role", identity.Role)
	row(tw, "Active", identity.IsActive)
	row(tw, "Created", timestamp(identity.CreatedAt))
	row(tw, "Last login", timestamp(identity.LastLoginAt))
	tw.Flush()
}

func printStats(w io.Writer, stats *dashboard.DashboardStats, dist *dashboard.RiskDistribution) {
	tw := newTable(w)
	row(tw, "Weekly reports", stats.WeeklyReports, fmt.Sprintf("%+.1f%%", stats.WeeklyTrend))
	row(tw, "Monthly reports", stats.MonthlyReports, fmt.Sprintf("%+.1f%%", stats.MonthlyTrend))
	row(tw, "High risk items", stats.HighRiskItems, fmt.Sprintf("%+.1f%%", stats.RiskTrend))
	row(tw, "OKR completion", fmt.Sprintf("%.1f%%", stats.OkrCompletion), fmt.Sprintf("%+.1f%%", stats.OkrTrend))
	row(tw, "Risk low/medium/high", fmt.Sprintf("%d/%d/%d", dist.Low, dist.Medium, dist.High), "")
	tw.Flush()
}

func printReports(w io.Writer, reports []dashboard.ReportSummary) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports")
		return
	}
	tw := newTable(w)
	row(tw, "ID", "SUBMITTER", "PERIOD", "CREATED", "RISK", "SUMMARY")
	for _, r := range reports {
		row(tw, r.ID, r.UserName, r.PeriodType.Label(), r.CreatedAt, r.RiskLevel.Label(), truncate(export.Sanitize(r.HRSummary), summaryWidth))
	}
	tw.Flush()
}

func printReport(w io.Writer, r *dashboard.ReportDetail) {
	tw := newTable(w)
	row(tw, "Report", r.ID)
	row(tw, "Submitter", r.UserName)
	row(tw, "Period", fmt.Sprintf("%s %s to %s", r.PeriodType.Label(), r.PeriodStart, r.PeriodEnd))
	row(tw, "Created", r.CreatedAt)
	row(tw, "Risk", r.RiskLevel.Label())
	if c, ok := r.Confidence(); ok {
		row(tw, "OKR confidence", fmt.Sprintf("%.0f%%", c*100))
	}
	tw.Flush()

	fmt.Fprintf(w, "\nSummary\n  %s\n", export.Sanitize(r.HRSummary))
	sections := []struct {
		title string
		items dashboard.StringList
	}{
		{"Risks", r.Risks},
		{"Needs", r.Needs},
		{"Hit objectives", r.HitObjectives},
		{"Hit key results", r.HitKRs},
		{"OKR gaps", r.OkrGaps},
		{"Next actions", r.NextActions},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", s.title)
		for _, item := range s.items {
			fmt.Fprintf(w, "  - %s\n", export.Sanitize(item))
		}
	}
}

func printTeam(w io.Writer, t *dashboard.TeamStatistics) {
	tw := newTable(w)
	row(tw, "Users", t.TotalUsers)
	row(tw, "Reports", t.TotalReports)
	row(tw, "Reports per user", fmt.Sprintf("%.1f", t.AvgReportsPerUser))
	row(tw, "Avg OKR confidence", fmt.Sprintf("%.2f", t.AvgOkrConfidence))
	row(tw, "High risk rate", fmt.Sprintf("%.1f%%", t.HighRiskRate))
	row(tw, "Daily/weekly/monthly", fmt.Sprintf("%d/%d/%d", t.PeriodDistribution.Daily, t.PeriodDistribution.Weekly, t.PeriodDistribution.Monthly))
	tw.Flush()
}

func printSubmissions(w io.Writer, stats []dashboard.UserSubmissionStats) {
	tw := newTable(w)
	row(tw, "USER", "TOTAL", "WEEKLY", "MONTHLY", "HIGH RISK", "AVG CONFIDENCE")
	for _, s := range stats {
		row(tw, s.UserName, s.TotalReports, s.WeeklyReports, s.MonthlyReports, s.HighRiskCount, fmt.Sprintf("%.2f", s.AvgOkrConfidence))
	}
	tw.Flush()
}

func printRanking(w io.Writer, ranking []dashboard.OkrRanking) {
	tw := newTable(w)
	row(tw, "#", "USER", "AVG CONFIDENCE", "REPORTS", "OBJECTIVES", "KEY RESULTS")
	for i, r := range ranking {
		row(tw, i+1, r.UserName, fmt.Sprintf("%.2f", r.AvgConfidence), r.ReportCount, r.HitObjectivesCount, r.HitKRsCount)
	}
	tw.Flush()
}

// printRiskTrend lists only the days with reports
func printRiskTrend(w io.Writer, points []dashboard.RiskTrendPoint) {
	tw := newTable(w)
	row(tw, "DATE", "LOW", "MEDIUM", "HIGH")
	for _, p := range points {
		if p.Total == 0 {
			continue
		}
		row(tw, p.Date, p.Low, p.Medium, p.High)
	}
	tw.Flush()
}
