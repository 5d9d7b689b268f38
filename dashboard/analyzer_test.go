package dashboard_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/hrdash/dashboard"
	fakereportrepo "github.com/jrsteele09/hrdash/dashboard/repofake"
	"github.com/jrsteele09/hrdash/internal/utils"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) string {
	return fixedNow.AddDate(0, 0, -n).Format(time.RFC3339)
}

func sampleReports() []dashboard.ReportDetail {
	return []dashboard.ReportDetail{
		{ID: 1, UserName: "alice", PeriodType: dashboard.PeriodWeekly, RiskLevel: dashboard.RiskHigh, CreatedAt: daysAgo(0),
			OkrConfidence: utils.Ptr("0.8"), HitObjectives: dashboard.StringList{"O1"}, HitKRs: dashboard.StringList{"KR1", "KR2"},
			HRSummary: strings.Repeat("a", 150)},
		{ID: 2, UserName: "alice", PeriodType: dashboard.PeriodDaily, RiskLevel: dashboard.RiskLow, CreatedAt: daysAgo(1),
			OkrConfidence: utils.Ptr("0.6")},
		{ID: 3, UserName: "bob", PeriodType: dashboard.PeriodMonthly, RiskLevel: dashboard.RiskMedium, CreatedAt: daysAgo(1),
			OkrConfidence: utils.Ptr("0.9")},
		{ID: 4, UserName: "carol", PeriodType: dashboard.PeriodWeekly, RiskLevel: dashboard.RiskLow, CreatedAt: daysAgo(40)},
	}
}

func newAnalyzer(t *testing.T) *dashboard.Analyzer {
	t.Helper()
	repo := fakereportrepo.NewFakeReportRepo(sampleReports()...)
	all, err := repo.All()
	require.NoError(t, err)
	return dashboard.NewAnalyzer(all, dashboard.WithNowTime(func() time.Time { return fixedNow }))
}

func TestAnalyzer_Stats(t *testing.T) {
	stats := newAnalyzer(t).Stats()
	require.Equal(t, 2, stats.WeeklyReports)
	require.Equal(t, 4, stats.MonthlyReports)
	require.Equal(t, 1, stats.HighRiskItems)
	require.InDelta(t, 76.7, stats.OkrCompletion, 1e-9)
}

func TestAnalyzer_Stats_Empty(t *testing.T) {
	require.Equal(t, dashboard.DashboardStats{}, dashboard.NewAnalyzer(nil).Stats())
}

func TestAnalyzer_Recent(t *testing.T) {
	recent := newAnalyzer(t).Recent(2)
	require.Len(t, recent, 2)
	require.Equal(t, int64(1), recent[0].ID)
	require.Len(t, recent[0].HRSummary, 103)
	require.True(t, strings.HasSuffix(recent[0].HRSummary, "..."))

	require.Len(t, newAnalyzer(t).Recent(0), 4)
}

func TestAnalyzer_List(t *testing.T) {
	a := newAnalyzer(t)

	page := a.List(dashboard.ReportsFilter{Page: 1, PageSize: 3})
	require.Equal(t, 4, page.Total)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 3)
	require.Equal(t, int64(1), page.Items[0].ID)

	page = a.List(dashboard.ReportsFilter{Page: 2, PageSize: 3})
	require.Len(t, page.Items, 1)
	require.Equal(t, int64(4), page.Items[0].ID)

	page = a.List(dashboard.ReportsFilter{Page: 5, PageSize: 3})
	require.Empty(t, page.Items)
	require.NotNil(t, page.Items)

	page = a.List(dashboard.ReportsFilter{UserName: "ALICE"})
	require.Equal(t, 2, page.Total)
	require.Equal(t, dashboard.DefaultPageSize, page.PageSize)
}

func TestAnalyzer_Find(t *testing.T) {
	a := newAnalyzer(t)
	require.Equal(t, "bob", a.Find(3).UserName)
	require.Nil(t, a.Find(99))
}

func TestAnalyzer_RiskDistribution(t *testing.T) {
	require.Equal(t, dashboard.RiskDistribution{Low: 2, Medium: 1, High: 1}, newAnalyzer(t).RiskDistribution())
}

func TestAnalyzer_OkrTrend(t *testing.T) {
	trend := newAnalyzer(t).OkrTrend(7)
	require.Len(t, trend, 8)
	require.Equal(t, "2025-03-03", trend[0].Date)

	last := trend[7]
	require.Equal(t, "2025-03-10", last.Date)
	require.InDelta(t, 80.0, last.OkrCompletion, 1e-9)
	require.Equal(t, 1, last.ReportCount)

	yesterday := trend[6]
	require.InDelta(t, 75.0, yesterday.OkrCompletion, 1e-9)
	require.Equal(t, 2, yesterday.ReportCount)

	require.Zero(t, trend[0].ReportCount)
}

func TestAnalyzer_Timeline(t *testing.T) {
	timeline := newAnalyzer(t).Timeline(3)
	require.Len(t, timeline, 4)
	require.Equal(t, dashboard.TimelinePoint{Date: "2025-03-09", Total: 2, Daily: 1, Monthly: 1}, timeline[2])
	require.Equal(t, dashboard.TimelinePoint{Date: "2025-03-10", Total: 1, Weekly: 1}, timeline[3])
	require.Equal(t, dashboard.TimelinePoint{Date: "2025-03-07"}, timeline[0])
}

func TestAnalyzer_UserSubmissions(t *testing.T) {
	stats := newAnalyzer(t).UserSubmissions(30)
	require.Len(t, stats, 2)
	require.Equal(t, "alice", stats[0].UserName)
	require.Equal(t, 2, stats[0].TotalReports)
	require.Equal(t, 1, stats[0].WeeklyReports)
	require.Equal(t, 1, stats[0].HighRiskCount)
	require.InDelta(t, 0.7, stats[0].AvgOkrConfidence, 1e-9)
}

func TestAnalyzer_RiskTrend(t *testing.T) {
	trend := newAnalyzer(t).RiskTrend(30)
	require.Equal(t, []dashboard.RiskTrendPoint{
		{Date: "2025-03-09", Low: 1, Medium: 1, Total: 2},
		{Date: "2025-03-10", High: 1, Total: 1},
	}, trend)
}

func TestAnalyzer_OkrRanking(t *testing.T) {
	ranking := newAnalyzer(t).OkrRanking(30)
	require.Len(t, ranking, 2)
	require.Equal(t, "bob", ranking[0].UserName)
	require.InDelta(t, 0.9, ranking[0].AvgConfidence, 1e-9)
	require.Equal(t, "alice", ranking[1].UserName)
	require.Equal(t, 1, ranking[1].HitObjectivesCount)
	require.Equal(t, 2, ranking[1].HitKRsCount)
}

func TestAnalyzer_TeamStats(t *testing.T) {
	stats := newAnalyzer(t).TeamStats()
	require.Equal(t, 3, stats.TotalUsers)
	require.Equal(t, 4, stats.TotalReports)
	require.InDelta(t, 4.0/3.0, stats.AvgReportsPerUser, 1e-9)
	require.Equal(t, dashboard.PeriodDistribution{Daily: 1, Weekly: 2, Monthly: 1}, stats.PeriodDistribution)
	require.InDelta(t, 0.25, stats.HighRiskRate, 1e-9)
	require.InDelta(t, (0.8+0.6+0.9)/3, stats.AvgOkrConfidence, 1e-9)
}

func TestFakeReportRepo_AssignsIDs(t *testing.T) {
	repo := fakereportrepo.NewFakeReportRepo()
	first, err := repo.Add(dashboard.ReportDetail{UserName: "a"})
	require.NoError(t, err)
	second, err := repo.Add(dashboard.ReportDetail{UserName: "b"})
	require.NoError(t, err)
	require.Equal(t, int64(10000), first.ID)
	require.Equal(t, int64(10001), second.ID)
}
