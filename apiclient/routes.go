package apiclient

// Backend API paths
const (
	RouteLogin    = "/api/auth/login"
	RouteRegister = "/api/auth/register"
	RouteMe       = "/api/auth/me"
	RouteLogout   = "/api/auth/logout"

	RouteStats            = "/api/dashboard/stats"
	RouteRecentReports    = "/api/dashboard/recent-reports"
	RouteRiskDistribution = "/api/dashboard/risk-distribution"
	RouteOkrTrend         = "/api/dashboard/okr-trend"
	RouteReportTimeline   = "/api/dashboard/report-timeline"
	RouteReports          = "/api/dashboard/reports"
	RouteReportsExport    = "/api/dashboard/reports/export"

	RouteUserSubmissions = "/api/dashboard/analytics/user-submissions"
	RouteRiskTrend       = "/api/dashboard/analytics/risk-trend"
	RouteOkrRanking      = "/api/dashboard/analytics/okr-ranking"
	RouteTeamStats       = "/api/dashboard/analytics/team-stats"
)

// RouteReport is the detail path of report id
func RouteReport(id int64) string {
	return RouteReports + "/" + itoa(id)
}

// RouteReportExport is the CSV export path of report id
func RouteReportExport(id int64) string {
	return RouteReport(id) + "/export"
}
