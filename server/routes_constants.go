package server

const (
	RouteAuthLogin    = "/api/auth/login"
	RouteAuthRegister = "/api/auth/register"
	RouteAuthMe       = "/api/auth/me"
	RouteAuthLogout   = "/api/auth/logout"

	RouteDashboardStats   = "/api/dashboard/stats"
	RouteRecentReports    = "/api/dashboard/recent-reports"
	RouteRiskDistribution = "/api/dashboard/risk-distribution"
	RouteOkrTrend         = "/api/dashboard/okr-trend"
	RouteReportTimeline   = "/api/dashboard/report-timeline"
	RouteReports          = "/api/dashboard/reports"
	RouteReportsExport    = "/api/dashboard/reports/export"
	RouteReport           = "/api/dashboard/reports/{id}"
	RouteReportExport     = "/api/dashboard/reports/{id}/export"
	RouteUserSubmissions  = "/api/dashboard/analytics/user-submissions"
	RouteRiskTrend        = "/api/dashboard/analytics/risk-trend"
	RouteOkrRanking       = "/api/dashboard/analytics/okr-ranking"
	RouteTeamStats        = "/api/dashboard/analytics/team-stats"

	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)

const contentTypeJSON = "application/json"
