package server

import (
	"net/http"

	"github.com/jrsteele09/hrdash/internal/metrics"
)

func (s *Server) initRoutes() {
	for _, mw := range s.APIMiddleware() {
		s.router.Use(routerMiddleware(mw))
	}
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteFunc("GET "+RouteMetrics, metrics.Handler(s.gatherer).ServeHTTP)

	// AUTH
	s.RegisterRouteFunc("POST "+RouteAuthLogin, s.LoginHandler())
	s.RegisterRouteFunc("POST "+RouteAuthRegister, s.RegisterHandler())
	s.RegisterRouteFunc("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.RequireAuth()))

	// DASHBOARD
	s.RegisterRouteFunc("GET "+RouteDashboardStats, ChainMiddleware(s.StatsHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteRecentReports, ChainMiddleware(s.RecentReportsHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteRiskDistribution, ChainMiddleware(s.RiskDistributionHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteOkrTrend, ChainMiddleware(s.OkrTrendHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteReportTimeline, ChainMiddleware(s.ReportTimelineHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteReports, ChainMiddleware(s.ReportsHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteReportsExport, ChainMiddleware(s.ReportsExportHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteReport, ChainMiddleware(s.ReportHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteReportExport, ChainMiddleware(s.ReportExportHandler(), s.RequireAuth()))

	// ANALYTICS
	s.RegisterRouteFunc("GET "+RouteUserSubmissions, ChainMiddleware(s.UserSubmissionsHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteRiskTrend, ChainMiddleware(s.RiskTrendHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteOkrRanking, ChainMiddleware(s.OkrRankingHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteTeamStats, ChainMiddleware(s.TeamStatsHandler(), s.RequireAuth()))
}
