package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jrsteele09/hrdash/dashboard"
)

func (c *Client) Stats(ctx context.Context) (*dashboard.DashboardStats, error) {
	var stats dashboard.DashboardStats
	if err := c.getJSON(ctx, RouteStats, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) RecentReports(ctx context.Context, limit int) ([]dashboard.ReportSummary, error) {
	var reports []dashboard.ReportSummary
	if err := c.getJSON(ctx, RouteRecentReports, intParam("limit", limit), &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Client) RiskDistribution(ctx context.Context) (*dashboard.RiskDistribution, error) {
	var d dashboard.RiskDistribution
	if err := c.getJSON(ctx, RouteRiskDistribution, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) OkrTrend(ctx context.Context, days int) ([]dashboard.OkrTrendPoint, error) {
	var points []dashboard.OkrTrendPoint
	if err := c.getJSON(ctx, RouteOkrTrend, intParam("days", days), &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) ReportTimeline(ctx context.Context, days int) ([]dashboard.TimelinePoint, error) {
	var points []dashboard.TimelinePoint
	if err := c.getJSON(ctx, RouteReportTimeline, intParam("days", days), &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) Reports(ctx context.Context, filter dashboard.ReportsFilter) (*dashboard.ReportsPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	var page dashboard.ReportsPage
	if err := c.getJSON(ctx, RouteReports, filter.Values(true), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Report(ctx context.Context, id int64) (*dashboard.ReportDetail, error) {
	var report dashboard.ReportDetail
	if err := c.getJSON(ctx, RouteReport(id), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) UserSubmissions(ctx context.Context, days int) ([]dashboard.UserSubmissionStats, error) {
	var stats []dashboard.UserSubmissionStats
	if err := c.getJSON(ctx, RouteUserSubmissions, intParam("days", days), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) RiskTrend(ctx context.Context, days int) ([]dashboard.RiskTrendPoint, error) {
	var points []dashboard.RiskTrendPoint
	if err := c.getJSON(ctx, RouteRiskTrend, intParam("days", days), &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) OkrRanking(ctx context.Context, days int) ([]dashboard.OkrRanking, error) {
	var ranking []dashboard.OkrRanking
	if err := c.getJSON(ctx, RouteOkrRanking, intParam("days", days), &ranking); err != nil {
		return nil, err
	}
	return ranking, nil
}

func (c *Client) TeamStats(ctx context.Context) (*dashboard.TeamStatistics, error) {
	var stats dashboard.TeamStatistics
	if err := c.getJSON(ctx, RouteTeamStats, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// intParam leaves the parameter out when n is not positive, so the backend default applies
func intParam(key string, n int) url.Values {
	if n <= 0 {
		return nil
	}
	return url.Values{key: {strconv.Itoa(n)}}
}
