package dashboard_test

import (
	"net/url"
	"testing"

	"github.com/jrsteele09/hrdash/dashboard"
	"github.com/stretchr/testify/require"
)

func TestReportsFilter_Values(t *testing.T) {
	f := dashboard.ReportsFilter{
		Page:       2,
		PageSize:   50,
		RiskLevel:  dashboard.RiskHigh,
		PeriodType: dashboard.PeriodWeekly,
		UserName:   "  wang ",
		Search:     "delay",
		StartDate:  "2025-01-01",
	}

	v := f.Values(true)
	require.Equal(t, "2", v.Get("page"))
	require.Equal(t, "50", v.Get("page_size"))
	require.Equal(t, "high", v.Get("risk_level"))
	require.Equal(t, "weekly", v.Get("period_type"))
	require.Equal(t, "wang", v.Get("user_name"))
	require.Equal(t, "delay", v.Get("search"))
	require.Equal(t, "2025-01-01", v.Get("start_date"))
	require.False(t, v.Has("end_date"))

	v = f.Values(false)
	require.False(t, v.Has("page"))
	require.False(t, v.Has("page_size"))
	require.Equal(t, "high", v.Get("risk_level"))

	require.Empty(t, dashboard.ReportsFilter{}.Values(true))
}

func TestFilterFromValues(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, err := dashboard.FilterFromValues(url.Values{})
		require.NoError(t, err)
		require.Equal(t, 1, f.Page)
		require.Equal(t, dashboard.DefaultPageSize, f.PageSize)
	})

	t.Run("round trip", func(t *testing.T) {
		in := dashboard.ReportsFilter{Page: 3, PageSize: 5, RiskLevel: dashboard.RiskLow, EndDate: "2025-02-01"}
		out, err := dashboard.FilterFromValues(in.Values(true))
		require.NoError(t, err)
		require.Equal(t, in, out)
	})

	invalid := []url.Values{
		{"page": {"zero"}},
		{"page": {"0"}},
		{"page_size": {"-1"}},
		{"risk_level": {"severe"}},
		{"period_type": {"yearly"}},
		{"start_date": {"01/02/2025"}},
	}
	for _, v := range invalid {
		t.Run("invalid "+v.Encode(), func(t *testing.T) {
			_, err := dashboard.FilterFromValues(v)
			require.Error(t, err)
		})
	}
}

func TestReportsFilter_Matches(t *testing.T) {
	r := &dashboard.ReportDetail{
		UserName:   "Wang Lei",
		PeriodType: dashboard.PeriodWeekly,
		RiskLevel:  dashboard.RiskMedium,
		CreatedAt:  "2025-01-15T10:00:00Z",
		HRSummary:  "Integration is behind schedule",
		RawText:    "blocked on vendor API",
	}

	tests := []struct {
		name   string
		filter dashboard.ReportsFilter
		want   bool
	}{
		{name: "empty", filter: dashboard.ReportsFilter{}, want: true},
		{name: "user substring any case", filter: dashboard.ReportsFilter{UserName: "wang"}, want: true},
		{name: "other user", filter: dashboard.ReportsFilter{UserName: "li"}, want: false},
		{name: "risk", filter: dashboard.ReportsFilter{RiskLevel: dashboard.RiskHigh}, want: false},
		{name: "period", filter: dashboard.ReportsFilter{PeriodType: dashboard.PeriodWeekly}, want: true},
		{name: "search summary", filter: dashboard.ReportsFilter{Search: "SCHEDULE"}, want: true},
		{name: "search raw text", filter: dashboard.ReportsFilter{Search: "vendor"}, want: true},
		{name: "search miss", filter: dashboard.ReportsFilter{Search: "budget"}, want: false},
		{name: "inclusive range", filter: dashboard.ReportsFilter{StartDate: "2025-01-15", EndDate: "2025-01-15"}, want: true},
		{name: "before start", filter: dashboard.ReportsFilter{StartDate: "2025-01-16"}, want: false},
		{name: "after end", filter: dashboard.ReportsFilter{EndDate: "2025-01-14"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.filter.Matches(r))
		})
	}
}
