package dashboard_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/hrdash/dashboard"
	"github.com/jrsteele09/hrdash/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestStringList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want dashboard.StringList
	}{
		{name: "list", json: `{"risks":["late delivery","scope creep"]}`, want: dashboard.StringList{"late delivery", "scope creep"}},
		{name: "single string", json: `{"risks":"late delivery"}`, want: dashboard.StringList{"late delivery"}},
		{name: "empty string", json: `{"risks":""}`, want: nil},
		{name: "null", json: `{"risks":null}`, want: nil},
		{name: "missing", json: `{}`, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r dashboard.ReportDetail
			require.NoError(t, json.Unmarshal([]byte(tt.json), &r))
			require.Equal(t, tt.want, r.Risks)
		})
	}

	t.Run("number is rejected", func(t *testing.T) {
		var r dashboard.ReportDetail
		require.Error(t, json.Unmarshal([]byte(`{"risks":42}`), &r))
	})
}

func TestReportDetail_Confidence(t *testing.T) {
	r := dashboard.ReportDetail{}
	_, ok := r.Confidence()
	require.False(t, ok)

	r.OkrConfidence = utils.Ptr("0.75")
	v, ok := r.Confidence()
	require.True(t, ok)
	require.InDelta(t, 0.75, v, 1e-9)

	r.OkrConfidence = utils.Ptr("high")
	_, ok = r.Confidence()
	require.False(t, ok)
}

func TestReportDetail_SubmittedAt(t *testing.T) {
	tests := []struct {
		createdAt string
		want      time.Time
	}{
		{"2025-01-06T09:15:00Z", time.Date(2025, 1, 6, 9, 15, 0, 0, time.UTC)},
		{"2025-01-06T09:15:00.123", time.Date(2025, 1, 6, 9, 15, 0, 123000000, time.UTC)},
		{"2025-01-06 09:15:00", time.Date(2025, 1, 6, 9, 15, 0, 0, time.UTC)},
		{"1736154900", time.Date(2025, 1, 6, 9, 15, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.createdAt, func(t *testing.T) {
			r := dashboard.ReportDetail{CreatedAt: tt.createdAt}
			got, ok := r.SubmittedAt()
			require.True(t, ok)
			require.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, ok := (&dashboard.ReportDetail{CreatedAt: "yesterday"}).SubmittedAt()
	require.False(t, ok)
}

func TestLabels(t *testing.T) {
	require.Equal(t, "Weekly", dashboard.PeriodWeekly.Label())
	require.Equal(t, "quarterly", dashboard.Period("quarterly").Label())
	require.Equal(t, "High", dashboard.RiskHigh.Label())
	require.Equal(t, "unknown", dashboard.RiskLevel("unknown").Label())

	p, ok := dashboard.ParsePeriod(" Monthly ")
	require.True(t, ok)
	require.Equal(t, dashboard.PeriodMonthly, p)

	_, ok = dashboard.ParseRiskLevel("severe")
	require.False(t, ok)
}

func TestRiskDistribution_Total(t *testing.T) {
	require.Equal(t, 6, dashboard.RiskDistribution{Low: 1, Medium: 2, High: 3}.Total())
}
