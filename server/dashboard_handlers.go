package server

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/hrdash/dashboard"
	"github.com/jrsteele09/hrdash/export"
	"github.com/rs/zerolog/log"
)

const (
	defaultRecentLimit = 10
	defaultTrendDays   = 30
)

// analyzer loads every report; a failing store degrades to an empty dashboard
func (s *Server) analyzer() *dashboard.Analyzer {
	reports, err := s.repos.Reports.All()
	if err != nil {
		log.Err(err).Msg("Failed to load reports")
		reports = nil
	}
	return dashboard.NewAnalyzer(reports, dashboard.WithNowTime(s.nowTime))
}

// intQuery reads a positive integer query parameter, answering 422 when it is malformed
func intQuery(w http.ResponseWriter, q url.Values, name string, def int) (int, bool) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		writeValidationError(w, "query", name, "value is not a valid positive integer")
		return 0, false
	}
	return v, true
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.analyzer().Stats())
	}
}

func (s *Server) RecentReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := intQuery(w, r.URL.Query(), "limit", defaultRecentLimit)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.analyzer().Recent(limit))
	}
}

func (s *Server) RiskDistributionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.analyzer().RiskDistribution())
	}
}

// daysHandler serves the day-windowed series endpoints
func (s *Server) daysHandler(series func(a *dashboard.Analyzer, days int) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, ok := intQuery(w, r.URL.Query(), "days", defaultTrendDays)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, series(s.analyzer(), days))
	}
}

func (s *Server) OkrTrendHandler() http.HandlerFunc {
	return s.daysHandler(func(a *dashboard.Analyzer, days int) interface{} { return a.OkrTrend(days) })
}

func (s *Server) ReportTimelineHandler() http.HandlerFunc {
	return s.daysHandler(func(a *dashboard.Analyzer, days int) interface{} { return a.Timeline(days) })
}

func (s *Server) UserSubmissionsHandler() http.HandlerFunc {
	return s.daysHandler(func(a *dashboard.Analyzer, days int) interface{} { return a.UserSubmissions(days) })
}

func (s *Server) RiskTrendHandler() http.HandlerFunc {
	return s.daysHandler(func(a *dashboard.Analyzer, days int) interface{} { return a.RiskTrend(days) })
}

func (s *Server) OkrRankingHandler() http.HandlerFunc {
	return s.daysHandler(func(a *dashboard.Analyzer, days int) interface{} { return a.OkrRanking(days) })
}

func (s *Server) TeamStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.analyzer().TeamStats())
	}
}

func (s *Server) ReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := dashboard.FilterFromValues(r.URL.Query())
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.analyzer().List(filter))
	}
}

func (s *Server) reportFromPath(w http.ResponseWriter, r *http.Request) *dashboard.ReportDetail {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeValidationError(w, "path", "report_id", "value is not a valid integer")
		return nil
	}
	report := s.analyzer().Find(id)
	if report == nil {
		writeDetail(w, http.StatusNotFound, "Report not found")
		return nil
	}
	return report
}

func (s *Server) ReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if report := s.reportFromPath(w, r); report != nil {
			writeJSON(w, http.StatusOK, report)
		}
	}
}

// exportFormat picks the file type from ?format=, CSV unless xlsx is asked for
func exportFormat(r *http.Request) (ext, contentType string) {
	if strings.EqualFold(r.URL.Query().Get("format"), export.ExtXLSX) {
		return export.ExtXLSX, export.ContentTypeXLSX
	}
	return export.ExtCSV, export.ContentTypeCSV
}

// ReportsExportHandler exports every report matching the filters, ignoring paging
func (s *Server) ReportsExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := dashboard.FilterFromValues(r.URL.Query())
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		filter.Page, filter.PageSize = 1, dashboard.MaxPageSize
		items := s.analyzer().List(filter).Items

		ext, contentType := exportFormat(r)
		var buf bytes.Buffer
		if ext == export.ExtXLSX {
			err = export.ReportsXLSX(&buf, items)
		} else {
			err = export.ReportsCSV(&buf, items)
		}
		if err != nil {
			log.Err(err).Msg("Reports export failed")
			writeDetail(w, http.StatusInternalServerError, "Export failed: "+err.Error())
			return
		}
		s.writeAttachment(w, export.ReportsFilename(ext, s.nowTime()), contentType, buf.Bytes())
	}
}

func (s *Server) ReportExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := s.reportFromPath(w, r)
		if report == nil {
			return
		}

		ext, contentType := exportFormat(r)
		var buf bytes.Buffer
		var err error
		if ext == export.ExtXLSX {
			err = export.ReportDetailXLSX(&buf, report)
		} else {
			err = export.ReportDetailCSV(&buf, report)
		}
		if err != nil {
			log.Err(err).Int64("report_id", report.ID).Msg("Report export failed")
			writeDetail(w, http.StatusInternalServerError, "Export failed: "+err.Error())
			return
		}
		s.writeAttachment(w, export.ReportFilename(report.ID, ext, s.nowTime()), contentType, buf.Bytes())
	}
}

func (s *Server) writeAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Warn().Err(err).Str("file", filename).Msg("Failed to write export")
	}
}
