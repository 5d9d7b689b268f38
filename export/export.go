// Package export renders dashboard reports as CSV and XLSX files.
package export

import (
	"encoding/csv"
	"html"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/hrdash/dashboard"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	ExtCSV  = "csv"
	ExtXLSX = "xlsx"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// utf8BOM makes spreadsheet apps detect the encoding of a CSV file
const utf8BOM = "\xEF\xBB\xBF"

var reportsHeader = []string{"ID", "Submitter", "Period", "Start Date", "End Date", "Created At", "Risk Level", "HR Summary"}

// strictPolicy strips all markup; report text comes from chat messages and LLM output
var strictPolicy = bluemonday.StrictPolicy()

// Sanitize removes HTML from free text. Text without real markup is returned verbatim, so
// comparisons like "x<y" and literal entities survive.
func Sanitize(s string) string {
	if !strings.Contains(s, "<") || !hasMarkup(s) {
		return s
	}
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// voidElements never take an end tag, so a bare start tag is enough to count as markup
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true, atom.Embed: true,
	atom.Hr: true, atom.Img: true, atom.Input: true, atom.Link: true, atom.Meta: true,
	atom.Source: true, atom.Track: true, atom.Wbr: true,
}

// hasMarkup reports whether s holds an HTML comment, a closing or self-closing tag of a known
// element, or a void element. An unmatched "<b or c>" is prose.
func hasMarkup(s string) bool {
	tokenizer := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		switch tokenizer.Next() {
		case xhtml.ErrorToken:
			return false
		case xhtml.CommentToken:
			return true
		case xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			if tokenizer.Token().DataAtom != 0 {
				return true
			}
		case xhtml.StartTagToken:
			if voidElements[tokenizer.Token().DataAtom] {
				return true
			}
		}
	}
}

// Filename builds a timestamped download name such as reports_20250310_120000.csv
func Filename(base, ext string, now time.Time) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "export"
	}
	return base + "_" + now.UTC().Format("20060102_150405") + "." + strings.TrimPrefix(ext, ".")
}

// ReportsFilename is the name used for a reports list export
func ReportsFilename(ext string, now time.Time) string {
	return Filename("reports_export", ext, now)
}

// ReportFilename is the name used for a single report export
func ReportFilename(id int64, ext string, now time.Time) string {
	return Filename("report_"+strconv.FormatInt(id, 10), ext, now)
}

func reportsRows(reports []dashboard.ReportSummary) [][]string {
	rows := make([][]string, 0, len(reports)+1)
	rows = append(rows, reportsHeader)
	for _, r := range reports {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			Sanitize(r.UserName),
			r.PeriodType.Label(),
			r.PeriodStart,
			r.PeriodEnd,
			r.CreatedAt,
			r.RiskLevel.Label(),
			Sanitize(r.HRSummary),
		})
	}
	return rows
}

// detailRows lays a report out as field/content pairs followed by one section per list
func detailRows(r *dashboard.ReportDetail) [][]string {
	userName := r.UserName
	if userName == "" {
		userName = "Unknown"
	}
	rows := [][]string{
		{"Field", "Content"},
		{"Report ID", strconv.FormatInt(r.ID, 10)},
		{"Submitter", Sanitize(userName)},
		{"Period", r.PeriodType.Label()},
		{"Start Date", r.PeriodStart},
		{"End Date", r.PeriodEnd},
		{"Created At", r.CreatedAt},
		{"Risk Level", r.RiskLevel.Label()},
		{},
		{"HR Summary", Sanitize(r.HRSummary)},
		{},
		{"Raw Text", Sanitize(r.RawText)},
	}

	sections := []struct {
		title string
		items dashboard.StringList
	}{
		{"Risks", r.Risks},
		{"Needs", r.Needs},
		{"Hit Objectives", r.HitObjectives},
		{"Hit Key Results", r.HitKRs},
		{"OKR Gaps", r.OkrGaps},
		{"Next Actions", r.NextActions},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		rows = append(rows, []string{}, []string{s.title, ""})
		for _, item := range s.items {
			rows = append(rows, []string{"", Sanitize(item)})
		}
	}
	return rows
}

// ReportsCSV writes the reports list as CSV with a UTF-8 BOM
func ReportsCSV(w io.Writer, reports []dashboard.ReportSummary) error {
	return writeCSV(w, reportsRows(reports))
}

// ReportDetailCSV writes one report as field/content CSV with a UTF-8 BOM
func ReportDetailCSV(w io.Writer, report *dashboard.ReportDetail) error {
	if report == nil {
		return errors.New("[ReportDetailCSV] report is nil")
	}
	return writeCSV(w, detailRows(report))
}

func writeCSV(w io.Writer, rows [][]string) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return errors.Wrap(err, "[writeCSV] write BOM")
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "[writeCSV] write rows")
	}
	return nil
}
