package dashboard

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 10000
	dateLayout      = "2006-01-02"
)

// ReportsFilter selects reports for the list and export endpoints. Zero values mean "no filter".
type ReportsFilter struct {
	Page       int
	PageSize   int
	RiskLevel  RiskLevel
	PeriodType Period
	UserName   string // Case-insensitive substring
	Search     string // Case-insensitive substring of the summary or raw text
	StartDate  string // YYYY-MM-DD, inclusive
	EndDate    string // YYYY-MM-DD, inclusive
}

func (f ReportsFilter) Validate() error {
	if f.Page < 0 || f.PageSize < 0 || f.PageSize > MaxPageSize {
		return errors.Errorf("[ReportsFilter.Validate] page %d / page size %d out of range", f.Page, f.PageSize)
	}
	if f.RiskLevel != "" && !f.RiskLevel.Valid() {
		return errors.Errorf("[ReportsFilter.Validate] unknown risk level %q", f.RiskLevel)
	}
	if f.PeriodType != "" && !f.PeriodType.Valid() {
		return errors.Errorf("[ReportsFilter.Validate] unknown period type %q", f.PeriodType)
	}
	for _, d := range []string{f.StartDate, f.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return errors.Errorf("[ReportsFilter.Validate] date %q is not YYYY-MM-DD", d)
		}
	}
	return nil
}

// Values encodes the filter as query parameters. Pagination is left out when withPaging is false,
// as the export endpoint takes filters only.
func (f ReportsFilter) Values(withPaging bool) url.Values {
	v := url.Values{}
	if withPaging {
		if f.Page > 0 {
			v.Set("page", strconv.Itoa(f.Page))
		}
		if f.PageSize > 0 {
			v.Set("page_size", strconv.Itoa(f.PageSize))
		}
	}
	setIf(v, "risk_level", string(f.RiskLevel))
	setIf(v, "period_type", string(f.PeriodType))
	setIf(v, "user_name", f.UserName)
	setIf(v, "search", f.Search)
	setIf(v, "start_date", f.StartDate)
	setIf(v, "end_date", f.EndDate)
	return v
}

func setIf(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}

// FilterFromValues is the inverse of Values, applying defaults for missing paging
func FilterFromValues(v url.Values) (ReportsFilter, error) {
	f := ReportsFilter{
		Page:       1,
		PageSize:   DefaultPageSize,
		RiskLevel:  RiskLevel(v.Get("risk_level")),
		PeriodType: Period(v.Get("period_type")),
		UserName:   v.Get("user_name"),
		Search:     v.Get("search"),
		StartDate:  v.Get("start_date"),
		EndDate:    v.Get("end_date"),
	}
	var err error
	if s := v.Get("page"); s != "" {
		if f.Page, err = strconv.Atoi(s); err != nil || f.Page < 1 {
			return f, errors.Errorf("[FilterFromValues] invalid page %q", s)
		}
	}
	if s := v.Get("page_size"); s != "" {
		if f.PageSize, err = strconv.Atoi(s); err != nil || f.PageSize < 1 {
			return f, errors.Errorf("[FilterFromValues] invalid page_size %q", s)
		}
	}
	return f, f.Validate()
}

// Matches applies every non-paging criterion to r
func (f ReportsFilter) Matches(r *ReportDetail) bool {
	if f.RiskLevel != "" && r.RiskLevel != f.RiskLevel {
		return false
	}
	if f.PeriodType != "" && r.PeriodType != f.PeriodType {
		return false
	}
	if f.UserName != "" && !containsFold(r.UserName, f.UserName) {
		return false
	}
	if f.StartDate != "" || f.EndDate != "" {
		at, ok := r.SubmittedAt()
		if !ok {
			return false
		}
		day := at.Format(dateLayout)
		if f.StartDate != "" && day < f.StartDate {
			return false
		}
		if f.EndDate != "" && day > f.EndDate {
			return false
		}
	}
	if f.Search != "" && !containsFold(r.HRSummary, f.Search) && !containsFold(r.RawText, f.Search) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
