package fakereportrepo

import (
	"sync"

	"github.com/jrsteele09/hrdash/dashboard"
)

var _ dashboard.ReportRepo = (*FakeReportRepo)(nil)

// firstReportID keeps ids clear of small integers so they are not confused with row numbers
const firstReportID = 10000

type FakeReportRepo struct {
	reports map[int64]dashboard.ReportDetail
	nextID  int64
	lock    sync.RWMutex
}

func NewFakeReportRepo(reports ...dashboard.ReportDetail) *FakeReportRepo {
	r := &FakeReportRepo{
		reports: make(map[int64]dashboard.ReportDetail),
		nextID:  firstReportID,
	}
	for _, report := range reports {
		_, _ = r.Add(report)
	}
	return r
}

func (r *FakeReportRepo) All() ([]dashboard.ReportDetail, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]dashboard.ReportDetail, 0, len(r.reports))
	for _, report := range r.reports {
		out = append(out, report)
	}
	return out, nil
}

func (r *FakeReportRepo) Add(report dashboard.ReportDetail) (dashboard.ReportDetail, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if report.ID == 0 {
		report.ID = r.nextID
	}
	if report.ID >= r.nextID {
		r.nextID = report.ID + 1
	}
	r.reports[report.ID] = report
	return report, nil
}
