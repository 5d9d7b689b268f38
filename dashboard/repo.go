package dashboard

import "errors"

var ErrReportNotFound = errors.New("report not found")

// ReportRepo is the source of translated reports behind the dashboard endpoints
type ReportRepo interface {
	// All returns every report; order is unspecified
	All() ([]ReportDetail, error)
	// Add stores r, assigning an id when r.ID is zero
	Add(r ReportDetail) (ReportDetail, error)
}
