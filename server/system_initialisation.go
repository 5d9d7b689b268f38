package server

import (
	"strconv"
	"time"

	"github.com/jrsteele09/hrdash/dashboard"
	"github.com/jrsteele09/hrdash/internal/utils"
	"github.com/jrsteele09/hrdash/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultAdminUsername = "admin"

// InitialiseSystem creates the admin account when it is missing and, unless disabled, seeds demo
// reports into an empty report store.
func (s *Server) InitialiseSystem() error {
	if err := s.initialiseAdmin(); err != nil {
		return errors.Wrap(err, "[Server InitialiseSystem] failed to bootstrap admin")
	}
	if !s.seed {
		return nil
	}
	if err := s.initialiseReports(); err != nil {
		return errors.Wrap(err, "[Server InitialiseSystem] failed to seed reports")
	}
	return nil
}

func (s *Server) initialiseAdmin() error {
	if _, err := s.repos.Accounts.GetByUsername(DefaultAdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, users.ErrAccountNotFound) {
		return err
	}

	hash, err := users.HashPassword(s.config.GetAdminPassword())
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	admin := &users.Account{
		Identity: users.Identity{
			Username:  DefaultAdminUsername,
			FullName:  utils.Ptr("Administrator"),
			Role:      users.RoleAdmin,
			IsActive:  true,
			CreatedAt: users.NewTimestamp(s.nowTime()),
		},
		PasswordHash: hash,
	}
	if err := s.repos.Accounts.Create(admin); err != nil {
		return err
	}
	log.Info().Str("username", DefaultAdminUsername).Int64("id", admin.ID).Msg("Created admin account")
	return nil
}

func (s *Server) initialiseReports() error {
	existing, err := s.repos.Reports.All()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	samples := SampleReports(s.nowTime())
	for _, r := range samples {
		if _, err := s.repos.Reports.Add(r); err != nil {
			return err
		}
	}
	log.Info().Int("count", len(samples)).Msg("Seeded sample reports")
	return nil
}

type sampleRow struct {
	user       string
	daysAgo    int
	period     dashboard.Period
	risk       dashboard.RiskLevel
	confidence string
	summary    string
	risks      []string
	objectives []string
	krs        []string
}

var sampleRows = []sampleRow{
	{"alice", 0, dashboard.PeriodDaily, dashboard.RiskLow, "0.9", "Finished the onboarding checklist and paired on payroll import.", nil, []string{"O1 Onboarding"}, []string{"KR1.1"}},
	{"bob", 1, dashboard.PeriodWeekly, dashboard.RiskHigh, "0.4", "Vendor contract is blocked on legal review; hiring plan slipping.", []string{"Legal review has no date", "Two open roles unfilled"}, []string{"O2 Hiring"}, nil},
	{"carol", 2, dashboard.PeriodDaily, dashboard.RiskMedium, "0.7", "Ran three interviews, drafted the engagement survey.", []string{"Survey tool licence expires soon"}, []string{"O3 Engagement"}, []string{"KR3.2"}},
	{"alice", 3, dashboard.PeriodWeekly, dashboard.RiskLow, "0.85", "Benefits enrolment finished ahead of schedule.", nil, []string{"O1 Onboarding"}, []string{"KR1.2", "KR1.3"}},
	{"dave", 5, dashboard.PeriodDaily, dashboard.RiskLow, "", "Worked through the ticket backlog.", nil, nil, nil},
	{"bob", 8, dashboard.PeriodWeekly, dashboard.RiskMedium, "0.55", "Sourcing pipeline improved, offers pending approval.", []string{"Budget approval slow"}, []string{"O2 Hiring"}, []string{"KR2.1"}},
	{"carol", 12, dashboard.PeriodMonthly, dashboard.RiskLow, "0.75", "Monthly: survey launched with 64% response rate.", nil, []string{"O3 Engagement"}, []string{"KR3.1"}},
	{"dave", 15, dashboard.PeriodWeekly, dashboard.RiskHigh, "0.3", "Compliance audit found gaps in training records.", []string{"Audit findings due in two weeks"}, nil, nil},
	{"alice", 21, dashboard.PeriodMonthly, dashboard.RiskLow, "0.8", "Monthly: onboarding time down from 10 to 6 days.", nil, []string{"O1 Onboarding"}, []string{"KR1.1"}},
	{"bob", 40, dashboard.PeriodMonthly, dashboard.RiskMedium, "0.5", "Monthly: hiring at half of target.", []string{"Market competition"}, []string{"O2 Hiring"}, nil},
}

// SampleReports builds a small demo data set dated relative to now
func SampleReports(now time.Time) []dashboard.ReportDetail {
	day := now.UTC().Truncate(24 * time.Hour).Add(9 * time.Hour)
	reports := make([]dashboard.ReportDetail, 0, len(sampleRows))
	for i, row := range sampleRows {
		created := day.AddDate(0, 0, -row.daysAgo)
		start := created
		switch row.period {
		case dashboard.PeriodWeekly:
			start = created.AddDate(0, 0, -6)
		case dashboard.PeriodMonthly:
			start = created.AddDate(0, -1, 1)
		}
		r := dashboard.ReportDetail{
			UserID:        "ou_" + row.user,
			UserName:      row.user,
			PeriodType:    row.period,
			PeriodStart:   start.Format("2006-01-02"),
			PeriodEnd:     created.Format("2006-01-02"),
			CreatedAt:     created.Add(time.Duration(i) * time.Minute).Format("2006-01-02T15:04:05"),
			RawText:       row.summary + " (report " + strconv.Itoa(i+1) + ")",
			HRSummary:     row.summary,
			RiskLevel:     row.risk,
			Risks:         row.risks,
			HitObjectives: row.objectives,
			HitKRs:        row.krs,
		}
		if row.confidence != "" {
			r.OkrConfidence = utils.Ptr(row.confidence)
		}
		if row.risk == dashboard.RiskHigh {
			r.NextActions = dashboard.StringList{"Escalate to the HR business partner"}
		}
		reports = append(reports, r)
	}
	return reports
}
