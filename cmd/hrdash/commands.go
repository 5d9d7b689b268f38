package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/hrdash/dashboard"
	"github.com/jrsteele09/hrdash/export"
	apperrors "github.com/jrsteele09/hrdash/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

func newFlagSet(c *cli, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { fmt.Fprintf(c.stderr, "Usage: hrdash %s\n", commands[name].usage) }
	return fs
}

func loginCommand(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (read from stdin when empty)")
	remember := fs.Bool("remember", false, "keep the session for seven days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.Usage()
		return errors.Wrap(apperrors.ErrInvalidArgument, "username is required")
	}
	if *password == "" {
		fmt.Fprint(c.stderr, "Password: ")
		p, err := c.readPassword()
		if err != nil {
			return err
		}
		*password = p
	}

	resp, err := c.app.Client.Login(ctx, *username, *password, *remember)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Signed in as %s (%s), session valid for %s\n",
		resp.User.DisplayName(), resp.User.Role, time.Duration(resp.ExpiresIn)*time.Second)
	return nil
}

// readPassword reads without echo from a terminal, and a single line from anything else
func (c *cli) readPassword() (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.stderr)
		if err != nil {
			return "", errors.Wrap(err, "read password")
		}
		return string(data), nil
	}
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "read password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func logoutCommand(ctx context.Context, c *cli, _ []string) error {
	if !c.app.Store.IsAuthenticated() {
		fmt.Fprintln(c.stdout, "Not signed in")
		return nil
	}
	c.app.Store.Logout(ctx)
	fmt.Fprintln(c.stdout, "Signed out")
	return nil
}

func whoamiCommand(ctx context.Context, c *cli, _ []string) error {
	identity, err := c.app.Client.RefreshIdentity(ctx)
	if err != nil {
		return err
	}
	printIdentity(c.stdout, identity)
	return nil
}

func statsCommand(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "stats")
	limit := fs.Int("limit", 5, "recent reports to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stats, err := c.app.Client.Stats(ctx)
	if err != nil {
		return err
	}
	dist, err := c.app.Client.RiskDistribution(ctx)
	if err != nil {
		return err
	}
	recent, err := c.app.Client.RecentReports(ctx, *limit)
	if err != nil {
		return err
	}

	printStats(c.stdout, stats, dist)
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Recent reports")
	printReports(c.stdout, recent)
	return nil
}

// filterFlags registers the report filter flags shared by reports and export
func filterFlags(fs *flag.FlagSet) func() (dashboard.ReportsFilter, error) {
	risk := fs.String("risk", "", "risk level: low, medium or high")
	period := fs.String("period", "", "period type: daily, weekly or monthly")
	user := fs.String("user", "", "submitter name contains")
	search := fs.String("search", "", "summary or text contains")
	from := fs.String("from", "", "created on or after YYYY-MM-DD")
	to := fs.String("to", "", "created on or before YYYY-MM-DD")

	return func() (dashboard.ReportsFilter, error) {
		f := dashboard.ReportsFilter{UserName: *user, Search: *search, StartDate: *from, EndDate: *to}
		if *risk != "" {
			r, ok := dashboard.ParseRiskLevel(*risk)
			if !ok {
				return f, errors.Wrapf(apperrors.ErrInvalidArgument, "unknown risk level %q", *risk)
			}
			f.RiskLevel = r
		}
		if *period != "" {
			p, ok := dashboard.ParsePeriod(*period)
			if !ok {
				return f, errors.Wrapf(apperrors.ErrInvalidArgument, "unknown period %q", *period)
			}
			f.PeriodType = p
		}
		return f, f.Validate()
	}
}

func reportsCommand(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "reports")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", dashboard.DefaultPageSize, "page size")
	filter := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := filter()
	if err != nil {
		return err
	}
	f.Page, f.PageSize = *page, *size

	result, err := c.app.Client.Reports(ctx, f)
	if err != nil {
		return err
	}
	printReports(c.stdout, result.Items)
	fmt.Fprintf(c.stdout, "\nPage %d of %d, %d reports\n", result.Page, result.TotalPages, result.Total)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.Wrap(apperrors.ErrInvalidArgument, "expected one report id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(apperrors.ErrInvalidArgument, "bad report id %q", args[0])
	}
	return id, nil
}

func reportCommand(ctx context.Context, c *cli, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	report, err := c.app.Client.Report(ctx, id)
	if err != nil {
		return err
	}
	printReport(c.stdout, report)
	return nil
}

func analyticsCommand(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "analytics")
	days := fs.Int("days", 30, "window in days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	team, err := c.app.Client.TeamStats(ctx)
	if err != nil {
		return err
	}
	submissions, err := c.app.Client.UserSubmissions(ctx, *days)
	if err != nil {
		return err
	}
	ranking, err := c.app.Client.OkrRanking(ctx, *days)
	if err != nil {
		return err
	}
	trend, err := c.app.Client.RiskTrend(ctx, *days)
	if err != nil {
		return err
	}

	printTeam(c.stdout, team)
	fmt.Fprintf(c.stdout, "\nSubmissions, last %d days\n", *days)
	printSubmissions(c.stdout, submissions)
	fmt.Fprintf(c.stdout, "\nOKR ranking, last %d days\n", *days)
	printRanking(c.stdout, ranking)
	fmt.Fprintf(c.stdout, "\nRisk trend, last %d days\n", *days)
	printRiskTrend(c.stdout, trend)
	return nil
}

// exportCommand downloads the backend CSV, or with -xlsx renders a workbook from the API data
func exportCommand(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "export")
	id := fs.Int64("id", 0, "export a single report")
	xlsx := fs.Bool("xlsx", false, "write an Excel workbook")
	out := fs.String("o", "", "output file (defaults to a timestamped name)")
	filter := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := filter()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	var name string
	switch {
	case *xlsx && *id > 0:
		report, err := c.app.Client.Report(ctx, *id)
		if err != nil {
			return err
		}
		if err := export.ReportDetailXLSX(&buf, report); err != nil {
			return err
		}
		name = export.ReportFilename(report.ID, export.ExtXLSX, time.Now())
	case *xlsx:
		f.Page, f.PageSize = 1, dashboard.MaxPageSize
		page, err := c.app.Client.Reports(ctx, f)
		if err != nil {
			return err
		}
		if err := export.ReportsXLSX(&buf, page.Items); err != nil {
			return err
		}
		name = export.ReportsFilename(export.ExtXLSX, time.Now())
	case *id > 0:
		dl, err := c.app.Client.ExportReport(ctx, *id, &buf)
		if err != nil {
			return err
		}
		name = dl.Filename
	default:
		dl, err := c.app.Client.ExportReports(ctx, f, &buf)
		if err != nil {
			return err
		}
		name = dl.Filename
	}
	return c.save(*out, name, buf.Bytes())
}

func downloadCommand(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet(c, "download")
	out := fs.String("o", "", "output file (defaults to the served name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.Wrap(apperrors.ErrInvalidArgument, "expected one path or url")
	}

	var buf bytes.Buffer
	dl, err := c.app.Client.DownloadExport(ctx, fs.Arg(0), &buf)
	if err != nil {
		return err
	}
	return c.save(*out, dl.Filename, buf.Bytes())
}

func (c *cli) save(path, fallback string, data []byte) error {
	if path == "" {
		path = fallback
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write export")
	}
	fmt.Fprintf(c.stdout, "Saved %s (%d bytes)\n", path, len(data))
	return nil
}
