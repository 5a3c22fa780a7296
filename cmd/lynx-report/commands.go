package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"lynx/internal/backend"
	appcli "lynx/internal/cli"
	"lynx/internal/config"
	"lynx/internal/core"
	"lynx/internal/log"
	"lynx/internal/report"
	"lynx/internal/services"
	"lynx/internal/storage"
)

// period says which selector flags a report takes.
type period int

const (
	noPeriod period = iota
	monthly
	quarterly
)

type reportSpec struct {
	name          string
	kind          report.Kind
	usage         string
	period        period
	query         bool
	authorization bool
}

var (
	billingReport = reportSpec{
		name: "billing", kind: report.KindBilling, period: monthly,
		usage: "Monthly billing report of lesson notes",
	}
	sipDemographicsReport = reportSpec{
		name: "sip-demographics", kind: report.KindSipDemographics, period: monthly,
		usage: "Monthly SIP demographic report",
	}
	sipServicesReport = reportSpec{
		name: "sip-services", kind: report.KindSipQuarterlyServices, period: quarterly,
		usage: "Quarterly SIP services report",
	}
	sipQuarterlyDemographicsReport = reportSpec{
		name: "sip-quarterly-demographics", kind: report.KindSipQuarterlyDemographics, period: quarterly,
		usage: "Quarterly SIP demographic report",
	}
	contactsReport = reportSpec{
		name: "contacts", kind: report.KindContacts, query: true,
		usage: "Contact search listing",
	}
	billingReviewReport = reportSpec{
		name: "billing-review", kind: report.KindBillingReview, period: monthly, authorization: true,
		usage: "Billing review of one authorization for a month",
	}
)

func reportCommand(spec reportSpec) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   string(report.FormatCSV),
			Usage:   "Output format (csv, xlsx, pdf)",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file, a directory, or - for stdout (default: report filename in the current directory)",
		},
		&cli.BoolFlag{
			Name:  "enqueue",
			Usage: "Queue the report for the export worker instead of rendering it here",
		},
	}

	now := time.Now()
	switch spec.period {
	case monthly:
		flags = append(flags,
			&cli.StringFlag{Name: "month", Aliases: []string{"m"}, Value: strconv.Itoa(int(now.Month())), Usage: "Month number or name"},
			&cli.IntFlag{Name: "year", Aliases: []string{"y"}, Value: now.Year(), Usage: "Calendar year"},
		)
	case quarterly:
		flags = append(flags,
			&cli.IntFlag{Name: "quarter", Aliases: []string{"q"}, Required: true, Usage: "Fiscal quarter (1-4, Q1 starts in October)"},
			&cli.IntFlag{Name: "year", Aliases: []string{"y"}, Required: true, Usage: "Year the fiscal year starts in"},
		)
	}
	if spec.query {
		flags = append(flags, &cli.StringFlag{Name: "query", Usage: "Search term; empty lists every contact"})
	}
	if spec.authorization {
		flags = append(flags, &cli.Int64Flag{Name: "authorization", Aliases: []string{"a"}, Required: true, Usage: "Authorization id"})
	}

	return &cli.Command{
		Name:  spec.name,
		Usage: spec.usage,
		Flags: flags,
		Action: func(c *cli.Context) error {
			req, err := buildRequest(spec, c)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			return withBackend(c, func(ctx context.Context, b *backend.Backend, logger *log.Logger) error {
				if c.Bool("enqueue") {
					jobID, err := b.Reports.RequestExport(ctx, req, format)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, jobID.String())
					return nil
				}
				return writeReport(ctx, b.Reports, req, format, c.String("out"), c.App.Writer, logger)
			})
		},
	}
}

func buildRequest(spec reportSpec, c *cli.Context) (services.ReportRequest, error) {
	req := services.ReportRequest{Kind: spec.kind}
	switch spec.period {
	case monthly:
		month, err := parseMonth(c.String("month"))
		if err != nil {
			return req, err
		}
		req.Month, req.Year = month, c.Int("year")
	case quarterly:
		req.Quarter, req.Year = c.Int("quarter"), c.Int("year")
	}
	if spec.query {
		req.Query = c.String("query")
	}
	if spec.authorization {
		req.AuthorizationID = c.Int64("authorization")
	}
	return req, req.Validate()
}

// parseMonth accepts a month number or an English month name.
func parseMonth(s string) (int, error) {
	if m, err := strconv.Atoi(s); err == nil {
		return m, nil
	}
	if m, ok := core.MonthFromName(s); ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

func writeReport(ctx context.Context, reports *services.ReportService, req services.ReportRequest, format report.Format, out string, stdout io.Writer, logger *log.Logger) error {
	doc, err := reports.Build(ctx, req)
	if err != nil {
		return err
	}
	data, err := reports.Render(doc, format)
	if err != nil {
		return err
	}

	if out == "-" {
		_, err := stdout.Write(data)
		return err
	}
	path := outputPath(out, doc.Filename(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("Report written", log.FieldReport, string(req.Kind), "rows", len(doc.Rows), "path", path)
	return nil
}

// outputPath resolves --out: empty means the current directory, and an
// existing directory receives the report under its own filename.
func outputPath(out, filename string) string {
	if out == "" {
		return filename
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return filepath.Join(out, filename)
	}
	return out
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations to the SQLite database",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()
			logger.Info("Database is up to date", "db_path", cfg.SQLiteDBPath)
			return nil
		},
	}
}

func setup(c *cli.Context) (*config.Config, *log.Logger, error) {
	_ = godotenv.Load(c.String("env-file"))
	cfg, err := appcli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, appcli.SetupLoggerTo(cfg, c.App.ErrWriter), nil
}

func withBackend(c *cli.Context, fn func(context.Context, *backend.Backend, *log.Logger) error) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	ctx, cancel := appcli.SignalContext(logger)
	defer cancel()

	b, err := appcli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b, logger)
}
