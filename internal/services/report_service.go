package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/blueshirts/cofi/internal/amqp"
	"github.com/blueshirts/cofi/internal/core"
	applog "github.com/blueshirts/cofi/internal/log"
	"github.com/blueshirts/cofi/internal/sheets"
	"github.com/blueshirts/cofi/internal/source"
)

// ReportPublisher announces finished reports. Satisfied by *amqp.Client.
type ReportPublisher interface {
	PublishReport(ctx context.Context, msg *amqp.ReportMessage) error
}

// ReportOptions selects the optional aggregation filters for one run.
type ReportOptions struct {
	IgnoreDonuts     bool
	IgnoreCCPayments bool
}

// ReportService orchestrates a report run: fetch the transaction history,
// aggregate it, then export and announce the result. Export and announce are
// best effort; the report is returned even when they fail.
type ReportService struct {
	src       source.TransactionSource
	exporter  sheets.ReportExporter
	publisher ReportPublisher

	// merchants suppressed by the IgnoreDonuts option
	donutMerchants []string
}

func NewReportService(src source.TransactionSource, donutMerchants []string) *ReportService {
	return &ReportService{
		src:            src,
		donutMerchants: donutMerchants,
	}
}

// WithExporter attaches a sheet exporter. Nil-safe chaining helper.
func (s *ReportService) WithExporter(e sheets.ReportExporter) *ReportService {
	s.exporter = e
	return s
}

// WithPublisher attaches a report announcer.
func (s *ReportService) WithPublisher(p ReportPublisher) *ReportService {
	s.publisher = p
	return s
}

// Run produces the monthly report for the authenticated user.
func (s *ReportService) Run(ctx context.Context, creds source.Credentials, user string, opts ReportOptions) (*core.Report, error) {
	transactions, err := s.src.Transactions(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	aggOpts := core.Options{ExcludeCCPayments: opts.IgnoreCCPayments}
	if opts.IgnoreDonuts {
		aggOpts.ExcludeMerchants = s.donutMerchants
	}

	report, err := core.Aggregate(transactions, aggOpts)
	if err != nil {
		return nil, fmt.Errorf("aggregate transactions: %w", err)
	}

	slog.InfoContext(ctx, "Report computed",
		applog.FieldComponent, applog.ComponentReport,
		applog.FieldUID, creds.UID,
		applog.FieldTxnCount, len(transactions),
		applog.FieldMonthCount, len(report.Months),
		applog.FieldIgnored, len(report.Ignored))

	if s.exporter != nil {
		if err := s.exporter.Export(ctx, user, report); err != nil {
			slog.ErrorContext(ctx, "Failed to export report",
				applog.FieldOperation, applog.OpExport,
				applog.FieldUser, user,
				applog.FieldError, err)
			// Don't fail the run - the report itself is complete
		}
	}

	if s.publisher != nil {
		if err := s.publishReport(ctx, creds.UID, report, opts); err != nil {
			slog.ErrorContext(ctx, "Failed to publish report message",
				applog.FieldOperation, applog.OpPublish,
				applog.FieldUID, creds.UID,
				applog.FieldError, err)
		}
	}

	return report, nil
}

func (s *ReportService) publishReport(ctx context.Context, uid int64, r *core.Report, opts ReportOptions) error {
	msg := &amqp.ReportMessage{
		MessageID:          uuid.NewString(),
		UID:                uid,
		IgnoreDonuts:       opts.IgnoreDonuts,
		IgnoreCCPayments:   opts.IgnoreCCPayments,
		MonthCount:         len(r.Months),
		IgnoredCount:       len(r.Ignored),
		AverageSpentCents:  r.Average.Spent,
		AverageIncomeCents: r.Average.Income,
		GeneratedAt:        time.Now().UTC(),
	}
	return s.publisher.PublishReport(ctx, msg)
}
