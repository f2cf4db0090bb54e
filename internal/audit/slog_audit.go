// Package audit provides the default audit side channel: structured log
// records carrying the batch snapshot, emitted on seal and resolution.
package audit

import (
	"context"
	"log/slog"

	"github.com/corebank/posting-engine/internal/core/domain"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/middleware"
)

// SlogAuditLogger writes audit records through the request-scoped logger.
type SlogAuditLogger struct{}

func NewSlogAuditLogger() portssvc.AuditLogger {
	return &SlogAuditLogger{}
}

var _ portssvc.AuditLogger = (*SlogAuditLogger)(nil)

func (a *SlogAuditLogger) RecordBatchSealed(ctx context.Context, posted domain.PostedEntry) {
	middleware.GetLoggerFromCtx(ctx).Info("audit: batch sealed",
		slog.String("reference", posted.Reference),
		slog.String("total_debit", posted.TotalDebit.String()),
		slog.String("branch_id", posted.BranchID),
		slog.String("created_by", posted.CreatedBy),
		slog.String("entry_detail", string(posted.EntryDetail)),
	)
}

func (a *SlogAuditLogger) RecordBatchResolved(ctx context.Context, posted domain.PostedEntry) {
	approvedBy := ""
	if posted.ApprovedBy != nil {
		approvedBy = *posted.ApprovedBy
	}
	middleware.GetLoggerFromCtx(ctx).Info("audit: batch resolved",
		slog.String("reference", posted.Reference),
		slog.String("status", string(posted.Status)),
		slog.String("approved_by", approvedBy),
		slog.String("entry_detail", string(posted.EntryDetail)),
	)
}
