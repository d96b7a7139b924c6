package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/angkor-trade/angkor-trade/internal/export"
	"github.com/angkor-trade/angkor-trade/internal/invoices"
	jobmetrics "github.com/angkor-trade/angkor-trade/internal/jobs"
)

// ExportInvoicesHandler renders bulk export jobs and parks the result in
// the artifact store for the client to fetch.
type ExportInvoicesHandler struct {
	service *invoices.Service
	docx    *export.DocxExporter
	pdf     *export.PDFExporter
	store   *export.ArtifactStore
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
}

func NewExportInvoicesHandler(
	service *invoices.Service,
	docx *export.DocxExporter,
	pdf *export.PDFExporter,
	store *export.ArtifactStore,
	metrics *jobmetrics.Metrics,
	logger *slog.Logger,
) *ExportInvoicesHandler {
	return &ExportInvoicesHandler{service: service, docx: docx, pdf: pdf, store: store, metrics: metrics, logger: logger}
}

// Handle processes TaskTypeExportInvoices tasks. Validation failures skip
// retry: a payload that failed once will fail every time.
func (h *ExportInvoicesHandler) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track(TaskTypeExportInvoices)
	var payload ExportInvoicesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}

	req := invoices.ExportRequest{
		IDs:                 payload.IDs,
		DateFrom:            payload.DateFrom,
		DateTo:              payload.DateTo,
		CustomerID:          payload.CustomerID,
		IncludeExchangeRate: payload.IncludeExchangeRate,
		Format:              payload.Format,
	}
	records, err := h.service.Resolve(ctx, req)
	if err != nil {
		h.logger.Error("export job resolve",
			slog.String("artifact_id", payload.ArtifactID), slog.Any("error", err))
		if errors.Is(err, invoices.ErrInvalid) || errors.Is(err, invoices.ErrNotFound) {
			return tracker.End(asynq.SkipRetry)
		}
		return tracker.End(err)
	}
	if len(records) == 0 {
		h.logger.Warn("export job resolved nothing", slog.String("artifact_id", payload.ArtifactID))
		return tracker.End(asynq.SkipRetry)
	}

	var file *export.File
	switch payload.Format {
	case export.FormatPDF:
		file, err = h.pdf.Export(ctx, records, req.Options())
	default:
		file, err = h.docx.ExportMany(records, req.Options())
	}
	if err != nil {
		h.logger.Error("export job render",
			slog.String("artifact_id", payload.ArtifactID), slog.Any("error", err))
		return tracker.End(err)
	}

	if err := h.store.Put(ctx, payload.ArtifactID, file); err != nil {
		return tracker.End(err)
	}
	h.logger.Info("export job done",
		slog.String("artifact_id", payload.ArtifactID),
		slog.Int("invoices", len(records)),
		slog.String("file", file.Name))
	return tracker.End(nil)
}
