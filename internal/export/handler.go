package export

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angkor-trade/angkor-trade/internal/invoices"
	"github.com/angkor-trade/angkor-trade/internal/observability"
	"github.com/angkor-trade/angkor-trade/internal/platform/httpx"
)

// Enqueuer hands a bulk export off to the background worker.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, req invoices.ExportRequest, artifactID string) error
}

// Handler serves document downloads. Small working sets render inline;
// sets above SyncLimit go through the job queue and are fetched later by
// artifact id.
type Handler struct {
	logger    *slog.Logger
	service   *invoices.Service
	docx      *DocxExporter
	pdf       *PDFExporter
	store     *ArtifactStore
	enqueuer  Enqueuer
	metrics   *observability.Metrics
	syncLimit int
}

func NewHandler(
	logger *slog.Logger,
	service *invoices.Service,
	docx *DocxExporter,
	pdf *PDFExporter,
	store *ArtifactStore,
	enqueuer Enqueuer,
	metrics *observability.Metrics,
	syncLimit int,
) *Handler {
	if syncLimit <= 0 {
		syncLimit = 10
	}
	return &Handler{
		logger:    logger,
		service:   service,
		docx:      docx,
		pdf:       pdf,
		store:     store,
		enqueuer:  enqueuer,
		metrics:   metrics,
		syncLimit: syncLimit,
	}
}

// MountRoutes attaches the export routes onto the invoices subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/export/{format}", h.ExportOne)
	r.Post("/export", h.ExportBulk)
	r.Get("/export/artifacts/{artifactID}", h.Artifact)
}

// ExportOne downloads a single invoice as docx or pdf. The exchange_rate
// query flag (default true) controls riel figures in the document.
func (h *Handler) ExportOne(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	format := chi.URLParam(r, "format")
	if format != FormatDocx && format != FormatPDF {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "format must be docx or pdf")
		return
	}
	opts := invoices.ProjectOptions{IncludeExchangeRate: r.URL.Query().Get("exchange_rate") != "false"}

	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "export invoice", err)
		return
	}

	var file *File
	if format == FormatPDF {
		file, err = h.pdf.Export(r.Context(), []invoices.Invoice{*inv}, opts)
	} else {
		file, err = h.docx.Export(*inv, opts)
	}
	if err != nil {
		h.respondErr(w, "export invoice", err)
		return
	}
	h.metrics.ObserveExport(format, "sync")
	h.serveFile(w, file)
}

// ExportBulk resolves the working set from explicit ids or filters, then
// either renders inline or queues a job, depending on the set size.
func (h *Handler) ExportBulk(w http.ResponseWriter, r *http.Request) {
	var req invoices.ExportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if req.Format == "" {
		req.Format = FormatDocx
	}

	records, err := h.service.Resolve(r.Context(), req)
	if err != nil {
		h.respondErr(w, "resolve export", err)
		return
	}
	if len(records) == 0 {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Nothing To Export", "no invoices match the request")
		return
	}

	if len(records) > h.syncLimit {
		artifactID := NewArtifactID()
		if err := h.enqueuer.EnqueueExport(r.Context(), req, artifactID); err != nil {
			h.logger.Error("enqueue export", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		h.metrics.ObserveExport(req.Format, "job")
		httpx.JSON(w, http.StatusAccepted, map[string]any{
			"artifact_id": artifactID,
			"invoices":    len(records),
			"status":      "queued",
		})
		return
	}

	var file *File
	if req.Format == FormatPDF {
		file, err = h.pdf.Export(r.Context(), records, req.Options())
	} else {
		file, err = h.docx.ExportMany(records, req.Options())
	}
	if err != nil {
		h.respondErr(w, "render export", err)
		return
	}
	h.metrics.ObserveExport(req.Format, "sync")
	h.serveFile(w, file)
}

// Artifact fetches a finished background export. A missing artifact may
// still be rendering or may have expired; both read as 404.
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	file, err := h.store.Get(r.Context(), chi.URLParam(r, "artifactID"))
	if err != nil {
		if errors.Is(err, ErrArtifactNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "artifact not ready or expired")
			return
		}
		h.logger.Error("fetch artifact", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.serveFile(w, file)
}

func (h *Handler) serveFile(w http.ResponseWriter, f *File) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": f.Name})
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, invoices.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	case errors.Is(err, invoices.ErrInvalid):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
