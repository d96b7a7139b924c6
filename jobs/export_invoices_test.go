package jobs

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angkor-trade/angkor-trade/internal/customers"
	"github.com/angkor-trade/angkor-trade/internal/export"
	"github.com/angkor-trade/angkor-trade/internal/invoices"
)

type memRepo struct {
	byID map[int64]invoices.Invoice
	all  []invoices.Invoice
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, invoices.Repository) error) error {
	return fn(ctx, m)
}

func (m *memRepo) Get(_ context.Context, id int64) (*invoices.Invoice, error) {
	inv, ok := m.byID[id]
	if !ok {
		return nil, invoices.ErrNotFound
	}
	return &inv, nil
}

func (m *memRepo) GetMany(_ context.Context, ids []int64) ([]invoices.Invoice, error) {
	var out []invoices.Invoice
	for _, id := range ids {
		if inv, ok := m.byID[id]; ok {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memRepo) List(_ context.Context, _ invoices.ListInvoicesRequest) ([]invoices.Invoice, int, error) {
	return m.all, len(m.all), nil
}

func (m *memRepo) ListAll(_ context.Context, _, _ *time.Time, _ *int64) ([]invoices.Invoice, error) {
	return m.all, nil
}

func (m *memRepo) Create(_ context.Context, _ invoices.Invoice) (int64, error) { return 0, nil }
func (m *memRepo) Update(_ context.Context, _ int64, _ invoices.Invoice) error { return nil }
func (m *memRepo) Delete(_ context.Context, _ int64) error                     { return nil }

const jobTestDocXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>{invoice_number}</w:t></w:r></w:p></w:body>
</w:document>`

func writeJobTemplate(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(jobTestDocXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "invoice.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func newJobHandler(t *testing.T) (*ExportInvoicesHandler, *export.ArtifactStore) {
	t.Helper()
	repo := &memRepo{byID: map[int64]invoices.Invoice{}}
	for i := int64(1); i <= 2; i++ {
		inv := invoices.Invoice{
			ID:            i,
			InvoiceNumber: "INV-" + string(rune('0'+i)),
			Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Customer:      &customers.Customer{Name: "Sok Heng"},
			Lines: []invoices.LineItem{
				{ProductName: "Rice", VariantName: "50kg", VariantUnit: "bag", VariantListPrice: "18.50", Quantity: 1},
			},
		}
		repo.byID[i] = inv
		repo.all = append(repo.all, inv)
	}

	mr := miniredis.RunT(t)
	store := export.NewArtifactStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := invoices.NewService(repo)
	handler := NewExportInvoicesHandler(
		service, export.NewDocxExporter(writeJobTemplate(t)), nil, store, nil, logger,
	)
	return handler, store
}

func runTask(t *testing.T, h *ExportInvoicesHandler, payload ExportInvoicesPayload) error {
	t.Helper()
	task, err := NewExportInvoicesTask(payload)
	require.NoError(t, err)
	return h.Handle(context.Background(), task)
}

func TestExportInvoicesJob(t *testing.T) {
	t.Run("renders and stores the artifact", func(t *testing.T) {
		h, store := newJobHandler(t)
		artifactID := export.NewArtifactID()

		err := runTask(t, h, ExportInvoicesPayload{
			ArtifactID: artifactID,
			IDs:        []int64{1, 2},
			Format:     export.FormatDocx,
		})
		require.NoError(t, err)

		file, err := store.Get(context.Background(), artifactID)
		require.NoError(t, err)
		assert.Equal(t, "invoices.zip", file.Name)

		zr, err := zip.NewReader(bytes.NewReader(file.Data), int64(len(file.Data)))
		require.NoError(t, err)
		assert.Len(t, zr.File, 2)
	})

	t.Run("missing invoice skips retry", func(t *testing.T) {
		h, _ := newJobHandler(t)
		err := runTask(t, h, ExportInvoicesPayload{
			ArtifactID: export.NewArtifactID(),
			IDs:        []int64{1, 99},
			Format:     export.FormatDocx,
		})
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("garbage payload skips retry", func(t *testing.T) {
		h, _ := newJobHandler(t)
		err := h.Handle(context.Background(), asynq.NewTask(TaskTypeExportInvoices, []byte("{not json")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("empty format falls back to docx", func(t *testing.T) {
		h, store := newJobHandler(t)
		artifactID := export.NewArtifactID()

		err := runTask(t, h, ExportInvoicesPayload{ArtifactID: artifactID, IDs: []int64{1}})
		require.NoError(t, err)

		file, err := store.Get(context.Background(), artifactID)
		require.NoError(t, err)
		assert.Contains(t, file.Name, ".docx")
	})
}

func TestExportTaskPayloadRoundTrip(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	include := false
	task, err := NewExportInvoicesTask(ExportInvoicesPayload{
		ArtifactID:          "abc",
		DateFrom:            &from,
		IncludeExchangeRate: &include,
		Format:              "pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeExportInvoices, task.Type())

	var decoded ExportInvoicesPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, "abc", decoded.ArtifactID)
	require.NotNil(t, decoded.IncludeExchangeRate)
	assert.False(t, *decoded.IncludeExchangeRate)
}
