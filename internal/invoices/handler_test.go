package invoices

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(repo *fakeRepo, now time.Time) (*Handler, chi.Router) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo))
	h.now = func() time.Time { return now }
	r := chi.NewRouter()
	r.Route("/invoices", h.MountRoutes)
	return h, r
}

func TestHandlerListDateFilters(t *testing.T) {
	// Wed 2024-01-17.
	now := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

	t.Run("preset resolves server-side", func(t *testing.T) {
		repo := newFakeRepo()
		_, router := newTestHandler(repo, now)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/invoices/?preset=this_month", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		require.NotNil(t, repo.lastList.DateFrom)
		require.NotNil(t, repo.lastList.DateTo)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *repo.lastList.DateFrom)
		assert.Equal(t, time.January, repo.lastList.DateTo.Month())
		assert.Equal(t, 31, repo.lastList.DateTo.Day())
	})

	t.Run("last_week spans the previous Sunday to Saturday", func(t *testing.T) {
		repo := newFakeRepo()
		_, router := newTestHandler(repo, now)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/invoices/?preset=last_week", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), *repo.lastList.DateFrom)
		assert.Equal(t, 13, repo.lastList.DateTo.Day())
	})

	t.Run("explicit window overrides the preset", func(t *testing.T) {
		repo := newFakeRepo()
		_, router := newTestHandler(repo, now)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet,
			"/invoices/?preset=this_month&date_from=2023-06-01&date_to=2023-06-30", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), *repo.lastList.DateFrom)
		// date_to is widened to the end of its day so the bound stays inclusive.
		assert.Equal(t, 30, repo.lastList.DateTo.Day())
		assert.Equal(t, 23, repo.lastList.DateTo.Hour())
	})

	t.Run("unknown preset rejected", func(t *testing.T) {
		repo := newFakeRepo()
		_, router := newTestHandler(repo, now)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/invoices/?preset=fortnight", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("customer and paging params pass through", func(t *testing.T) {
		repo := newFakeRepo()
		_, router := newTestHandler(repo, now)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet,
			"/invoices/?customer_id=7&page=2&per_page=25&sort=date", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		require.NotNil(t, repo.lastList.CustomerID)
		assert.Equal(t, int64(7), *repo.lastList.CustomerID)
		assert.Equal(t, 2, repo.lastList.Page)
		assert.Equal(t, 25, repo.lastList.PerPage)
		assert.Equal(t, "date", repo.lastList.Sort)
	})
}
