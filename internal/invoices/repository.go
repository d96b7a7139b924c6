package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/angkor-trade/angkor-trade/internal/customers"
	"github.com/angkor-trade/angkor-trade/internal/platform/db"
)

var ErrNotFound = errors.New("invoice not found")

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Invoice, error)
	GetMany(ctx context.Context, ids []int64) ([]Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	ListAll(ctx context.Context, dateFrom, dateTo *time.Time, customerID *int64) ([]Invoice, error)
	Create(ctx context.Context, inv Invoice) (int64, error)
	Update(ctx context.Context, id int64, inv Invoice) error
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

// invoiceColumns joins the embedded customer; the exchange rate comes back
// as text so it round-trips through decimal without a float in between.
const invoiceColumns = `
	i.id, i.invoice_number, i.date, i.exchange_rate::text, i.lines,
	i.created_at, i.updated_at,
	c.id, c.name, c.address, c.phone, c.sale_name, c.taxi_phone,
	c.created_at, c.updated_at`

const invoiceFrom = " FROM invoices i JOIN customers c ON c.id = i.customer_id "

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*Invoice, error) {
	var (
		inv   Invoice
		cust  customers.Customer
		rate  *string
		lines []byte
	)
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.Date, &rate, &lines,
		&inv.CreatedAt, &inv.UpdatedAt,
		&cust.ID, &cust.Name, &cust.Address, &cust.Phone, &cust.SaleName, &cust.TaxiPhone,
		&cust.CreatedAt, &cust.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rate != nil {
		d, err := decimal.NewFromString(*rate)
		if err != nil {
			return nil, fmt.Errorf("invoices: exchange rate %q: %w", *rate, err)
		}
		inv.ExchangeRate = &d
	}
	if err := json.Unmarshal(lines, &inv.Lines); err != nil {
		return nil, fmt.Errorf("invoices: unmarshal lines: %w", err)
	}
	inv.CustomerID = cust.ID
	inv.Customer = &cust
	return &inv, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	row := r.db.QueryRow(ctx, "SELECT "+invoiceColumns+invoiceFrom+"WHERE i.id = $1", id)
	return scanInvoice(row)
}

func (r *repository) GetMany(ctx context.Context, ids []int64) ([]Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		"SELECT "+invoiceColumns+invoiceFrom+"WHERE i.id = ANY($1) ORDER BY i.invoice_number DESC", ids)
	if err != nil {
		return nil, fmt.Errorf("invoices: get many: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// sortColumns whitelists client-supplied sort specs.
var sortColumns = map[string]string{
	"invoice_number": "i.invoice_number",
	"date":           "i.date",
	"id":             "i.id",
}

func orderBy(sort string) string {
	col, dir := sort, "ASC"
	if strings.HasPrefix(sort, "-") {
		col, dir = sort[1:], "DESC"
	}
	if mapped, ok := sortColumns[col]; ok {
		return mapped + " " + dir
	}
	return "i.invoice_number DESC"
}

func filterClauses(dateFrom, dateTo *time.Time, customerID *int64) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if dateFrom != nil {
		args = append(args, *dateFrom)
		conditions = append(conditions, fmt.Sprintf("i.date >= $%d", len(args)))
	}
	if dateTo != nil {
		args = append(args, *dateTo)
		conditions = append(conditions, fmt.Sprintf("i.date <= $%d", len(args)))
	}
	if customerID != nil {
		args = append(args, *customerID)
		conditions = append(conditions, fmt.Sprintf("i.customer_id = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	where, args := filterClauses(req.DateFrom, req.DateTo, req.CustomerID)

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*)"+invoiceFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("invoices: count: %w", err)
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(
		"SELECT %s%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		invoiceColumns, invoiceFrom, where, orderBy(req.Sort), len(args)+1, len(args)+2,
	)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("invoices: list: %w", err)
	}
	defer rows.Close()

	out, err := collectInvoices(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListAll returns every record matching the filters, ignoring pagination.
// Used to resolve bulk-export working sets.
func (r *repository) ListAll(ctx context.Context, dateFrom, dateTo *time.Time, customerID *int64) ([]Invoice, error) {
	where, args := filterClauses(dateFrom, dateTo, customerID)
	rows, err := r.db.Query(ctx,
		"SELECT "+invoiceColumns+invoiceFrom+where+" ORDER BY i.invoice_number DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("invoices: list all: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func collectInvoices(rows pgx.Rows) ([]Invoice, error) {
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	lines, err := json.Marshal(inv.Lines)
	if err != nil {
		return 0, fmt.Errorf("invoices: marshal lines: %w", err)
	}
	var rate *string
	if inv.ExchangeRate != nil {
		s := inv.ExchangeRate.String()
		rate = &s
	}
	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, date, exchange_rate, customer_id, lines, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5::jsonb, NOW(), NOW())
		RETURNING id
	`, inv.InvoiceNumber, inv.Date, rate, inv.CustomerID, string(lines)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("invoices: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, inv Invoice) error {
	lines, err := json.Marshal(inv.Lines)
	if err != nil {
		return fmt.Errorf("invoices: marshal lines: %w", err)
	}
	var rate *string
	if inv.ExchangeRate != nil {
		s := inv.ExchangeRate.String()
		rate = &s
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET invoice_number = $1, date = $2, exchange_rate = $3::numeric, customer_id = $4,
		    lines = $5::jsonb, updated_at = NOW()
		WHERE id = $6
	`, inv.InvoiceNumber, inv.Date, rate, inv.CustomerID, string(lines), id)
	if err != nil {
		return fmt.Errorf("invoices: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("invoices: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
