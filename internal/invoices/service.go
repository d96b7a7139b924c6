package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("invoice validation failed")

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	rate, err := parseRate(req.ExchangeRate)
	if err != nil {
		return nil, err
	}
	lines, err := toLines(req.Lines)
	if err != nil {
		return nil, err
	}
	inv := Invoice{
		InvoiceNumber: req.InvoiceNumber,
		Date:          req.Date,
		ExchangeRate:  rate,
		CustomerID:    req.CustomerID,
		Lines:         lines,
	}
	id, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateInvoiceRequest) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	// Read-modify-write under one transaction so concurrent patches of the
	// same invoice cannot interleave.
	var updated *Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		existing, err := repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("get invoice: %w", err)
		}

		if req.InvoiceNumber != nil {
			existing.InvoiceNumber = *req.InvoiceNumber
		}
		if req.Date != nil {
			existing.Date = *req.Date
		}
		if req.ExchangeRate != nil {
			rate, err := parseRate(req.ExchangeRate)
			if err != nil {
				return err
			}
			existing.ExchangeRate = rate
		}
		if req.CustomerID != nil {
			existing.CustomerID = *req.CustomerID
		}
		if req.Lines != nil {
			lines, err := toLines(req.Lines)
			if err != nil {
				return err
			}
			existing.Lines = lines
		}

		if err := repo.Update(ctx, id, *existing); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		updated, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Resolve turns an export request into its working set. Explicit ids take
// precedence and must all exist; otherwise the filters select the set,
// unconstrained by list pagination.
func (s *Service) Resolve(ctx context.Context, req ExportRequest) ([]Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	if len(req.IDs) > 0 {
		records, err := s.repo.GetMany(ctx, req.IDs)
		if err != nil {
			return nil, fmt.Errorf("resolve export: %w", err)
		}
		if len(records) != len(req.IDs) {
			return nil, fmt.Errorf("resolve export: %w", ErrNotFound)
		}
		return records, nil
	}
	records, err := s.repo.ListAll(ctx, req.DateFrom, req.DateTo, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolve export: %w", err)
	}
	return records, nil
}

// parseRate normalizes the wire exchange rate. Absent, empty and zero all
// mean "no conversion" and collapse to nil, matching how the projector
// suppresses riel figures.
func parseRate(raw *string) (*decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange rate %q is not a decimal", ErrInvalid, *raw)
	}
	if d.IsZero() {
		return nil, nil
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", ErrInvalid)
	}
	return &d, nil
}

func toLines(reqs []LineItemRequest) ([]LineItem, error) {
	lines := make([]LineItem, 0, len(reqs))
	for i, l := range reqs {
		item := LineItem{
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			VariantName:      l.VariantName,
			VariantUnit:      l.VariantUnit,
			VariantListPrice: l.VariantListPrice,
			VariantPrice:     l.VariantPrice,
			Quantity:         l.Quantity,
		}
		if _, err := item.UnitPrice(); err != nil {
			return nil, fmt.Errorf("%w: line %d price is not a decimal", ErrInvalid, i+1)
		}
		lines = append(lines, item)
	}
	return lines, nil
}
