package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("product validation failed")

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	variants, err := toVariants(req.Variants)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, Product{Name: req.Name, Variants: variants})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Variants != nil {
		variants, err := toVariants(req.Variants)
		if err != nil {
			return nil, err
		}
		existing.Variants = variants
	}
	if err := s.repo.Update(ctx, id, *existing); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// toVariants checks every price parses as an exact decimal before anything
// is stored; a bad price caught here can never reach the projector.
func toVariants(reqs []VariantRequest) ([]Variant, error) {
	variants := make([]Variant, 0, len(reqs))
	for i, v := range reqs {
		if _, err := decimal.NewFromString(v.Price); err != nil {
			return nil, fmt.Errorf("%w: variant %d price %q is not a decimal", ErrInvalid, i+1, v.Price)
		}
		variants = append(variants, Variant{Name: v.Name, Unit: v.Unit, Price: v.Price})
	}
	return variants, nil
}
