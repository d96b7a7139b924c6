package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byID   map[int64]Product
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[int64]Product{}, nextID: 1}
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListProductsRequest) ([]Product, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Create(_ context.Context, p Product) (int64, error) {
	p.ID = f.nextID
	f.byID[p.ID] = p
	f.nextID++
	return p.ID, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, p Product) error {
	if _, ok := f.byID[id]; !ok {
		return ErrNotFound
	}
	p.ID = id
	f.byID[id] = p
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func TestServiceCreate(t *testing.T) {
	svc := NewService(newFakeRepo())

	t.Run("stores variants with exact prices", func(t *testing.T) {
		p, err := svc.Create(context.Background(), CreateProductRequest{
			Name: "Rice",
			Variants: []VariantRequest{
				{Name: "50kg", Unit: "bag", Price: "18.50"},
				{Name: "25kg", Unit: "bag", Price: "9.75"},
			},
		})
		require.NoError(t, err)
		require.Len(t, p.Variants, 2)
		assert.Equal(t, "18.50", p.Variants[0].Price)
	})

	t.Run("rejects a non-decimal price", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateProductRequest{
			Name: "Rice",
			Variants: []VariantRequest{
				{Name: "50kg", Unit: "bag", Price: "18,50"},
			},
		})
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, err.Error(), "variant 1")
	})

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateProductRequest{
			Variants: []VariantRequest{{Name: "50kg", Unit: "bag", Price: "1"}},
		})
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestServiceUpdateVariants(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), CreateProductRequest{
		Name:     "Rice",
		Variants: []VariantRequest{{Name: "50kg", Unit: "bag", Price: "18.50"}},
	})
	require.NoError(t, err)

	t.Run("replaces the variant list wholesale", func(t *testing.T) {
		p, err := svc.Update(context.Background(), created.ID, UpdateProductRequest{
			Variants: []VariantRequest{{Name: "10kg", Unit: "sack", Price: "4.25"}},
		})
		require.NoError(t, err)
		require.Len(t, p.Variants, 1)
		assert.Equal(t, "10kg", p.Variants[0].Name)
	})

	t.Run("bad price leaves the product untouched", func(t *testing.T) {
		_, err := svc.Update(context.Background(), created.ID, UpdateProductRequest{
			Variants: []VariantRequest{{Name: "x", Unit: "y", Price: "oops"}},
		})
		require.ErrorIs(t, err, ErrInvalid)

		p, err := svc.Get(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "10kg", p.Variants[0].Name)
	})
}
