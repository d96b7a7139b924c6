package catalog

type VariantRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Unit  string `json:"unit" validate:"required,max=50"`
	Price string `json:"price" validate:"required"`
}

type CreateProductRequest struct {
	Name     string           `json:"name" validate:"required,max=200"`
	Variants []VariantRequest `json:"variants" validate:"required,min=1,dive"`
}

type UpdateProductRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Variants []VariantRequest `json:"variants,omitempty" validate:"omitempty,min=1,dive"`
}

type ListProductsRequest struct {
	Search *string `json:"search,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}
