package customers

type CreateCustomerRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Address   string `json:"address" validate:"required,max=500"`
	Phone     string `json:"phone" validate:"required,max=50"`
	SaleName  string `json:"sale_name" validate:"required,max=200"`
	TaxiPhone string `json:"taxi_phone" validate:"required,max=50"`
}

type UpdateCustomerRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Address   *string `json:"address,omitempty" validate:"omitempty,min=1,max=500"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,min=1,max=50"`
	SaleName  *string `json:"sale_name,omitempty" validate:"omitempty,min=1,max=200"`
	TaxiPhone *string `json:"taxi_phone,omitempty" validate:"omitempty,min=1,max=50"`
}

type ListCustomersRequest struct {
	Search  *string `json:"search,omitempty"`
	Limit   int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset  int     `json:"offset" validate:"gte=0"`
}
