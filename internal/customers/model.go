package customers

import "time"

// Customer is a buyer record. Every field is required: the invoice
// template prints all of them.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	SaleName  string    `json:"sale_name"`
	TaxiPhone string    `json:"taxi_phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
