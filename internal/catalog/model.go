package catalog

import "time"

// Product groups the purchasable variants of one item.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Variants  []Variant `json:"variants"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Variant is a purchasable unit of a product: a package size with its own
// unit label and price. Price is an exact decimal string.
type Variant struct {
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Price string `json:"price"`
}
