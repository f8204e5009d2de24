package domain

import "time"

// Location is a postal address attached to products and orders.
type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// Product is a supplier-owned catalogue item.
type Product struct {
	ID                string
	SupplierID        string
	Name              string
	Category          string
	PricePerUnit      float64
	Unit              string
	AvailableQuantity float64
	ImageURL          *string
	Location          *Location
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
