package domain

import "time"

// Product is a marketplace listing as returned by the remote API.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	DateAdded   time.Time `json:"date_added"`
	SellerID    string    `json:"seller_id"`
	ImageURLs   []string  `json:"image_urls"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	IsSold      bool      `json:"is_sold"`
}

// NewProduct carries the fields of a listing being submitted. Image payloads
// travel separately as multipart file parts.
type NewProduct struct {
	Name        string
	Price       float64
	Location    string
	Category    string
	Description string
}
