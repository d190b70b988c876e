package inventory

import "time"

// Category: jenis teh yang dijual aurashop.
type Category string

const (
	CategoryBlack  Category = "black"
	CategoryGreen  Category = "green"
	CategoryHerbal Category = "herbal"
	CategoryOolong Category = "oolong"
	CategoryWhite  Category = "white"
)

var categories = map[Category]bool{
	CategoryBlack:  true,
	CategoryGreen:  true,
	CategoryHerbal: true,
	CategoryOolong: true,
	CategoryWhite:  true,
}

func ValidCategory(c Category) bool { return categories[c] }

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	Description string    `json:"description"`
	ImageMime   string    `json:"-"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
