package models

// Product is a catalog entry keyed by its human-readable SKU. The catalog is
// seeded once and read-only afterwards.
type Product struct {
	ID          string `gorm:"column:id;type:text;primaryKey" json:"id"`
	Title       string `gorm:"column:title;not null" json:"title"`
	Price       int    `gorm:"column:price;not null" json:"price"`
	Description string `gorm:"column:description" json:"description"`
}
