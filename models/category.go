package models

import (
	"github.com/shopspring/decimal"
)

// TruckSignCategory is the category that owns logos and customer uploads.
const TruckSignCategory = "Truck Sign"

// Category represents a product category.
// It carries the base price every product in it is sold for.
type Category struct {
	ID                        uint            `gorm:"primaryKey"`
	Title                     string          `gorm:"uniqueIndex;size:100;not null"`
	BasePrice                 decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MaxAmountOfLetteringItems int             `gorm:"not null"`
	Height                    int
	Width                     int
	Products                  []Product `gorm:"foreignKey:CategoryID"`
}

func (c *Category) TableName() string {
	return "categories"
}

// LetteringItemCategory is a priced tier of custom lettering ("Line1", "Company Name", ...).
type LetteringItemCategory struct {
	ID    uint            `gorm:"primaryKey"`
	Title string          `gorm:"uniqueIndex;size:100;not null"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (c *LetteringItemCategory) TableName() string {
	return "lettering_item_categories"
}
