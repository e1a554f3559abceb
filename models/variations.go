package models

import "time"

// ProductVariation is a configured instance of a product: an optional color
// plus the lettering lines the buyer typed. It is written once, when the
// order is placed, and never edited afterwards.
type ProductVariation struct {
	ID             uint          `gorm:"primaryKey"`
	ProductID      uint          `gorm:"not null;index"`
	Product        Product       `gorm:"foreignKey:ProductID"`
	ProductColorID *uint         `gorm:"index"`
	ProductColor   *ProductColor `gorm:"foreignKey:ProductColorID"`
	// Amount stays nil until the variation is attached to an order.
	Amount         *int
	LetteringItems []LetteringItemVariation `gorm:"foreignKey:ProductVariationID"`
	CreatedAt      time.Time
}

func (v *ProductVariation) TableName() string {
	return "product_variations"
}

type LetteringItemVariation struct {
	ID                      uint                  `gorm:"primaryKey"`
	LetteringItemCategoryID uint                  `gorm:"not null;index"`
	LetteringItemCategory   LetteringItemCategory `gorm:"foreignKey:LetteringItemCategoryID"`
	Lettering               string                `gorm:"size:500;not null"`
	ProductVariationID      uint                  `gorm:"not null;index"`
	CreatedAt               time.Time
}

func (l *LetteringItemVariation) TableName() string {
	return "lettering_item_variations"
}
