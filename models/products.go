package models

// Product represents a base product in the catalog.
type Product struct {
	ID          uint     `gorm:"primaryKey"`
	Title       string   `gorm:"size:200;not null"`
	CategoryID  uint     `gorm:"not null;index"`
	Category    Category `gorm:"foreignKey:CategoryID"`
	IsUploaded  bool     `gorm:"not null;index"`
	Image       string   `gorm:"size:500"`
	DetailImage string   `gorm:"size:500"`
}

func (p *Product) TableName() string {
	return "products"
}

type ProductColor struct {
	ID            uint   `gorm:"primaryKey"`
	ColorNickname string `gorm:"size:50;not null"`
	ColorInHex    string `gorm:"size:7;not null"`
}

func (c *ProductColor) TableName() string {
	return "product_colors"
}
