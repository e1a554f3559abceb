package api

import (
	"time"

	"github.com/trucksigns/truck-signs-api/app/pricing"
	"github.com/trucksigns/truck-signs-api/models"
)

// JSON shapes shared by the catalog, categories and orders handlers.

type Category struct {
	ID                        uint    `json:"id"`
	Title                     string  `json:"title"`
	BasePrice                 float64 `json:"base_price"`
	MaxAmountOfLetteringItems int     `json:"max_amount_of_lettering_items"`
	Height                    int     `json:"height"`
	Width                     int     `json:"width"`
}

type LetteringItemCategory struct {
	ID    uint    `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type ProductColor struct {
	ID            uint   `json:"id"`
	ColorNickname string `json:"color_nickname"`
	ColorInHex    string `json:"color_in_hex"`
}

type Product struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	IsUploaded  bool     `json:"is_uploaded"`
	Image       string   `json:"image"`
	DetailImage string   `json:"detail_image"`
}

type LetteringItemVariation struct {
	ID                    uint                  `json:"id"`
	LetteringItemCategory LetteringItemCategory `json:"lettering_item_category"`
	Lettering             string                `json:"lettering"`
}

type ProductVariation struct {
	ID             uint                     `json:"id"`
	Product        Product                  `json:"product"`
	ProductColor   *ProductColor            `json:"product_color"`
	Amount         *int                     `json:"amount"`
	LetteringItems []LetteringItemVariation `json:"lettering_items"`
	// Price is omitted when the variation cannot be priced.
	Price *float64 `json:"price,omitempty"`
}

type Payment struct {
	ID        uint    `json:"id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Timestamp string  `json:"timestamp"`
}

type Order struct {
	ID              uint             `json:"id"`
	UserFirstName   string           `json:"user_first_name"`
	UserLastName    string           `json:"user_last_name"`
	UserEmail       string           `json:"user_email"`
	UserPhoneNumber string           `json:"user_phone_number"`
	UserAddress     string           `json:"user_address"`
	UserCity        string           `json:"user_city"`
	UserState       string           `json:"user_state"`
	UserZipcode     string           `json:"user_zipcode"`
	Product         ProductVariation `json:"product"`
	Payment         *Payment         `json:"payment"`
	Ordered         bool             `json:"ordered"`
	OrderedDate     string           `json:"ordered_date"`
	TotalPrice      *float64         `json:"total_price,omitempty"`
}

type Comment struct {
	ID        uint   `json:"id"`
	UserEmail string `json:"user_email"`
	Text      string `json:"text"`
	Visible   bool   `json:"visible"`
}

func NewCategory(c models.Category) Category {
	return Category{
		ID:                        c.ID,
		Title:                     c.Title,
		BasePrice:                 c.BasePrice.InexactFloat64(),
		MaxAmountOfLetteringItems: c.MaxAmountOfLetteringItems,
		Height:                    c.Height,
		Width:                     c.Width,
	}
}

func NewLetteringItemCategory(c models.LetteringItemCategory) LetteringItemCategory {
	return LetteringItemCategory{
		ID:    c.ID,
		Title: c.Title,
		Price: c.Price.InexactFloat64(),
	}
}

func NewProductColor(c models.ProductColor) ProductColor {
	return ProductColor{
		ID:            c.ID,
		ColorNickname: c.ColorNickname,
		ColorInHex:    c.ColorInHex,
	}
}

func NewProduct(p models.Product) Product {
	return Product{
		ID:          p.ID,
		Title:       p.Title,
		Category:    NewCategory(p.Category),
		IsUploaded:  p.IsUploaded,
		Image:       p.Image,
		DetailImage: p.DetailImage,
	}
}

func NewProducts(products []models.Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = NewProduct(p)
	}
	return out
}

func NewProductVariation(v models.ProductVariation) ProductVariation {
	out := ProductVariation{
		ID:             v.ID,
		Product:        NewProduct(v.Product),
		Amount:         v.Amount,
		LetteringItems: make([]LetteringItemVariation, len(v.LetteringItems)),
	}
	if v.ProductColor != nil {
		color := NewProductColor(*v.ProductColor)
		out.ProductColor = &color
	}
	for i, item := range v.LetteringItems {
		out.LetteringItems[i] = LetteringItemVariation{
			ID:                    item.ID,
			LetteringItemCategory: NewLetteringItemCategory(item.LetteringItemCategory),
			Lettering:             item.Lettering,
		}
	}
	if total, err := pricing.VariationTotal(&v); err == nil {
		price := total.InexactFloat64()
		out.Price = &price
	}
	return out
}

func NewOrder(o models.Order) Order {
	out := Order{
		ID:              o.ID,
		UserFirstName:   o.UserFirstName,
		UserLastName:    o.UserLastName,
		UserEmail:       o.UserEmail,
		UserPhoneNumber: o.UserPhoneNumber,
		UserAddress:     o.UserAddress,
		UserCity:        o.UserCity,
		UserState:       o.UserState,
		UserZipcode:     o.UserZipcode,
		Product:         NewProductVariation(o.Product),
		Ordered:         o.Ordered,
		OrderedDate:     o.OrderedDate.Format(time.RFC3339),
	}
	out.TotalPrice = out.Product.Price
	if o.Payment != nil {
		out.Payment = &Payment{
			ID:        o.Payment.ID,
			Amount:    pricing.FromMinorUnits(o.Payment.Amount).InexactFloat64(),
			Currency:  o.Payment.Currency,
			Timestamp: o.Payment.Timestamp.Format(time.RFC3339),
		}
	}
	return out
}

func NewComment(c models.Comment) Comment {
	return Comment{
		ID:        c.ID,
		UserEmail: c.UserEmail,
		Text:      c.Text,
		Visible:   c.Visible,
	}
}
