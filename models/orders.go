package models

import (
	"fmt"
	"time"
)

// BuyerDetails are the contact and shipping fields a buyer submits with an order.
type BuyerDetails struct {
	UserFirstName   string `gorm:"size:100"`
	UserLastName    string `gorm:"size:100"`
	UserEmail       string `gorm:"size:254;not null;index"`
	UserPhoneNumber string `gorm:"size:30"`
	UserAddress     string `gorm:"size:255"`
	UserCity        string `gorm:"size:100"`
	UserState       string `gorm:"size:100"`
	UserZipcode     string `gorm:"size:20"`
}

// Order is created unpaid and flips to Ordered exactly once, in the same
// transaction that attaches its Payment.
type Order struct {
	ID uint `gorm:"primaryKey"`
	BuyerDetails
	ProductID   uint             `gorm:"not null;index"`
	Product     ProductVariation `gorm:"foreignKey:ProductID"`
	PaymentID   *uint            `gorm:"uniqueIndex"`
	Payment     *Payment         `gorm:"foreignKey:PaymentID"`
	Ordered     bool             `gorm:"not null;index"`
	OrderedDate time.Time        `gorm:"not null"`

	// ChargeToken is held while a gateway call is in flight for this order.
	ChargeToken     *string `gorm:"size:36"`
	ChargeClaimedAt *time.Time
	// ChargeAttempt numbers the gateway idempotency key. It only advances when
	// an attempt is known to have captured nothing.
	ChargeAttempt uint `gorm:"not null;default:0"`
}

// ChargeKey is the gateway idempotency key of the current charge attempt.
func (o *Order) ChargeKey() string {
	return fmt.Sprintf("order-%d-attempt-%d", o.ID, o.ChargeAttempt)
}

func (o *Order) TableName() string {
	return "orders"
}

// Payment is the local receipt of a successful gateway charge.
type Payment struct {
	ID             uint      `gorm:"primaryKey"`
	OrderID        uint      `gorm:"uniqueIndex;not null"`
	UserEmail      string    `gorm:"size:254;not null"`
	StripeChargeID string    `gorm:"uniqueIndex;size:100;not null"`
	Amount         int64     `gorm:"not null"` // minor units
	Currency       string    `gorm:"size:3;not null"`
	Timestamp      time.Time `gorm:"autoCreateTime"`
}

func (p *Payment) TableName() string {
	return "payments"
}

type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	UserEmail string `gorm:"size:254;not null"`
	Text      string `gorm:"type:text;not null"`
	Visible   bool   `gorm:"not null;index"`
	CreatedAt time.Time
}

func (c *Comment) TableName() string {
	return "comments"
}

// All lists every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Category{},
		&LetteringItemCategory{},
		&Product{},
		&ProductColor{},
		&ProductVariation{},
		&LetteringItemVariation{},
		&Payment{},
		&Order{},
		&Comment{},
	}
}
