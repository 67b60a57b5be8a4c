package domain

import "time"

// OrderStatus is the customer-facing order state. Wire values are French and
// must match the storefront exactly.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "En attente"
	OrderStatusConfirmed OrderStatus = "Confirmée"
	OrderStatusRejected  OrderStatus = "Rejetée"
)

// IsTerminal reports whether no further transition is defined from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusRejected
}

func (s OrderStatus) Valid() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed || s == OrderStatusRejected
}

func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem is one line of an order: a snapshot copied from the cart at
// submission time, never a live catalog reference. ProductID is kept for
// traceability only; the item stays displayable if the product is deleted.
type OrderItem struct {
	ProductID int64   `json:"productId,string,omitempty"`
	Name      string  `json:"name"`
	Variant   Variant `json:"variant"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Brand     string  `json:"brand,omitempty"`
}

// Subtotal returns unit price times quantity for this line.
func (i OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Order is one customer order persisted as a single atomic row; the item
// snapshot lives in a JSON column so no partially written order is ever
// observable.
type Order struct {
	ID            int64       `gorm:"primaryKey" json:"id,string"`
	Items         []OrderItem `gorm:"serializer:json" json:"items"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `gorm:"index" json:"customerEmail"`
	CustomerPhone string      `json:"customerPhone"`
	Total         float64     `json:"total"`
	Status        OrderStatus `gorm:"index;size:32" json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "store_order"
}

// ItemsTotal sums unit price times quantity over the item snapshot.
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Subtotal()
	}
	return sum
}
