package domain

import "time"

const (
	OrderStatusProcessing = "Processing"
	PaymentCashOnDelivery = "Cash on Delivery"
)

type OrderItem struct {
	ProductID      string `json:"id"`
	Name           string `json:"name"`
	Size           string `json:"size"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"price"`
}

// Shipping holds the checkout form contents.
type Shipping struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type Order struct {
	ID            string      `json:"id"`
	CustomerID    string      `json:"customerId"`
	CustomerEmail string      `json:"customerEmail"`
	Items         []OrderItem `json:"items"`
	TotalCents    int64       `json:"total"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"paymentMethod"`
	Shipping      Shipping    `json:"shipping"`
	CreatedAt     time.Time   `json:"date"`
}
