package domain

import "time"

// CartLine is one product+size entry in a session cart. Display fields are
// snapshotted from the catalog when the line is first added.
type CartLine struct {
	ProductID      string    `json:"productId"`
	Size           string    `json:"size"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPrice"`
	Name           string    `json:"name"`
	Image          string    `json:"image,omitempty"`
	Category       string    `json:"category,omitempty"`
	AddedAt        time.Time `json:"addedAt"`
}

// LineTotal is the extended price of the line.
func (l CartLine) LineTotal() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}
