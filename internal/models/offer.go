package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferStatus captures the lifecycle of a supplier offer. PENDING may move
// to ACCEPTED or REJECTED; both are terminal.
type OfferStatus string

const (
	OfferPending  OfferStatus = "PENDING"
	OfferAccepted OfferStatus = "ACCEPTED"
	OfferRejected OfferStatus = "REJECTED"
)

// SupplierOffer is a supplier's priced response to a bid item. Its status is
// controlled exclusively by the selection engine once submitted.
type SupplierOffer struct {
	ID           string              `db:"id" json:"id"`
	BidItemID    string              `db:"bid_item_id" json:"bid_item_id"`
	SupplierID   string              `db:"supplier_id" json:"supplier_id"`
	PricePerUnit decimal.Decimal     `db:"price_per_unit" json:"price_per_unit"`
	TotalPrice   decimal.NullDecimal `db:"total_price" json:"total_price,omitempty"`
	Notes        string              `db:"notes" json:"notes,omitempty"`
	DeliveryTime string              `db:"delivery_time" json:"delivery_time,omitempty"`
	Status       OfferStatus         `db:"status" json:"status"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`

	SupplierName string `db:"supplier_name" json:"supplier_name,omitempty"`
}

// SubmitOfferRequest is the payload for submitting an offer on a bid item.
type SubmitOfferRequest struct {
	BidItemID    string          `json:"bid_item_id" validate:"required"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" validate:"required"`
	Notes        string          `json:"notes"`
	DeliveryTime string          `json:"delivery_time"`
}

// OfferSelectionView joins an offer with the ownership and deadline context
// the manual selection path validates against.
type OfferSelectionView struct {
	OfferID      string          `db:"offer_id"`
	BidItemID    string          `db:"bid_item_id"`
	SupplierID   string          `db:"supplier_id"`
	PricePerUnit decimal.Decimal `db:"price_per_unit"`
	Status       OfferStatus     `db:"status"`
	Quantity     decimal.Decimal `db:"quantity"`
	ItemName     string          `db:"item_name"`
	SchoolID     string          `db:"school_id"`
	Deadline     time.Time       `db:"deadline"`
}

// SchoolPayment is an accepted offer row in the school payments view.
type SchoolPayment struct {
	OfferID      string          `db:"offer_id" json:"offer_id"`
	BidRequestID string          `db:"bid_request_id" json:"bid_request_id"`
	BidTitle     string          `db:"bid_title" json:"bid_title"`
	ItemName     string          `db:"item_name" json:"item_name"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Unit         string          `db:"unit" json:"unit"`
	PricePerUnit decimal.Decimal `db:"price_per_unit" json:"price_per_unit"`
	TotalPrice   decimal.Decimal `db:"total_price" json:"total_price"`
	SupplierName string          `db:"supplier_name" json:"supplier_name"`
	AwardedAt    time.Time       `db:"awarded_at" json:"awarded_at"`
}

// SupplierOfferView is an offer with bid context for the my-offers listing.
type SupplierOfferView struct {
	SupplierOffer
	ItemName string    `db:"item_name" json:"item_name"`
	BidTitle string    `db:"bid_title" json:"bid_title"`
	Deadline time.Time `db:"deadline" json:"deadline"`
}
