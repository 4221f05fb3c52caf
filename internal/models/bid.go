package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidRequest is a school's procurement solicitation. The deadline is
// immutable after creation.
type BidRequest struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"school_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Deadline    time.Time `db:"deadline" json:"deadline"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Items []BidItem `db:"-" json:"items,omitempty"`
}

// BidItem is a single line item within a bid request, the unit of award.
// It is created atomically with its parent and never deleted.
type BidItem struct {
	ID           string          `db:"id" json:"id"`
	BidRequestID string          `db:"bid_request_id" json:"bid_request_id"`
	Name         string          `db:"name" json:"name"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Unit         string          `db:"unit" json:"unit"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`

	Offers []SupplierOffer `db:"-" json:"offers,omitempty"`
}

// CreateBidRequest is the payload for posting a new bid request.
type CreateBidRequest struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description"`
	Deadline    time.Time           `json:"deadline" validate:"required"`
	Items       []CreateBidItemSpec `json:"items" validate:"required,min=1,dive"`
}

// CreateBidItemSpec describes one line item in a create payload.
type CreateBidItemSpec struct {
	Name     string          `json:"name" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	Unit     string          `json:"unit" validate:"required"`
}

// AwardCandidate is a bid item whose deadline has passed with no accepted
// offer, as returned by the discovery query of the auto-selection sweep.
type AwardCandidate struct {
	ItemID       string          `db:"item_id" json:"item_id"`
	ItemName     string          `db:"item_name" json:"item_name"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Unit         string          `db:"unit" json:"unit"`
	BidRequestID string          `db:"bid_request_id" json:"bid_request_id"`
	BidTitle     string          `db:"bid_title" json:"bid_title"`
	Deadline     time.Time       `db:"deadline" json:"deadline"`
}
