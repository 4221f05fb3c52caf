package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-procurement-api/internal/models"
)

// ErrAwardConflict is returned when an award transaction loses a race: some
// other caller accepted an offer on the same bid item first, or the targeted
// offer already left the PENDING state.
var ErrAwardConflict = errors.New("bid item already has an accepted offer")

// OfferRepository handles supplier offer persistence.
type OfferRepository struct {
	db *sqlx.DB
}

// NewOfferRepository creates a new offer repository.
func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// Create inserts a new pending offer.
func (r *OfferRepository) Create(ctx context.Context, offer *models.SupplierOffer) error {
	if offer.ID == "" {
		offer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	offer.Status = models.OfferPending
	const query = `INSERT INTO supplier_offers
            (id, bid_item_id, supplier_id, price_per_unit, total_price, notes, delivery_time, status, created_at, updated_at)
        VALUES (:id, :bid_item_id, :supplier_id, :price_per_unit, :total_price, :notes, :delivery_time, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offer); err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

// ExistsForSupplier reports whether the supplier already has an offer on the item.
func (r *OfferRepository) ExistsForSupplier(ctx context.Context, itemID, supplierID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM supplier_offers WHERE bid_item_id = $1 AND supplier_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, itemID, supplierID); err != nil {
		return false, fmt.Errorf("check offer exists: %w", err)
	}
	return exists, nil
}

// ListByItem returns all offers on a bid item ordered by submission time ascending.
func (r *OfferRepository) ListByItem(ctx context.Context, itemID string) ([]models.SupplierOffer, error) {
	const query = `SELECT so.id, so.bid_item_id, so.supplier_id, so.price_per_unit, so.total_price,
            so.notes, so.delivery_time, so.status, so.created_at, so.updated_at,
            u.full_name AS supplier_name
        FROM supplier_offers so
        JOIN users u ON u.id = so.supplier_id
        WHERE so.bid_item_id = $1
        ORDER BY so.created_at ASC, so.id ASC`
	var offers []models.SupplierOffer
	if err := r.db.SelectContext(ctx, &offers, query, itemID); err != nil {
		return nil, fmt.Errorf("list offers for item: %w", err)
	}
	return offers, nil
}

// ListByItems returns offers for many bid items keyed by item ID, submission
// order preserved within each item.
func (r *OfferRepository) ListByItems(ctx context.Context, itemIDs []string) (map[string][]models.SupplierOffer, error) {
	if len(itemIDs) == 0 {
		return map[string][]models.SupplierOffer{}, nil
	}
	query, args, err := sqlx.In(`SELECT so.id, so.bid_item_id, so.supplier_id, so.price_per_unit, so.total_price,
            so.notes, so.delivery_time, so.status, so.created_at, so.updated_at,
            u.full_name AS supplier_name
        FROM supplier_offers so
        JOIN users u ON u.id = so.supplier_id
        WHERE so.bid_item_id IN (?)
        ORDER BY so.created_at ASC, so.id ASC`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("build offers query: %w", err)
	}
	query = r.db.Rebind(query)

	var offers []models.SupplierOffer
	if err := r.db.SelectContext(ctx, &offers, query, args...); err != nil {
		return nil, fmt.Errorf("fetch offers for items: %w", err)
	}
	result := make(map[string][]models.SupplierOffer, len(itemIDs))
	for _, offer := range offers {
		result[offer.BidItemID] = append(result[offer.BidItemID], offer)
	}
	return result, nil
}

// ListBySupplier returns the supplier's offers with bid context, newest first.
func (r *OfferRepository) ListBySupplier(ctx context.Context, supplierID string) ([]models.SupplierOfferView, error) {
	const query = `SELECT so.id, so.bid_item_id, so.supplier_id, so.price_per_unit, so.total_price,
            so.notes, so.delivery_time, so.status, so.created_at, so.updated_at,
            bi.name AS item_name, br.title AS bid_title, br.deadline
        FROM supplier_offers so
        JOIN bid_items bi ON bi.id = so.bid_item_id
        JOIN bid_requests br ON br.id = bi.bid_request_id
        WHERE so.supplier_id = $1
        ORDER BY so.created_at DESC`
	var offers []models.SupplierOfferView
	if err := r.db.SelectContext(ctx, &offers, query, supplierID); err != nil {
		return nil, fmt.Errorf("list offers for supplier: %w", err)
	}
	return offers, nil
}

// FindForSelection loads an offer joined with the item quantity, the parent
// deadline and the owning school, everything the manual selection path
// validates against.
func (r *OfferRepository) FindForSelection(ctx context.Context, offerID string) (*models.OfferSelectionView, error) {
	const query = `SELECT so.id AS offer_id, so.bid_item_id, so.supplier_id, so.price_per_unit, so.status,
            bi.quantity, bi.name AS item_name, br.school_id, br.deadline
        FROM supplier_offers so
        JOIN bid_items bi ON bi.id = so.bid_item_id
        JOIN bid_requests br ON br.id = bi.bid_request_id
        WHERE so.id = $1`
	var view models.OfferSelectionView
	if err := r.db.GetContext(ctx, &view, query, offerID); err != nil {
		return nil, err
	}
	return &view, nil
}

// AwardParams describes a single award: one offer accepted, all siblings rejected.
type AwardParams struct {
	BidItemID       string
	OfferID         string
	TotalPrice      decimal.Decimal
	DefaultDelivery string
}

// Award applies an award as one atomic unit. Inside the transaction it
// re-checks that no offer on the item is already accepted, rejects every
// pending sibling and flips the chosen offer PENDING -> ACCEPTED, persisting
// the computed total price and a delivery-time default when the field is
// unset. Returns ErrAwardConflict when a concurrent award got there first.
func (r *OfferRepository) Award(ctx context.Context, params AwardParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin award: %w", err)
	}

	var acceptedID string
	err = tx.GetContext(ctx, &acceptedID,
		`SELECT id FROM supplier_offers WHERE bid_item_id = $1 AND status = 'ACCEPTED' FOR UPDATE`,
		params.BidItemID)
	if err == nil {
		tx.Rollback() //nolint:errcheck
		return ErrAwardConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("recheck accepted offer: %w", err)
	}

	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE supplier_offers SET status = 'REJECTED', updated_at = $3
         WHERE bid_item_id = $1 AND id <> $2 AND status = 'PENDING'`,
		params.BidItemID, params.OfferID, now); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("reject sibling offers: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE supplier_offers
         SET status = 'ACCEPTED', total_price = $2,
             delivery_time = CASE WHEN delivery_time = '' THEN $3 ELSE delivery_time END,
             updated_at = $4
         WHERE id = $1 AND status = 'PENDING'`,
		params.OfferID, params.TotalPrice, params.DefaultDelivery, now)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("accept offer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("accept offer rows: %w", err)
	}
	if affected == 0 {
		// The chosen offer left PENDING between load and write.
		tx.Rollback() //nolint:errcheck
		return ErrAwardConflict
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit award: %w", err)
	}
	return nil
}

// ListAcceptedBySchool returns accepted offers across the school's bid requests.
func (r *OfferRepository) ListAcceptedBySchool(ctx context.Context, schoolID string) ([]models.SchoolPayment, error) {
	const query = `SELECT so.id AS offer_id, br.id AS bid_request_id, br.title AS bid_title,
            bi.name AS item_name, bi.quantity, bi.unit,
            so.price_per_unit, so.total_price, u.full_name AS supplier_name, so.updated_at AS awarded_at
        FROM supplier_offers so
        JOIN bid_items bi ON bi.id = so.bid_item_id
        JOIN bid_requests br ON br.id = bi.bid_request_id
        JOIN users u ON u.id = so.supplier_id
        WHERE br.school_id = $1 AND so.status = 'ACCEPTED'
        ORDER BY so.updated_at DESC`
	var payments []models.SchoolPayment
	if err := r.db.SelectContext(ctx, &payments, query, schoolID); err != nil {
		return nil, fmt.Errorf("list school payments: %w", err)
	}
	return payments, nil
}
