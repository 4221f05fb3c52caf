package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-procurement-api/internal/models"
)

// BidRepository handles bid request and bid item persistence.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository creates a new bid repository.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create inserts a bid request together with its line items in one transaction.
func (r *BidRepository) Create(ctx context.Context, bid *models.BidRequest) error {
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	bid.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create bid: %w", err)
	}

	const bidQuery = `INSERT INTO bid_requests (id, school_id, title, description, deadline, created_at)
        VALUES (:id, :school_id, :title, :description, :deadline, :created_at)`
	if _, err := tx.NamedExecContext(ctx, bidQuery, bid); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert bid request: %w", err)
	}

	const itemQuery = `INSERT INTO bid_items (id, bid_request_id, name, quantity, unit, created_at)
        VALUES (:id, :bid_request_id, :name, :quantity, :unit, :created_at)`
	for i := range bid.Items {
		if bid.Items[i].ID == "" {
			bid.Items[i].ID = uuid.NewString()
		}
		bid.Items[i].BidRequestID = bid.ID
		bid.Items[i].CreatedAt = bid.CreatedAt
		if _, err := tx.NamedExecContext(ctx, itemQuery, bid.Items[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert bid item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create bid: %w", err)
	}
	return nil
}

// ListActive returns bid requests whose deadline is still in the future,
// newest first, with their items attached.
func (r *BidRepository) ListActive(ctx context.Context, now time.Time) ([]models.BidRequest, error) {
	const query = `SELECT id, school_id, title, description, deadline, created_at
        FROM bid_requests WHERE deadline > $1 ORDER BY created_at DESC`
	var bids []models.BidRequest
	if err := r.db.SelectContext(ctx, &bids, query, now); err != nil {
		return nil, fmt.Errorf("list active bids: %w", err)
	}
	if err := r.attachItems(ctx, bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// ListBySchool returns the bid requests owned by a school, with items attached.
func (r *BidRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.BidRequest, error) {
	const query = `SELECT id, school_id, title, description, deadline, created_at
        FROM bid_requests WHERE school_id = $1 ORDER BY created_at DESC`
	var bids []models.BidRequest
	if err := r.db.SelectContext(ctx, &bids, query, schoolID); err != nil {
		return nil, fmt.Errorf("list school bids: %w", err)
	}
	if err := r.attachItems(ctx, bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// FindItem returns a bid item joined with its parent deadline and owner.
func (r *BidRepository) FindItem(ctx context.Context, itemID string) (*models.AwardCandidate, error) {
	const query = `SELECT bi.id AS item_id, bi.name AS item_name, bi.quantity, bi.unit,
            br.id AS bid_request_id, br.title AS bid_title, br.deadline
        FROM bid_items bi
        JOIN bid_requests br ON br.id = bi.bid_request_id
        WHERE bi.id = $1`
	var item models.AwardCandidate
	if err := r.db.GetContext(ctx, &item, query, itemID); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListExpiredUnawarded finds every bid item whose parent deadline is strictly
// before now and which has no accepted offer. This is the discovery query of
// the auto-selection sweep; it runs against a single now snapshot per sweep.
func (r *BidRepository) ListExpiredUnawarded(ctx context.Context, now time.Time) ([]models.AwardCandidate, error) {
	const query = `SELECT bi.id AS item_id, bi.name AS item_name, bi.quantity, bi.unit,
            br.id AS bid_request_id, br.title AS bid_title, br.deadline
        FROM bid_items bi
        JOIN bid_requests br ON br.id = bi.bid_request_id
        WHERE br.deadline < $1
          AND NOT EXISTS (
            SELECT 1 FROM supplier_offers so
            WHERE so.bid_item_id = bi.id AND so.status = 'ACCEPTED'
          )
        ORDER BY br.deadline ASC, bi.id ASC`
	var candidates []models.AwardCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, now); err != nil {
		return nil, fmt.Errorf("list expired unawarded items: %w", err)
	}
	return candidates, nil
}

func (r *BidRepository) attachItems(ctx context.Context, bids []models.BidRequest) error {
	if len(bids) == 0 {
		return nil
	}
	ids := make([]string, len(bids))
	index := make(map[string]int, len(bids))
	for i := range bids {
		ids[i] = bids[i].ID
		index[bids[i].ID] = i
	}

	query, args, err := sqlx.In(`SELECT id, bid_request_id, name, quantity, unit, created_at
        FROM bid_items WHERE bid_request_id IN (?) ORDER BY created_at ASC, id ASC`, ids)
	if err != nil {
		return fmt.Errorf("build items query: %w", err)
	}
	query = r.db.Rebind(query)

	var items []models.BidItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return fmt.Errorf("fetch bid items: %w", err)
	}
	for _, item := range items {
		if i, ok := index[item.BidRequestID]; ok {
			bids[i].Items = append(bids[i].Items, item)
		}
	}
	return nil
}
