package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	appErrors "github.com/noah-isme/sma-procurement-api/pkg/errors"
)

const activeBidsCacheKey = "bids:active"

type bidStore interface {
	Create(ctx context.Context, bid *models.BidRequest) error
	ListActive(ctx context.Context, now time.Time) ([]models.BidRequest, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.BidRequest, error)
}

type bidOfferReader interface {
	ListByItems(ctx context.Context, itemIDs []string) (map[string][]models.SupplierOffer, error)
}

type supplierDirectory interface {
	ListVerifiedSuppliers(ctx context.Context) ([]models.SupplierContact, error)
}

type bidPublisher interface {
	NotifyBidPublished(bid *models.BidRequest, suppliers []models.SupplierContact)
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// BidService orchestrates bid request workflows.
type BidService struct {
	repo      bidStore
	offers    bidOfferReader
	suppliers supplierDirectory
	notifier  bidPublisher
	cache     listingCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBidService builds a BidService. The cache is optional; a nil cache
// means every listing goes to the database.
func NewBidService(
	repo bidStore,
	offers bidOfferReader,
	suppliers supplierDirectory,
	notifier bidPublisher,
	cache listingCache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *BidService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BidService{
		repo:      repo,
		offers:    offers,
		suppliers: suppliers,
		notifier:  notifier,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a bid request with its line items and fans out a
// best-effort notification to every verified supplier.
func (s *BidService) Create(ctx context.Context, req models.CreateBidRequest, claims *models.JWTClaims) (*models.BidRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleSchool {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only schools may post bid requests")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bid request payload")
	}
	if !req.Deadline.After(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "deadline must be in the future")
	}
	for _, item := range req.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "item quantity must be positive")
		}
	}

	bid := &models.BidRequest{
		SchoolID:    claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline.UTC(),
	}
	for _, item := range req.Items {
		bid.Items = append(bid.Items, models.BidItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		})
	}

	if err := s.repo.Create(ctx, bid); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create bid request")
	}

	s.invalidateActiveCache(ctx)
	s.fanOut(ctx, bid)

	return bid, nil
}

// ListActive returns bid requests still open for offers, served from cache
// when possible.
func (s *BidService) ListActive(ctx context.Context) ([]models.BidRequest, error) {
	if s.cache != nil {
		var cached []models.BidRequest
		if err := s.cache.Get(ctx, activeBidsCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	bids, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active bids")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, activeBidsCacheKey, bids, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache active bids", zap.Error(err))
		}
	}
	return bids, nil
}

// ListMine returns the caller's bid requests with items and nested offers.
func (s *BidService) ListMine(ctx context.Context, claims *models.JWTClaims) ([]models.BidRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleSchool {
		return nil, appErrors.ErrForbidden
	}

	bids, err := s.repo.ListBySchool(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bids")
	}

	var itemIDs []string
	for i := range bids {
		for j := range bids[i].Items {
			itemIDs = append(itemIDs, bids[i].Items[j].ID)
		}
	}
	offersByItem, err := s.offers.ListByItems(ctx, itemIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offers")
	}
	for i := range bids {
		for j := range bids[i].Items {
			bids[i].Items[j].Offers = offersByItem[bids[i].Items[j].ID]
		}
	}
	return bids, nil
}

func (s *BidService) fanOut(ctx context.Context, bid *models.BidRequest) {
	if s.notifier == nil {
		return
	}
	suppliers, err := s.suppliers.ListVerifiedSuppliers(ctx)
	if err != nil {
		s.logger.Warn("failed to load suppliers for fan-out",
			zap.String("bid_id", bid.ID), zap.Error(err))
		return
	}
	s.notifier.NotifyBidPublished(bid, suppliers)
}

func (s *BidService) invalidateActiveCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, activeBidsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate active bids cache", zap.Error(err))
	}
}
