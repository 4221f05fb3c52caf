package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	appErrors "github.com/noah-isme/sma-procurement-api/pkg/errors"
)

type offerStore interface {
	Create(ctx context.Context, offer *models.SupplierOffer) error
	ExistsForSupplier(ctx context.Context, itemID, supplierID string) (bool, error)
	ListByItem(ctx context.Context, itemID string) ([]models.SupplierOffer, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]models.SupplierOfferView, error)
	ListAcceptedBySchool(ctx context.Context, schoolID string) ([]models.SchoolPayment, error)
}

type offerItemReader interface {
	FindItem(ctx context.Context, itemID string) (*models.AwardCandidate, error)
}

type offerUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// OfferService handles offer submission and offer/payment listings.
type OfferService struct {
	repo      offerStore
	items     offerItemReader
	users     offerUserReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewOfferService builds an OfferService.
func NewOfferService(repo offerStore, items offerItemReader, users offerUserReader, validate *validator.Validate, logger *zap.Logger) *OfferService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferService{
		repo:      repo,
		items:     items,
		users:     users,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates a pending offer on a bid item. Only verified suppliers may
// submit, the deadline must still be open, and a supplier gets one offer per
// item.
func (s *OfferService) Submit(ctx context.Context, req models.SubmitOfferRequest, claims *models.JWTClaims) (*models.SupplierOffer, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleSupplier {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only suppliers may submit offers")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offer payload")
	}
	if req.PricePerUnit.LessThanOrEqual(decimal.Zero) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "price per unit must be positive")
	}

	supplier, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supplier")
	}
	if !supplier.Verified {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "supplier account is not verified")
	}

	item, err := s.items.FindItem(ctx, req.BidItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bid item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bid item")
	}

	if !s.now().Before(item.Deadline) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "deadline passed")
	}

	exists, err := s.repo.ExistsForSupplier(ctx, req.BidItemID, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing offer")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "offer already submitted for this item")
	}

	offer := &models.SupplierOffer{
		BidItemID:    req.BidItemID,
		SupplierID:   claims.UserID,
		PricePerUnit: req.PricePerUnit,
		TotalPrice:   decimal.NewNullDecimal(req.PricePerUnit.Mul(item.Quantity)),
		Notes:        req.Notes,
		DeliveryTime: req.DeliveryTime,
	}
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create offer")
	}

	s.logger.Info("offer submitted",
		zap.String("offer_id", offer.ID),
		zap.String("bid_item_id", offer.BidItemID),
		zap.String("supplier_id", offer.SupplierID))
	return offer, nil
}

// ListByItem returns all offers on a bid item, submission order ascending.
func (s *OfferService) ListByItem(ctx context.Context, itemID string) ([]models.SupplierOffer, error) {
	if _, err := s.items.FindItem(ctx, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bid item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bid item")
	}
	offers, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offers")
	}
	return offers, nil
}

// ListMine returns the calling supplier's offers with bid context.
func (s *OfferService) ListMine(ctx context.Context, claims *models.JWTClaims) ([]models.SupplierOfferView, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleSupplier {
		return nil, appErrors.ErrForbidden
	}
	offers, err := s.repo.ListBySupplier(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offers")
	}
	return offers, nil
}

// SchoolPayments returns accepted offers across the caller's bid requests.
func (s *OfferService) SchoolPayments(ctx context.Context, claims *models.JWTClaims) ([]models.SchoolPayment, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleSchool {
		return nil, appErrors.ErrForbidden
	}
	payments, err := s.repo.ListAcceptedBySchool(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}
