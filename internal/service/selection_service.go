package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	"github.com/noah-isme/sma-procurement-api/internal/repository"
	appErrors "github.com/noah-isme/sma-procurement-api/pkg/errors"
)

// defaultDeliveryTime is persisted on auto-awarded offers when the supplier
// left the field unset.
const defaultDeliveryTime = "7 days"

type selectionOfferStore interface {
	FindForSelection(ctx context.Context, offerID string) (*models.OfferSelectionView, error)
	ListByItem(ctx context.Context, itemID string) ([]models.SupplierOffer, error)
	Award(ctx context.Context, params repository.AwardParams) error
}

type awardCandidateSource interface {
	ListExpiredUnawarded(ctx context.Context, now time.Time) ([]models.AwardCandidate, error)
}

type awardNotifier interface {
	NotifyOfferAwarded(supplier models.SupplierContact, itemName, bidTitle string, total decimal.Decimal)
}

type winnerDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type selectionMetrics interface {
	IncAward(mode string)
	RecordSweep(candidates, skipped, failed int)
}

// SweepResult summarises one auto-selection run.
type SweepResult struct {
	Candidates int `json:"candidates"`
	Awarded    int `json:"awarded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// SelectionService is the selection engine: it awards exactly one offer per
// bid item, either on explicit school action or through the scheduled
// auto-selection sweep, and preserves the one-accepted-offer invariant.
type SelectionService struct {
	offers   selectionOfferStore
	bids     awardCandidateSource
	users    winnerDirectory
	notifier awardNotifier
	metrics  selectionMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewSelectionService builds the selection engine. Notifier and metrics are
// optional.
func NewSelectionService(
	offers selectionOfferStore,
	bids awardCandidateSource,
	users winnerDirectory,
	notifier awardNotifier,
	metrics selectionMetrics,
	logger *zap.Logger,
) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{
		offers:   offers,
		bids:     bids,
		users:    users,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SelectOffer performs a manual award on behalf of the owning school.
// Validation order: existence, ownership, deadline; every failure is an
// immediate exclusive exit. Re-selecting the already-accepted offer is a
// no-op success.
func (s *SelectionService) SelectOffer(ctx context.Context, offerID string, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}

	view, err := s.offers.FindForSelection(ctx, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "offer not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offer")
	}

	if view.SchoolID != claims.UserID {
		// Do not leak offer details to non-owners.
		return appErrors.ErrForbidden
	}

	if s.now().Before(view.Deadline) {
		return appErrors.Clone(appErrors.ErrInvalidState, "cannot select before deadline closes")
	}

	switch view.Status {
	case models.OfferAccepted:
		return nil
	case models.OfferRejected:
		return appErrors.Clone(appErrors.ErrConflict, "offer was already rejected")
	}

	total := view.PricePerUnit.Mul(view.Quantity)
	err = s.offers.Award(ctx, repository.AwardParams{
		BidItemID:       view.BidItemID,
		OfferID:         view.OfferID,
		TotalPrice:      total,
		DefaultDelivery: defaultDeliveryTime,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAwardConflict) {
			return appErrors.Clone(appErrors.ErrConflict, "another offer was already accepted for this item")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to award offer")
	}

	s.logger.Info("offer awarded manually",
		zap.String("offer_id", view.OfferID),
		zap.String("bid_item_id", view.BidItemID),
		zap.String("school_id", claims.UserID),
		zap.String("total", total.StringFixed(2)))
	if s.metrics != nil {
		s.metrics.IncAward("manual")
	}

	s.notifyWinner(ctx, view.SupplierID, view.ItemName, "", total)
	return nil
}

// RunAutoSelection finds every bid item whose deadline has passed with no
// accepted offer and awards the lowest-priced pending offer on each. Items
// are processed independently; one failure never aborts the sweep. A
// discovery failure aborts the whole run and is surfaced to the scheduler.
func (s *SelectionService) RunAutoSelection(ctx context.Context) (*SweepResult, error) {
	now := s.now()

	candidates, err := s.bids.ListExpiredUnawarded(ctx, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "candidate discovery failed")
	}

	result := &SweepResult{Candidates: len(candidates)}
	for _, candidate := range candidates {
		switch s.awardCandidate(ctx, candidate) {
		case awardDone:
			result.Awarded++
		case awardSkipped:
			result.Skipped++
		case awardFailed:
			result.Failed++
		}
	}

	s.logger.Info("auto-selection sweep finished",
		zap.Int("candidates", result.Candidates),
		zap.Int("awarded", result.Awarded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	if s.metrics != nil {
		s.metrics.RecordSweep(result.Candidates, result.Skipped, result.Failed)
	}
	return result, nil
}

type awardOutcome int

const (
	awardDone awardOutcome = iota
	awardSkipped
	awardFailed
)

func (s *SelectionService) awardCandidate(ctx context.Context, candidate models.AwardCandidate) awardOutcome {
	offers, err := s.offers.ListByItem(ctx, candidate.ItemID)
	if err != nil {
		s.logger.Error("failed to load offers for candidate",
			zap.String("bid_item_id", candidate.ItemID), zap.Error(err))
		return awardFailed
	}

	winner := pickWinningOffer(offers)
	if winner == nil {
		return awardSkipped
	}

	total := winner.PricePerUnit.Mul(candidate.Quantity)
	err = s.offers.Award(ctx, repository.AwardParams{
		BidItemID:       candidate.ItemID,
		OfferID:         winner.ID,
		TotalPrice:      total,
		DefaultDelivery: defaultDeliveryTime,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAwardConflict) {
			// A manual selection won the race; the item is awarded either way.
			s.logger.Info("candidate already awarded concurrently",
				zap.String("bid_item_id", candidate.ItemID))
			return awardSkipped
		}
		s.logger.Error("failed to auto-award candidate",
			zap.String("bid_item_id", candidate.ItemID),
			zap.String("offer_id", winner.ID),
			zap.Error(err))
		return awardFailed
	}

	s.logger.Info("offer awarded automatically",
		zap.String("offer_id", winner.ID),
		zap.String("bid_item_id", candidate.ItemID),
		zap.String("price_per_unit", winner.PricePerUnit.StringFixed(2)),
		zap.String("total", total.StringFixed(2)))
	if s.metrics != nil {
		s.metrics.IncAward("auto")
	}

	s.notifyWinner(ctx, winner.SupplierID, candidate.ItemName, candidate.BidTitle, total)
	return awardDone
}

// pickWinningOffer returns the pending offer with the lowest price per unit.
// Ties break on earliest submission time, then smallest ID, so repeated runs
// over the same data always pick the same winner.
func pickWinningOffer(offers []models.SupplierOffer) *models.SupplierOffer {
	var winner *models.SupplierOffer
	for i := range offers {
		offer := &offers[i]
		if offer.Status != models.OfferPending {
			continue
		}
		if winner == nil {
			winner = offer
			continue
		}
		switch offer.PricePerUnit.Cmp(winner.PricePerUnit) {
		case -1:
			winner = offer
		case 0:
			if offer.CreatedAt.Before(winner.CreatedAt) ||
				(offer.CreatedAt.Equal(winner.CreatedAt) && offer.ID < winner.ID) {
				winner = offer
			}
		}
	}
	return winner
}

func (s *SelectionService) notifyWinner(ctx context.Context, supplierID, itemName, bidTitle string, total decimal.Decimal) {
	if s.notifier == nil {
		return
	}
	supplier, err := s.users.FindByID(ctx, supplierID)
	if err != nil {
		s.logger.Warn("failed to load winner for notification",
			zap.String("supplier_id", supplierID), zap.Error(err))
		return
	}
	s.notifier.NotifyOfferAwarded(models.SupplierContact{
		ID:       supplier.ID,
		Email:    supplier.Email,
		FullName: supplier.FullName,
	}, itemName, bidTitle, total)
}
