package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	appErrors "github.com/noah-isme/sma-procurement-api/pkg/errors"
)

type mockOfferStore struct {
	created   []*models.SupplierOffer
	createErr error
	exists    bool
	existsErr error
	byItem    []models.SupplierOffer
	mine      []models.SupplierOfferView
	payments  []models.SchoolPayment
}

func (m *mockOfferStore) Create(ctx context.Context, offer *models.SupplierOffer) error {
	if m.createErr != nil {
		return m.createErr
	}
	offer.ID = "offer-new"
	offer.Status = models.OfferPending
	m.created = append(m.created, offer)
	return nil
}

func (m *mockOfferStore) ExistsForSupplier(ctx context.Context, itemID, supplierID string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockOfferStore) ListByItem(ctx context.Context, itemID string) ([]models.SupplierOffer, error) {
	return m.byItem, nil
}

func (m *mockOfferStore) ListBySupplier(ctx context.Context, supplierID string) ([]models.SupplierOfferView, error) {
	return m.mine, nil
}

func (m *mockOfferStore) ListAcceptedBySchool(ctx context.Context, schoolID string) ([]models.SchoolPayment, error) {
	return m.payments, nil
}

type mockItemReader struct {
	item *models.AwardCandidate
	err  error
}

func (m *mockItemReader) FindItem(ctx context.Context, itemID string) (*models.AwardCandidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

type mockUserReader struct {
	user *models.User
	err  error
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func supplierClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleSupplier}
}

func openItem(deadline time.Time) *models.AwardCandidate {
	return &models.AwardCandidate{
		ItemID:   "item-1",
		ItemName: "Rice",
		Quantity: dec("25"),
		Unit:     "kg",
		Deadline: deadline,
	}
}

func newOfferService(store *mockOfferStore, items *mockItemReader, users *mockUserReader, at time.Time) *OfferService {
	svc := NewOfferService(store, items, users, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return at }
	return svc
}

func TestSubmitOfferSuccess(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &mockOfferStore{}
	items := &mockItemReader{item: openItem(now.Add(time.Hour))}
	users := &mockUserReader{user: &models.User{ID: "supplier-1", Verified: true}}
	svc := newOfferService(store, items, users, now)

	offer, err := svc.Submit(context.Background(), models.SubmitOfferRequest{
		BidItemID:    "item-1",
		PricePerUnit: dec("80"),
		DeliveryTime: "3 days",
	}, supplierClaims("supplier-1"))
	require.NoError(t, err)

	assert.Equal(t, models.OfferPending, offer.Status)
	assert.Equal(t, "supplier-1", offer.SupplierID)
	require.True(t, offer.TotalPrice.Valid)
	assert.True(t, offer.TotalPrice.Decimal.Equal(dec("2000")))
}

func TestSubmitOfferRejectsUnverifiedSupplier(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &mockOfferStore{}
	items := &mockItemReader{item: openItem(now.Add(time.Hour))}
	users := &mockUserReader{user: &models.User{ID: "supplier-1", Verified: false}}
	svc := newOfferService(store, items, users, now)

	_, err := svc.Submit(context.Background(), models.SubmitOfferRequest{
		BidItemID:    "item-1",
		PricePerUnit: dec("80"),
	}, supplierClaims("supplier-1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 403, appErr.Status)
	assert.Empty(t, store.created)
}

func TestSubmitOfferRejectsNonSupplierRole(t *testing.T) {
	svc := newOfferService(&mockOfferStore{}, &mockItemReader{}, &mockUserReader{}, time.Now())

	_, err := svc.Submit(context.Background(), models.SubmitOfferRequest{
		BidItemID:    "item-1",
		PricePerUnit: dec("80"),
	}, schoolClaims("school-1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 403, appErr.Status)
}

func TestSubmitOfferAfterDeadline(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &mockOfferStore{}
	items := &mockItemReader{item: openItem(now.Add(-time.Minute))}
	users := &mockUserReader{user: &models.User{ID: "supplier-1", Verified: true}}
	svc := newOfferService(store, items, users, now)

	_, err := svc.Submit(context.Background(), models.SubmitOfferRequest{
		BidItemID:    "item-1",
		PricePerUnit: dec("80"),
	}, supplierClaims("supplier-1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
}

func TestSubmitOfferExactlyAtDeadlineRejected(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &mockOfferStore{}
	items := &mockItemReader{item: openItem(now)}
	users := &mockUserReader{user: &models.User{ID: "supplier-1", Verified: true}}
	svc := newOfferService(store, items, users, now)

	_, err := svc.Submit(context.Background(), models.SubmitOfferRequest{
		BidItemID:    "item-1",
		PricePerUnit: dec("80"),
	}, supplierClaims("supplier-1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
}

func TestSubmitOfferDuplicate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &mockOfferStore{exists: true}
	items := &mockItemReader{item: openItem(now.Add(time.Hour))}
	users := &mockUserReader{user: &models.User{ID: "supplier-1", Verified: true}}
	svc := newOfferService(store, items, users, now)

	_, err := svc.Submit(context.Background(), models.SubmitOfferRequest{
		BidItemID:    "item-1",
		PricePerUnit: dec("80"),
	}, supplierClaims("supplier-1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
}

func TestSubmitOfferUnknownItem(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	items := &mockItemReader{err: sql.ErrNoRows}
	users := &mockUserReader{user: &models.User{ID: "supplier-1", Verified: true}}
	svc := newOfferService(&mockOfferStore{}, items, users, now)

	_, err := svc.Submit(context.Background(), models.SubmitOfferRequest{
		BidItemID:    "missing",
		PricePerUnit: dec("80"),
	}, supplierClaims("supplier-1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
}

func TestSubmitOfferNonPositivePrice(t *testing.T) {
	svc := newOfferService(&mockOfferStore{}, &mockItemReader{}, &mockUserReader{}, time.Now())

	_, err := svc.Submit(context.Background(), models.SubmitOfferRequest{
		BidItemID:    "item-1",
		PricePerUnit: dec("-5"),
	}, supplierClaims("supplier-1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
}

func TestListByItemUnknownItem(t *testing.T) {
	svc := newOfferService(&mockOfferStore{}, &mockItemReader{err: sql.ErrNoRows}, &mockUserReader{}, time.Now())

	_, err := svc.ListByItem(context.Background(), "missing")
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
}

func TestListMineRequiresSupplier(t *testing.T) {
	svc := newOfferService(&mockOfferStore{}, &mockItemReader{}, &mockUserReader{}, time.Now())

	_, err := svc.ListMine(context.Background(), schoolClaims("school-1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 403, appErr.Status)
}

func TestSchoolPaymentsRequiresSchool(t *testing.T) {
	svc := newOfferService(&mockOfferStore{}, &mockItemReader{}, &mockUserReader{}, time.Now())

	_, err := svc.SchoolPayments(context.Background(), supplierClaims("supplier-1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 403, appErr.Status)

	payments := []models.SchoolPayment{{OfferID: "o1", TotalPrice: dec("2000")}}
	svc = newOfferService(&mockOfferStore{payments: payments}, &mockItemReader{}, &mockUserReader{}, time.Now())
	got, err := svc.SchoolPayments(context.Background(), schoolClaims("school-1"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
