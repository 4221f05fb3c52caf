package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-procurement-api/internal/models"
)

func TestCreateBidCascadesItems(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBidRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bid_requests").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO bid_items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO bid_items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	bid := &models.BidRequest{
		SchoolID: "school-1",
		Title:    "Canteen supplies",
		Deadline: time.Now().Add(48 * time.Hour),
		Items: []models.BidItem{
			{Name: "Onions", Quantity: decimal.NewFromInt(20), Unit: "kg"},
			{Name: "Rice", Quantity: decimal.NewFromInt(50), Unit: "kg"},
		},
	}
	err := repo.Create(context.Background(), bid)
	require.NoError(t, err)
	assert.NotEmpty(t, bid.ID)
	assert.Equal(t, bid.ID, bid.Items[0].BidRequestID)
	assert.NotEmpty(t, bid.Items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBidRollsBackOnItemFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBidRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bid_requests").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO bid_items").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	bid := &models.BidRequest{
		SchoolID: "school-1",
		Title:    "Canteen supplies",
		Deadline: time.Now().Add(48 * time.Hour),
		Items: []models.BidItem{
			{Name: "Onions", Quantity: decimal.NewFromInt(20), Unit: "kg"},
		},
	}
	err := repo.Create(context.Background(), bid)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveAttachesItems(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBidRepository(db)

	now := time.Now()
	bidRows := sqlmock.NewRows([]string{"id", "school_id", "title", "description", "deadline", "created_at"}).
		AddRow("bid-1", "school-1", "Canteen supplies", "", now.Add(time.Hour), now)
	mock.ExpectQuery("SELECT id, school_id, title, description, deadline, created_at FROM bid_requests WHERE deadline > ").
		WillReturnRows(bidRows)

	itemRows := sqlmock.NewRows([]string{"id", "bid_request_id", "name", "quantity", "unit", "created_at"}).
		AddRow("item-1", "bid-1", "Onions", "20", "kg", now).
		AddRow("item-2", "bid-1", "Rice", "50", "kg", now)
	mock.ExpectQuery("SELECT id, bid_request_id, name, quantity, unit, created_at FROM bid_items WHERE bid_request_id IN ").
		WillReturnRows(itemRows)

	bids, err := repo.ListActive(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Len(t, bids[0].Items, 2)
	assert.Equal(t, "Onions", bids[0].Items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpiredUnawarded(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBidRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"item_id", "item_name", "quantity", "unit", "bid_request_id", "bid_title", "deadline"}).
		AddRow("item-1", "Onions", "20", "kg", "bid-1", "Canteen supplies", now.Add(-time.Hour))
	mock.ExpectQuery("SELECT bi.id AS item_id, .+ WHERE br.deadline < .+ AND NOT EXISTS").
		WithArgs(now).
		WillReturnRows(rows)

	candidates, err := repo.ListExpiredUnawarded(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "item-1", candidates[0].ItemID)
	assert.True(t, candidates[0].Quantity.Equal(decimal.NewFromInt(20)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindItem(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBidRepository(db)

	deadline := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows([]string{"item_id", "item_name", "quantity", "unit", "bid_request_id", "bid_title", "deadline"}).
		AddRow("item-1", "Onions", "20", "kg", "bid-1", "Canteen supplies", deadline)
	mock.ExpectQuery("SELECT bi.id AS item_id, .+ WHERE bi.id = ").
		WithArgs("item-1").
		WillReturnRows(rows)

	item, err := repo.FindItem(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "Canteen supplies", item.BidTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}
