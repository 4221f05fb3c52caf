package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	appErrors "github.com/noah-isme/sma-procurement-api/pkg/errors"
	"github.com/noah-isme/sma-procurement-api/pkg/response"
)

type bidService interface {
	Create(ctx context.Context, req models.CreateBidRequest, claims *models.JWTClaims) (*models.BidRequest, error)
	ListActive(ctx context.Context) ([]models.BidRequest, error)
	ListMine(ctx context.Context, claims *models.JWTClaims) ([]models.BidRequest, error)
}

// BidHandler exposes bid request endpoints.
type BidHandler struct {
	service bidService
}

// NewBidHandler builds a new handler.
func NewBidHandler(service bidService) *BidHandler {
	return &BidHandler{service: service}
}

// Create godoc
// @Summary Post a new bid request with line items
// @Tags Bid Requests
// @Accept json
// @Produce json
// @Param payload body models.CreateBidRequest true "Bid request payload"
// @Success 201 {object} response.Envelope
// @Router /bid-requests [post]
func (h *BidHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bid request payload"))
		return
	}
	bid, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, bid)
}

// ListActive godoc
// @Summary List bid requests still open for offers
// @Tags Bid Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bid-requests/active [get]
func (h *BidHandler) ListActive(c *gin.Context) {
	bids, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bids, nil)
}

// ListMine godoc
// @Summary List the caller's bid requests with items and offers
// @Tags Bid Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bid-requests/my-bids [get]
func (h *BidHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	bids, err := h.service.ListMine(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bids, nil)
}
