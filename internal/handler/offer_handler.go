package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	"github.com/noah-isme/sma-procurement-api/internal/service"
	appErrors "github.com/noah-isme/sma-procurement-api/pkg/errors"
	"github.com/noah-isme/sma-procurement-api/pkg/response"
)

type offerService interface {
	Submit(ctx context.Context, req models.SubmitOfferRequest, claims *models.JWTClaims) (*models.SupplierOffer, error)
	ListByItem(ctx context.Context, itemID string) ([]models.SupplierOffer, error)
	ListMine(ctx context.Context, claims *models.JWTClaims) ([]models.SupplierOfferView, error)
	SchoolPayments(ctx context.Context, claims *models.JWTClaims) ([]models.SchoolPayment, error)
}

type selectionEngine interface {
	SelectOffer(ctx context.Context, offerID string, claims *models.JWTClaims) error
}

type paymentsExporter interface {
	RenderPayments(ctx context.Context, format string, claims *models.JWTClaims) (*service.ExportResult, error)
}

// OfferHandler exposes supplier offer and selection endpoints.
type OfferHandler struct {
	offers    offerService
	selection selectionEngine
	exports   paymentsExporter
}

// NewOfferHandler builds a new handler.
func NewOfferHandler(offers offerService, selection selectionEngine, exports paymentsExporter) *OfferHandler {
	return &OfferHandler{offers: offers, selection: selection, exports: exports}
}

// Submit godoc
// @Summary Submit an offer on a bid item
// @Tags Supplier Offers
// @Accept json
// @Produce json
// @Param payload body models.SubmitOfferRequest true "Offer payload"
// @Success 201 {object} response.Envelope
// @Router /supplier-offers [post]
func (h *OfferHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	var req models.SubmitOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid offer payload"))
		return
	}
	offer, err := h.offers.Submit(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offer)
}

// ListByItem godoc
// @Summary List offers on a bid item, submission order ascending
// @Tags Supplier Offers
// @Produce json
// @Param bidItemId path string true "Bid item ID"
// @Success 200 {object} response.Envelope
// @Router /supplier-offers/{bidItemId} [get]
func (h *OfferHandler) ListByItem(c *gin.Context) {
	offers, err := h.offers.ListByItem(c.Request.Context(), c.Param("bidItemId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offers, nil)
}

// ListMine godoc
// @Summary List the calling supplier's offers
// @Tags Supplier Offers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /supplier-offers/my-offers [get]
func (h *OfferHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	offers, err := h.offers.ListMine(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offers, nil)
}

// Select godoc
// @Summary Manually award an offer after the deadline
// @Tags Supplier Offers
// @Produce json
// @Param offerId path string true "Offer ID"
// @Success 200 {object} response.Envelope
// @Router /supplier-offers/select/{offerId} [post]
func (h *OfferHandler) Select(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.selection.SelectOffer(c.Request.Context(), c.Param("offerId"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "accepted"}, nil)
}

// SchoolPayments godoc
// @Summary List accepted offers across the caller's bid requests
// @Tags Supplier Offers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /supplier-offers/school-payments [get]
func (h *OfferHandler) SchoolPayments(c *gin.Context) {
	claims := claimsFromContext(c)
	payments, err := h.offers.SchoolPayments(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// ExportPayments godoc
// @Summary Export the school payments view as CSV or PDF
// @Tags Supplier Offers
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Router /supplier-offers/school-payments/export [get]
func (h *OfferHandler) ExportPayments(c *gin.Context) {
	claims := claimsFromContext(c)
	result, err := h.exports.RenderPayments(c.Request.Context(), c.Query("format"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
