package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	appErrors "github.com/noah-isme/sma-procurement-api/pkg/errors"
	"github.com/noah-isme/sma-procurement-api/pkg/export"
)

var paymentHeaders = []string{"Bid", "Item", "Quantity", "Unit", "Price/Unit", "Total", "Supplier", "Awarded At"}

type paymentsReader interface {
	SchoolPayments(ctx context.Context, claims *models.JWTClaims) ([]models.SchoolPayment, error)
}

// ExportService renders the school payments view as CSV or PDF.
type ExportService struct {
	payments paymentsReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService builds an ExportService.
func NewExportService(payments paymentsReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		payments: payments,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// RenderPayments exports the caller's accepted offers in the given format.
func (s *ExportService) RenderPayments(ctx context.Context, format string, claims *models.JWTClaims) (*ExportResult, error) {
	payments, err := s.payments.SchoolPayments(ctx, claims)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: paymentHeaders}
	for _, p := range payments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Bid":        p.BidTitle,
			"Item":       p.ItemName,
			"Quantity":   p.Quantity.String(),
			"Unit":       p.Unit,
			"Price/Unit": p.PricePerUnit.StringFixed(2),
			"Total":      p.TotalPrice.StringFixed(2),
			"Supplier":   p.SupplierName,
			"Awarded At": p.AwardedAt.Format("2006-01-02 15:04"),
		})
	}

	switch strings.ToLower(format) {
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "school-payments.csv"}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "School Payments")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "school-payments.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
