package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-procurement-api/internal/models"
	"github.com/noah-isme/sma-procurement-api/pkg/config"
	"github.com/noah-isme/sma-procurement-api/pkg/jobs"
	"github.com/noah-isme/sma-procurement-api/pkg/mailer"
)

const (
	jobTypeBidPublished = "bid_published"
	jobTypeOfferAwarded = "offer_awarded"
)

// NotificationService dispatches best-effort email notifications through an
// in-process worker queue. Every entry point is fire-and-forget: enqueue and
// delivery failures are logged, never returned to callers.
type NotificationService struct {
	queue  *jobs.Queue
	mailer mailer.Mailer
	logger *zap.Logger
}

// NewNotificationService wires the dispatcher. A nil mailer disables
// delivery; jobs are still consumed and dropped so callers never block.
func NewNotificationService(m mailer.Mailer, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{mailer: m, logger: logger}
	svc.queue = jobs.NewQueue("notifications", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyBidPublished fans out a new-bid notice to the given suppliers.
func (s *NotificationService) NotifyBidPublished(bid *models.BidRequest, suppliers []models.SupplierContact) {
	for _, supplier := range suppliers {
		msg := mailer.Message{
			ToName:  supplier.FullName,
			ToEmail: supplier.Email,
			Subject: fmt.Sprintf("New bid request: %s", bid.Title),
			TextBody: fmt.Sprintf(
				"Hello %s,\n\nA new bid request %q is open for offers until %s. Log in to review the line items and submit your prices.\n",
				supplier.FullName, bid.Title, bid.Deadline.Format("2 Jan 2006 15:04 MST"),
			),
		}
		s.enqueue(jobTypeBidPublished, msg)
	}
}

// NotifyOfferAwarded informs the winning supplier of an award.
func (s *NotificationService) NotifyOfferAwarded(supplier models.SupplierContact, itemName, bidTitle string, total decimal.Decimal) {
	msg := mailer.Message{
		ToName:  supplier.FullName,
		ToEmail: supplier.Email,
		Subject: fmt.Sprintf("Offer accepted: %s", itemName),
		TextBody: fmt.Sprintf(
			"Hello %s,\n\nYour offer for %q (bid %q) has been accepted. Total amount: %s.\n",
			supplier.FullName, itemName, bidTitle, total.StringFixed(2),
		),
	}
	s.enqueue(jobTypeOfferAwarded, msg)
}

func (s *NotificationService) enqueue(jobType string, msg mailer.Message) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobType,
		Payload: msg,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("type", jobType),
			zap.String("recipient", msg.ToEmail),
			zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mailer.Message)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	if s.mailer == nil {
		s.logger.Debug("mailer disabled, dropping notification",
			zap.String("type", job.Type),
			zap.String("recipient", msg.ToEmail))
		return nil
	}
	if err := s.mailer.Send(msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", job.Type, msg.ToEmail, err)
	}
	return nil
}
