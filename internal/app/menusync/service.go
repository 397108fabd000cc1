package menusync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/domain"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
	"github.com/ArmanWeb/bobatea/internal/priceguard"
)

// AutoApprover is the approver identity recorded on automatic
// approvals.
const AutoApprover = "auto-sync"

type Config struct {
	AutoApprove     bool
	ReviewFirstSeen bool
}

// Service stages incoming external prices in the shadow menu and runs
// every price-bearing update through the variance guard.
type Service struct {
	menu   interfaces.MenuRepository
	cfg    Config
	logger logger.Logger
}

func NewService(menu interfaces.MenuRepository, cfg Config, logger logger.Logger) *Service {
	return &Service{menu: menu, cfg: cfg, logger: logger}
}

// ApplyPriceUpdate evaluates one incoming price event and upserts the
// shadow entry. On an invalid price the stored record is left untouched
// and the failed sync is logged, never silently defaulted.
func (s *Service) ApplyPriceUpdate(ctx context.Context, msg interfaces.PriceUpdateMessage) (*domain.ShadowMenuEntry, error) {
	if msg.ProductID == "" {
		return nil, fmt.Errorf("price update without product id")
	}

	existing, err := s.menu.FindByProductID(ctx, msg.ProductID)
	if err != nil && !errors.Is(err, domain.ErrMenuEntryNotFound) {
		return nil, err
	}

	var previous *float64
	if existing != nil {
		p := existing.Price
		previous = &p
	}

	eval, err := priceguard.Evaluate(msg.Price, previous)
	if err != nil {
		s.logger.Error("price_sync_failed", "Rejected invalid price from external feed", "", map[string]interface{}{
			"product_id": msg.ProductID,
			"price":      msg.Price,
		}, err)
		return nil, err
	}

	entry := &domain.ShadowMenuEntry{
		IikoProductID:   msg.ProductID,
		Name:            msg.Name,
		Price:           msg.Price,
		PreviousPrice:   previous,
		VariancePercent: eval.VariancePercent,
		PriceAlert:      eval.Alert,
		UpdatedAt:       time.Now().UTC(),
	}
	if existing != nil {
		entry.ID = existing.ID
		if entry.Name == "" {
			entry.Name = existing.Name
		}
	}

	entry.SyncStatus = s.decide(eval)
	if entry.SyncStatus == domain.SyncStatusApproved {
		approver := AutoApprover
		approvedAt := entry.UpdatedAt
		entry.ApprovedBy = &approver
		entry.ApprovedAt = &approvedAt
	}

	if err := s.menu.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	if eval.Alert {
		s.logger.Info("price_alert", "Price variance over threshold, held for review", "", map[string]interface{}{
			"product_id":       msg.ProductID,
			"price":            msg.Price,
			"variance_percent": eval.VariancePercent,
		})
	}

	return entry, nil
}

// decide picks the sync status for an evaluated update. An alert always
// means pending; that rule is a safety invariant, not a tunable.
func (s *Service) decide(eval priceguard.Evaluation) domain.SyncStatus {
	if eval.Alert {
		return domain.SyncStatusPending
	}
	if !s.cfg.AutoApprove {
		return domain.SyncStatusPending
	}
	if eval.FirstSeen && s.cfg.ReviewFirstSeen {
		return domain.SyncStatusPending
	}
	return domain.SyncStatusApproved
}

func (s *Service) Approve(ctx context.Context, productID, approver string) error {
	if err := s.menu.SetApproval(ctx, productID, domain.SyncStatusApproved, approver); err != nil {
		return err
	}
	s.logger.Info("price_approved", "Shadow menu entry approved", "", map[string]interface{}{
		"product_id": productID,
		"approver":   approver,
	})
	return nil
}

func (s *Service) Reject(ctx context.Context, productID, approver string) error {
	if err := s.menu.SetApproval(ctx, productID, domain.SyncStatusRejected, approver); err != nil {
		return err
	}
	s.logger.Info("price_rejected", "Shadow menu entry rejected", "", map[string]interface{}{
		"product_id": productID,
		"approver":   approver,
	})
	return nil
}

func (s *Service) ListPending(ctx context.Context) ([]*domain.ShadowMenuEntry, error) {
	return s.menu.ListByStatus(ctx, domain.SyncStatusPending)
}
