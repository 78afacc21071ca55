package discount

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tripnest/backoffice/internal/models"
	"github.com/tripnest/backoffice/pkg/logctx"
	"github.com/tripnest/backoffice/pkg/metrics"
	"github.com/tripnest/backoffice/pkg/types"
)

// The status machine: ACTIVE / DISABLED / EXPIRED. No state is terminal;
// an expired code returns to ACTIVE when an extension pushes its expiry
// back into the future.

// sweepExpiredTx forces every over-due ACTIVE or DISABLED row to EXPIRED.
// It is a bulk, idempotent write that runs at the start of every read that
// depends on current status. It deliberately leaves no discrete event
// behind, which is why the history reconstructor can only infer the most
// recent transition.
func (s *Service) sweepExpiredTx(tx *gorm.DB, now time.Time) error {
	err := tx.Model(&models.DiscountCode{}).
		Where("status IN ? AND expires_at < ?",
			[]types.DiscountStatus{types.DiscountStatusActive, types.DiscountStatusDisabled}, now).
		Update("status", types.DiscountStatusExpired).Error
	if err != nil {
		return fmt.Errorf("expiry sweep failed: %w", err)
	}
	return nil
}

// SweepExpired runs the expiry sweep standalone and reports how many rows
// changed. Reporting reads call this before aggregating.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	now := time.Now()
	defer func() {
		metrics.ObserveBusinessProcess("discount", "sweep_expired", metrics.MillisecondsSince(now))
	}()
	res := s.db.WithContext(ctx).Model(&models.DiscountCode{}).
		Where("status IN ? AND expires_at < ?",
			[]types.DiscountStatus{types.DiscountStatusActive, types.DiscountStatusDisabled}, now).
		Update("status", types.DiscountStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("expiry sweep failed: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		logctx.FromCtx(ctx, s.log).Infow("expiry sweep", "expired", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// ToggleStatus flips ACTIVE <-> DISABLED. A code whose expiry has already
// passed is forced to EXPIRED regardless of the requested direction; an
// EXPIRED code with a future expiry toggles back to ACTIVE.
func (s *Service) ToggleStatus(ctx context.Context, id string) (*DiscountItem, error) {
	var row *models.DiscountCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = s.loadByID(tx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		switch {
		case row.Expired(now):
			row.Status = types.DiscountStatusExpired
		case row.Status == types.DiscountStatusActive:
			row.Status = types.DiscountStatusDisabled
		default:
			row.Status = types.DiscountStatusActive
		}
		return tx.Save(row).Error
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("discount status toggled", "discount_id", id, "status", row.Status)
	return toItem(row), nil
}

// Extend adds days to the expiry. An EXPIRED code whose new expiry lands in
// the future reverts to ACTIVE; otherwise the status is left as-is.
func (s *Service) Extend(ctx context.Context, id string, days int) (*DiscountItem, error) {
	if days <= 0 {
		return nil, validationError(MsgExtendDaysInvalid)
	}
	var row *models.DiscountCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = s.loadByID(tx, id)
		if err != nil {
			return err
		}
		row.ExpiresAt = row.ExpiresAt.AddDate(0, 0, days)
		if row.Status == types.DiscountStatusExpired && row.ExpiresAt.After(time.Now()) {
			row.Status = types.DiscountStatusActive
		}
		return tx.Save(row).Error
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("discount extended", "discount_id", id, "days", days, "expires_at", row.ExpiresAt)
	return toItem(row), nil
}
