package discount

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/tripnest/backoffice/internal/models"
	"github.com/tripnest/backoffice/pkg/types"
)

// There is no append-only audit log. The trail is synthesized per request
// from the code's own timestamps plus the immutable booking_discounts join
// table. Only the most recent status transition is inferable: the sweep and
// earlier toggles leave no discrete events, so updated_at stands in for
// "when the current status began".

const (
	HistoryEntryCreated       = "created"
	HistoryEntryUsed          = "used"
	HistoryEntryStatusChanged = "status_changed"

	usageHistoryLimit = 20
)

type HistoryEntry struct {
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	Description  string    `json:"description"`
	BookingID    string    `json:"bookingId,omitempty"`
	CustomerName string    `json:"customerName,omitempty"`
	Amount       float64   `json:"amount,omitempty"`
}

type usageRow struct {
	BookingID      string
	FullName       string
	DiscountAmount float64
	CreatedAt      time.Time
}

func (s *Service) usageRows(tx *gorm.DB, id string, limit int) ([]usageRow, error) {
	var rows []usageRow
	q := tx.Table("booking_discounts AS bd").
		Select("bd.booking_id, a.full_name, bd.discount_amount, bd.created_at").
		Joins("JOIN bookings b ON b.booking_id = bd.booking_id").
		Joins("JOIN accounts a ON a.account_id = b.account_id").
		Where("bd.discount_id = ?", id).
		Order("bd.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load usage rows: %w", err)
	}
	return rows, nil
}

// History reconstructs the audit trail: one synthetic "created" entry, the
// most recent redemptions, and at most one inferred status change. Entries
// are sorted most-recent first. The expiry sweep runs first so an overdue
// code reads as EXPIRED here just as it does through Get and List.
func (s *Service) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sweepExpiredTx(tx, time.Now()); err != nil {
			return err
		}
		row, err := s.loadByID(tx, id)
		if err != nil {
			return err
		}
		entries, err = s.buildHistory(tx, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) buildHistory(tx *gorm.DB, row *models.DiscountCode) ([]HistoryEntry, error) {
	entries := []HistoryEntry{{
		Type:        HistoryEntryCreated,
		Timestamp:   row.CreatedAt,
		Description: fmt.Sprintf("Tạo mã giảm giá %s", row.Code),
	}}

	usages, err := s.usageRows(tx, row.DiscountID, usageHistoryLimit)
	if err != nil {
		return nil, err
	}
	for _, u := range usages {
		entries = append(entries, HistoryEntry{
			Type:         HistoryEntryUsed,
			Timestamp:    u.CreatedAt,
			Description:  fmt.Sprintf("Khách hàng %s sử dụng mã cho đặt phòng %s", u.FullName, u.BookingID),
			BookingID:    u.BookingID,
			CustomerName: u.FullName,
			Amount:       u.DiscountAmount,
		})
	}

	// Reactivation is not inferable: only EXPIRED and DISABLED emit an
	// entry, timestamped with the last update.
	if row.UpdatedAt.After(row.CreatedAt) {
		switch row.Status {
		case types.DiscountStatusExpired:
			entries = append(entries, HistoryEntry{
				Type:        HistoryEntryStatusChanged,
				Timestamp:   row.UpdatedAt,
				Description: "Mã giảm giá đã hết hạn",
			})
		case types.DiscountStatusDisabled:
			entries = append(entries, HistoryEntry{
				Type:        HistoryEntryStatusChanged,
				Timestamp:   row.UpdatedAt,
				Description: "Mã giảm giá đã bị vô hiệu hóa",
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	return entries, nil
}

type TopUser struct {
	AccountID   string  `json:"accountId"`
	FullName    string  `json:"fullName"`
	Redemptions int64   `json:"redemptions"`
	TotalAmount float64 `json:"totalAmount"`
}

type RecentBooking struct {
	BookingID      string    `json:"bookingId"`
	CustomerName   string    `json:"customerName"`
	TotalPrice     float64   `json:"totalPrice"`
	DiscountAmount float64   `json:"discountAmount"`
	UsedAt         time.Time `json:"usedAt"`
}

type UsageStats struct {
	DiscountID          string          `json:"discountId"`
	Code                string          `json:"code"`
	TotalUsed           int64           `json:"totalUsed"`
	UsageLimit          *int            `json:"usageLimit,omitempty"`
	Remaining           *int64          `json:"remaining,omitempty"`
	TotalDiscountAmount float64         `json:"totalDiscountAmount"`
	TopUsers            []TopUser       `json:"topUsers"`
	RecentBookings      []RecentBooking `json:"recentBookings"`
}

// UsageStats aggregates the booking_discounts join for a single code. Like
// every status-dependent read it sweeps first.
func (s *Service) UsageStats(ctx context.Context, id string) (*UsageStats, error) {
	var stats *UsageStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sweepExpiredTx(tx, time.Now()); err != nil {
			return err
		}
		row, err := s.loadByID(tx, id)
		if err != nil {
			return err
		}
		stats, err = s.buildUsageStats(tx, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) buildUsageStats(tx *gorm.DB, row *models.DiscountCode) (*UsageStats, error) {
	stats := &UsageStats{
		DiscountID: row.DiscountID,
		Code:       row.Code,
		UsageLimit: row.UsageLimit,
		TopUsers:   []TopUser{},
	}

	type totals struct {
		Used  int64
		Total float64
	}
	var t totals
	err := tx.Model(&models.BookingDiscount{}).
		Select("COUNT(*) AS used, COALESCE(SUM(discount_amount), 0) AS total").
		Where("discount_id = ?", row.DiscountID).
		Scan(&t).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usages: %w", err)
	}
	stats.TotalUsed = t.Used
	stats.TotalDiscountAmount = t.Total
	if row.UsageLimit != nil {
		remaining := int64(*row.UsageLimit) - t.Used
		if remaining < 0 {
			remaining = 0
		}
		stats.Remaining = &remaining
	}

	err = tx.Table("booking_discounts AS bd").
		Select("a.account_id, a.full_name, COUNT(*) AS redemptions, COALESCE(SUM(bd.discount_amount), 0) AS total_amount").
		Joins("JOIN bookings b ON b.booking_id = bd.booking_id").
		Joins("JOIN accounts a ON a.account_id = b.account_id").
		Where("bd.discount_id = ?", row.DiscountID).
		Group("a.account_id, a.full_name").
		Order("redemptions DESC").
		Limit(5).
		Scan(&stats.TopUsers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load top users: %w", err)
	}

	var recent []struct {
		BookingID      string
		FullName       string
		TotalPrice     float64
		DiscountAmount float64
		CreatedAt      time.Time
	}
	err = tx.Table("booking_discounts AS bd").
		Select("bd.booking_id, a.full_name, b.total_price, bd.discount_amount, bd.created_at").
		Joins("JOIN bookings b ON b.booking_id = bd.booking_id").
		Joins("JOIN accounts a ON a.account_id = b.account_id").
		Where("bd.discount_id = ?", row.DiscountID).
		Order("bd.created_at DESC").
		Limit(5).
		Scan(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent bookings: %w", err)
	}
	stats.RecentBookings = make([]RecentBooking, 0, len(recent))
	for _, r := range recent {
		stats.RecentBookings = append(stats.RecentBookings, RecentBooking{
			BookingID:      r.BookingID,
			CustomerName:   r.FullName,
			TotalPrice:     r.TotalPrice,
			DiscountAmount: r.DiscountAmount,
			UsedAt:         r.CreatedAt,
		})
	}

	return stats, nil
}
