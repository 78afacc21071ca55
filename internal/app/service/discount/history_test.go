package discount

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tripnest/backoffice/internal/models"
	"github.com/tripnest/backoffice/pkg/tool"
	"github.com/tripnest/backoffice/pkg/types"
)

// seedRedemption writes the booking-side rows a redemption produces: the
// account, the booking and the immutable booking_discounts link.
func seedRedemption(t *testing.T, db *gorm.DB, discountID, bookingID, accountID string, amount float64) {
	t.Helper()
	require.NoError(t, db.FirstOrCreate(&models.Account{
		AccountID: accountID,
		FullName:  "Nguyễn Văn " + accountID,
		Email:     accountID + "@example.com",
		Status:    "ACTIVE",
	}, models.Account{AccountID: accountID}).Error)
	require.NoError(t, db.Create(&models.Booking{
		BookingID:    bookingID,
		AccountID:    accountID,
		HotelID:      1,
		CheckInDate:  time.Now(),
		CheckOutDate: time.Now().AddDate(0, 0, 2),
		TotalPrice:   500000,
		Status:       "CONFIRMED",
	}).Error)
	require.NoError(t, db.Create(&models.BookingDiscount{
		ID:             tool.GenerateUUIDV7(),
		BookingID:      bookingID,
		DiscountID:     discountID,
		DiscountAmount: amount,
	}).Error)
}

func TestHistory_CreatedAndUsageEntries(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateDiscountRequest{
		Code: "TRAIL", DiscountType: types.DiscountKindPercent, DiscountValue: 10,
		StartDate: "2026-01-01", ExpiryDate: "2099-01-01",
	})
	require.NoError(t, err)
	seedRedemption(t, db, item.DiscountID, "bk-1", "acc-1", 25000)
	seedRedemption(t, db, item.DiscountID, "bk-2", "acc-2", 40000)

	entries, err := svc.History(ctx, item.DiscountID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// most recent first; creation dated 2026-01-01 sorts last
	require.Equal(t, HistoryEntryCreated, entries[2].Type)
	used := []HistoryEntry{entries[0], entries[1]}
	for _, e := range used {
		require.Equal(t, HistoryEntryUsed, e.Type)
		require.NotEmpty(t, e.BookingID)
		require.NotEmpty(t, e.CustomerName)
		require.NotZero(t, e.Amount)
	}
}

func TestHistory_InfersMostRecentStatusChangeOnly(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created := time.Now().AddDate(0, -1, 0)
	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC5", Code: "GONE",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusDisabled,
		ExpiresAt:     time.Now().AddDate(0, 1, 0),
		CreatedAt:     created,
	}).Error)

	entries, err := svc.History(ctx, "DISC5")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, HistoryEntryStatusChanged, entries[0].Type)
	require.Equal(t, HistoryEntryCreated, entries[1].Type)
}

func TestHistory_SweepsOverdueCodeBeforeReading(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created := time.Now().AddDate(0, -1, 0)
	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC6", Code: "OVERDUE",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusActive,
		ExpiresAt:     time.Now().AddDate(0, 0, -5),
		CreatedAt:     created,
	}).Error)

	entries, err := svc.History(ctx, "DISC6")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, HistoryEntryStatusChanged, entries[0].Type)
	require.Equal(t, "Mã giảm giá đã hết hạn", entries[0].Description)

	var row models.DiscountCode
	require.NoError(t, db.Where("discount_id = ?", "DISC6").First(&row).Error)
	require.Equal(t, types.DiscountStatusExpired, row.Status)
}

func TestUsageStats_SweepsOverdueCodeBeforeReading(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC7", Code: "OVERDUE2",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusActive,
		ExpiresAt:     time.Now().AddDate(0, 0, -5),
	}).Error)

	_, err := svc.UsageStats(ctx, "DISC7")
	require.NoError(t, err)

	var row models.DiscountCode
	require.NoError(t, db.Where("discount_id = ?", "DISC7").First(&row).Error)
	require.Equal(t, types.DiscountStatusExpired, row.Status)
}

func TestUsageStats_TotalsAndRemaining(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateDiscountRequest{
		Code: "CAPPED", DiscountType: types.DiscountKindPercent, DiscountValue: 10,
		UsageLimit: ptr(5),
		StartDate:  "2026-01-01", ExpiryDate: "2099-01-01",
	})
	require.NoError(t, err)
	seedRedemption(t, db, item.DiscountID, "bk-1", "acc-1", 25000)
	seedRedemption(t, db, item.DiscountID, "bk-2", "acc-1", 30000)
	seedRedemption(t, db, item.DiscountID, "bk-3", "acc-2", 10000)

	stats, err := svc.UsageStats(ctx, item.DiscountID)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalUsed)
	require.Equal(t, 65000.0, stats.TotalDiscountAmount)
	require.NotNil(t, stats.Remaining)
	require.Equal(t, int64(2), *stats.Remaining)

	require.Len(t, stats.TopUsers, 2)
	require.Equal(t, "acc-1", stats.TopUsers[0].AccountID)
	require.Equal(t, int64(2), stats.TopUsers[0].Redemptions)
	require.Len(t, stats.RecentBookings, 3)
}

func TestUsageStats_RemainingClampsAtZero(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateDiscountRequest{
		Code: "OVERSOLD", DiscountType: types.DiscountKindPercent, DiscountValue: 10,
		UsageLimit: ptr(1),
		StartDate:  "2026-01-01", ExpiryDate: "2099-01-01",
	})
	require.NoError(t, err)
	seedRedemption(t, db, item.DiscountID, "bk-1", "acc-1", 25000)
	seedRedemption(t, db, item.DiscountID, "bk-2", "acc-2", 25000)

	stats, err := svc.UsageStats(ctx, item.DiscountID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalUsed)
	require.Zero(t, *stats.Remaining)
}
