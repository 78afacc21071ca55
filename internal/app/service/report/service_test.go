package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tripnest/backoffice/internal/app/service/discount"
	"github.com/tripnest/backoffice/internal/models"
	"github.com/tripnest/backoffice/pkg/config"
	"github.com/tripnest/backoffice/pkg/tool"
	"github.com/tripnest/backoffice/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.DiscountCode{},
		&models.Booking{},
		&models.BookingDiscount{},
		&models.Account{},
		&models.Hotel{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	cfg := &config.Config{ExpiringSoonDays: 7}
	log := zap.NewNop().Sugar()
	disc := discount.NewService(db, log, cfg)
	return NewService(db, log, cfg, disc), db
}

func seedWorld(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now()

	for _, h := range []models.Hotel{
		{HotelID: 1, Name: "Khách sạn Hoa Sen", CategoryID: 1, City: "Đà Nẵng", Status: "ACTIVE"},
		{HotelID: 2, Name: "Khách sạn Biển Xanh", CategoryID: 2, City: "Nha Trang", Status: "ACTIVE"},
	} {
		require.NoError(t, db.Create(&h).Error)
	}
	for _, a := range []models.Account{
		{AccountID: "acc-1", FullName: "Trần Thị Mai", Email: "mai@example.com", Status: "ACTIVE"},
		{AccountID: "acc-2", FullName: "Lê Văn Hùng", Email: "hung@example.com", Status: "ACTIVE"},
	} {
		require.NoError(t, db.Create(&a).Error)
	}
	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC1", Code: "PCT10",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusActive,
		ExpiresAt:     now.AddDate(0, 0, 3),
	}).Error)
	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC2", Code: "FIX50",
		Status:    types.DiscountStatusDisabled,
		ExpiresAt: now.AddDate(0, 1, 0),
	}).Error)

	bookings := []struct {
		id      string
		account string
		hotel   int64
		price   float64
		disc    string
		amount  float64
	}{
		{"bk-1", "acc-1", 1, 500000, "DISC1", 50000},
		{"bk-2", "acc-1", 2, 800000, "DISC1", 80000},
		{"bk-3", "acc-2", 1, 300000, "DISC2", 50000},
		{"bk-4", "acc-2", 1, 200000, "", 0},
	}
	for _, b := range bookings {
		require.NoError(t, db.Create(&models.Booking{
			BookingID: b.id, AccountID: b.account, HotelID: b.hotel,
			CheckInDate: now, CheckOutDate: now.AddDate(0, 0, 2),
			TotalPrice: b.price, Status: "CONFIRMED",
		}).Error)
		if b.disc != "" {
			require.NoError(t, db.Create(&models.BookingDiscount{
				ID: tool.GenerateUUIDV7(), BookingID: b.id,
				DiscountID: b.disc, DiscountAmount: b.amount,
			}).Error)
		}
	}
}

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		period   string
		start    string
		end      string
		wantFrom time.Time
		wantTo   time.Time
		wantErr  bool
	}{
		{"default is last 7 days", "", "", "", now.AddDate(0, 0, -7), now, false},
		{"month starts on the 1st", PeriodMonth, "", "", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), now, false},
		{"quarter starts in july", PeriodQuarter, "", "", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), now, false},
		{"year starts in january", PeriodYear, "", "", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), now, false},
		{"custom end is inclusive", PeriodCustom, "2026-08-01", "2026-08-10",
			time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC), false},
		{"custom needs both bounds", PeriodCustom, "2026-08-01", "", time.Time{}, time.Time{}, true},
		{"custom inverted range", PeriodCustom, "2026-08-10", "2026-08-01", time.Time{}, time.Time{}, true},
		{"unknown selector", "decade", "", "", time.Time{}, time.Time{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := resolvePeriod(tc.period, tc.start, tc.end, now)
			if tc.wantErr {
				var de *discount.Error
				require.ErrorAs(t, err, &de)
				require.Equal(t, discount.ErrKindValidation, de.Kind)
				return
			}
			require.NoError(t, err)
			require.True(t, p.From.Equal(tc.wantFrom), "from: got %v want %v", p.From, tc.wantFrom)
			require.True(t, p.To.Equal(tc.wantTo), "to: got %v want %v", p.To, tc.wantTo)
		})
	}
}

func TestPercentage_ZeroDenominator(t *testing.T) {
	require.Zero(t, percentage(5, 0))
	require.Equal(t, 50.0, percentage(2, 4))
}

func TestDashboard_CountersAndUsageRate(t *testing.T) {
	svc, db := newTestService(t)
	seedWorld(t, db)

	out, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), out.TotalCodes)
	require.Equal(t, int64(1), out.ActiveCodes)
	require.Equal(t, int64(1), out.DisabledCodes)
	require.Equal(t, int64(1), out.ExpiringSoon)
	require.Equal(t, int64(3), out.TotalRedemptions)
	require.Equal(t, 180000.0, out.TotalDiscountAmount)
	require.Equal(t, 75.0, out.UsageRate)
}

func TestDashboard_SweepRunsFirst(t *testing.T) {
	svc, db := newTestService(t)
	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC9", Code: "STALE",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusActive,
		ExpiresAt:     time.Now().AddDate(0, 0, -1),
	}).Error)

	out, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Zero(t, out.ActiveCodes)
	require.Equal(t, int64(1), out.ExpiredCodes)
}

func TestDashboard_ExpiringSoonHonorsConfiguredWindow(t *testing.T) {
	_, db := newTestService(t)
	log := zap.NewNop().Sugar()
	cfg := &config.Config{ExpiringSoonDays: 3}
	svc := NewService(db, log, cfg, discount.NewService(db, log, cfg))

	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC1", Code: "SOON",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusActive,
		ExpiresAt:     time.Now().AddDate(0, 0, 2),
	}).Error)
	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC2", Code: "NOTYET",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusActive,
		ExpiresAt:     time.Now().AddDate(0, 0, 5),
	}).Error)

	out, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), out.ExpiringSoon)
}

func TestAnalytics_ZeroBookingsYieldsZeroUsageRate(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.Analytics(context.Background(), &AnalyticsRequest{})
	require.NoError(t, err)
	require.Zero(t, out.TotalBookings)
	require.Zero(t, out.TotalRedemptions)
	require.Zero(t, out.UsageRate)
	require.Empty(t, out.Distribution)
	require.Empty(t, out.Series)
}

func TestAnalytics_TotalsDistributionAndSeries(t *testing.T) {
	svc, db := newTestService(t)
	seedWorld(t, db)

	out, err := svc.Analytics(context.Background(), &AnalyticsRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(4), out.TotalBookings)
	require.Equal(t, int64(3), out.TotalRedemptions)
	require.Equal(t, 180000.0, out.TotalDiscountAmount)
	require.Equal(t, 75.0, out.UsageRate)

	require.Len(t, out.TopByUsage, 2)
	require.Equal(t, "PCT10", out.TopByUsage[0].Name)
	require.Equal(t, "PCT10", out.TopByRevenue[0].Name)

	// PCT10 decodes PERCENT (2 uses), FIX50 decodes FIXED (1 use)
	require.Len(t, out.Distribution, 2)
	require.Equal(t, types.DiscountKindPercent, out.Distribution[0].Kind)
	require.Equal(t, int64(2), out.Distribution[0].Count)
	require.InDelta(t, 66.67, out.Distribution[0].Share, 0.01)
	require.Equal(t, types.DiscountKindFixed, out.Distribution[1].Kind)
	require.Equal(t, int64(1), out.Distribution[1].Count)

	// all redemptions landed today, so the series is a single bucket
	require.Len(t, out.Series, 1)
	require.Equal(t, int64(3), out.Series[0].Redemptions)
	require.Equal(t, 180000.0, out.Series[0].Amount)
}

func TestAnalytics_InvalidPeriodRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Analytics(context.Background(), &AnalyticsRequest{Period: "decade"})
	var de *discount.Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, discount.ErrKindValidation, de.Kind)
}

func TestReport_GroupByCode(t *testing.T) {
	svc, db := newTestService(t)
	seedWorld(t, db)

	rows, err := svc.Report(context.Background(), &ReportRequest{GroupBy: GroupByCode})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "PCT10", rows[0].Name)
	require.Equal(t, int64(2), rows[0].Redemptions)
	require.Equal(t, 130000.0, rows[0].TotalDiscount)
	require.Equal(t, 1300000.0, rows[0].TotalBooking)
}

func TestReport_GroupByCustomerAndHotel(t *testing.T) {
	svc, db := newTestService(t)
	seedWorld(t, db)
	ctx := context.Background()

	rows, err := svc.Report(ctx, &ReportRequest{GroupBy: "CUSTOMER"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Trần Thị Mai", rows[0].Name)

	rows, err = svc.Report(ctx, &ReportRequest{GroupBy: GroupByHotel})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Khách sạn Hoa Sen", rows[0].Name)
	require.Equal(t, int64(2), rows[0].Redemptions)
}

func TestReport_HotelFilter(t *testing.T) {
	svc, db := newTestService(t)
	seedWorld(t, db)

	rows, err := svc.Report(context.Background(), &ReportRequest{
		GroupBy: GroupByCode,
		Filters: []*types.CommonFilter{{
			Field:    "hotelId",
			Operator: types.CommonFilterOperatorEq,
			Values:   []any{int64(2)},
		}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "PCT10", rows[0].Name)
	require.Equal(t, int64(1), rows[0].Redemptions)
}

func TestReport_UnknownGroupingRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Report(context.Background(), &ReportRequest{GroupBy: "city"})
	var de *discount.Error
	require.ErrorAs(t, err, &de)
}

func TestExportCSV_BOMAndHeaders(t *testing.T) {
	svc, db := newTestService(t)
	seedWorld(t, db)

	body, filename, err := svc.ExportCSV(context.Background(), &ReportRequest{GroupBy: GroupByCode})
	require.NoError(t, err)
	require.Equal(t, utf8BOM, body[:3])
	require.Contains(t, string(body), "Mã giảm giá")
	require.Contains(t, string(body), "PCT10")
	require.Contains(t, filename, "discount-report-code-")
	require.Contains(t, filename, ".csv")
}
