package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tripnest/backoffice/internal/app/service/discount"
	"github.com/tripnest/backoffice/internal/models"
	"github.com/tripnest/backoffice/pkg/config"
	"github.com/tripnest/backoffice/pkg/types"
)

// StatusSweeper runs the discount expiry sweep before a status-dependent
// read. Implemented by the discount service.
type StatusSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Service computes read-only aggregations over the booking/discount join.
type Service struct {
	db      *gorm.DB
	log     *zap.SugaredLogger
	cfg     *config.Config
	sweeper StatusSweeper
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, cfg *config.Config, svc *discount.Service) *Service {
	return &Service{db: db, log: log, cfg: cfg, sweeper: svc}
}

// Period selectors accepted by analytics and reports.
const (
	Period7Days   = "7days"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
	PeriodCustom  = "custom"
)

const (
	msgPeriodInvalid      = "Khoảng thời gian không hợp lệ"
	msgCustomPeriodNeeded = "Khoảng tùy chỉnh cần cả ngày bắt đầu và ngày kết thúc"
	msgGroupByInvalid     = "Tiêu chí nhóm không hợp lệ"
)

type PeriodRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// resolvePeriod turns a period selector into a half-open [from, to) range.
func resolvePeriod(period, startDate, endDate string, now time.Time) (PeriodRange, error) {
	switch period {
	case Period7Days, "":
		return PeriodRange{From: now.AddDate(0, 0, -7), To: now}, nil
	case PeriodMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return PeriodRange{From: from, To: now}, nil
	case PeriodQuarter:
		quarterStart := time.Month((int(now.Month())-1)/3*3 + 1)
		from := time.Date(now.Year(), quarterStart, 1, 0, 0, 0, 0, now.Location())
		return PeriodRange{From: from, To: now}, nil
	case PeriodYear:
		from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return PeriodRange{From: from, To: now}, nil
	case PeriodCustom:
		if startDate == "" || endDate == "" {
			return PeriodRange{}, &discount.Error{Kind: discount.ErrKindValidation, Message: msgCustomPeriodNeeded}
		}
		from, err1 := time.Parse(time.DateOnly, startDate)
		to, err2 := time.Parse(time.DateOnly, endDate)
		if err1 != nil || err2 != nil || !to.After(from) {
			return PeriodRange{}, &discount.Error{Kind: discount.ErrKindValidation, Message: msgPeriodInvalid}
		}
		// end date is inclusive in the request, exclusive in the range
		return PeriodRange{From: from, To: to.AddDate(0, 0, 1)}, nil
	default:
		return PeriodRange{}, &discount.Error{Kind: discount.ErrKindValidation, Message: msgPeriodInvalid}
	}
}

// filterColumns whitelists the report filter fields; everything else is
// silently dropped before the filter reaches SQL.
var filterColumns = map[string]string{
	"hotelId":   "b.hotel_id",
	"accountId": "b.account_id",
}

type filtersWhere struct{ filters []*types.CommonFilter }

func (w filtersWhere) Build(builder clause.Builder) {
	wrote := false
	for _, f := range w.filters {
		column, ok := filterColumns[f.Field]
		if !ok {
			continue
		}
		if wrote {
			builder.WriteString(" AND ")
		}
		rewritten := *f
		rewritten.Field = column
		rewritten.Build(builder)
		wrote = true
	}
	if !wrote {
		builder.WriteString("1=1")
	}
}

type AnalyticsRequest struct {
	Period    string                `json:"period"`
	StartDate string                `json:"startDate"`
	EndDate   string                `json:"endDate"`
	Filters   []*types.CommonFilter `json:"filters"`
}

type SeriesPoint struct {
	Date        string  `json:"date"`
	Redemptions int64   `json:"redemptions"`
	Amount      float64 `json:"amount"`
}

type TypeDistribution struct {
	Kind   types.DiscountKind `json:"kind"`
	Count  int64              `json:"count"`
	Amount float64            `json:"amount"`
	Share  float64            `json:"share"`
}

type ReportRow struct {
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	Redemptions   int64   `json:"redemptions"`
	TotalDiscount float64 `json:"totalDiscount"`
	TotalBooking  float64 `json:"totalBooking"`
}

type Analytics struct {
	Period              PeriodRange        `json:"period"`
	TotalBookings       int64              `json:"totalBookings"`
	TotalRedemptions    int64              `json:"totalRedemptions"`
	TotalDiscountAmount float64            `json:"totalDiscountAmount"`
	UsageRate           float64            `json:"usageRate"`
	TopByUsage          []ReportRow        `json:"topByUsage"`
	TopByRevenue        []ReportRow        `json:"topByRevenue"`
	Distribution        []TypeDistribution `json:"distribution"`
	Series              []SeriesPoint      `json:"series"`
}

// percentage returns part/whole as a percentage, 0 when the denominator is
// zero.
func percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func (s *Service) bookingDiscountsInPeriod(ctx context.Context, p PeriodRange, filters []*types.CommonFilter) *gorm.DB {
	return s.db.WithContext(ctx).Table("booking_discounts AS bd").
		Joins("JOIN bookings b ON b.booking_id = bd.booking_id").
		Where("bd.created_at >= ? AND bd.created_at < ?", p.From, p.To).
		Where(clause.Where{Exprs: []clause.Expression{filtersWhere{filters: filters}}})
}

// Analytics computes the period-scoped dashboard aggregates.
func (s *Service) Analytics(ctx context.Context, req *AnalyticsRequest) (*Analytics, error) {
	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		return nil, err
	}
	p, err := resolvePeriod(req.Period, req.StartDate, req.EndDate, time.Now())
	if err != nil {
		return nil, err
	}

	out := &Analytics{Period: p}

	if err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("created_at >= ? AND created_at < ?", p.From, p.To).
		Count(&out.TotalBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	var totals struct {
		Redemptions int64
		Amount      float64
	}
	if err := s.bookingDiscountsInPeriod(ctx, p, req.Filters).
		Select("COUNT(*) AS redemptions, COALESCE(SUM(bd.discount_amount), 0) AS amount").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate redemptions: %w", err)
	}
	out.TotalRedemptions = totals.Redemptions
	out.TotalDiscountAmount = totals.Amount
	out.UsageRate = percentage(float64(totals.Redemptions), float64(out.TotalBookings))

	out.TopByUsage, err = s.groupedRows(ctx, p, req.Filters, GroupByCode, "redemptions DESC", 5)
	if err != nil {
		return nil, err
	}
	out.TopByRevenue, err = s.groupedRows(ctx, p, req.Filters, GroupByCode, "total_discount DESC", 5)
	if err != nil {
		return nil, err
	}

	out.Distribution, err = s.typeDistribution(ctx, p, req.Filters)
	if err != nil {
		return nil, err
	}

	out.Series, err = s.dailySeries(ctx, p, req.Filters)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// typeDistribution splits the period's redemptions by the decoded logical
// discount type. The stored columns are never inspected here; each code is
// decoded through the encoding layer.
func (s *Service) typeDistribution(ctx context.Context, p PeriodRange, filters []*types.CommonFilter) ([]TypeDistribution, error) {
	type codeAgg struct {
		DiscountID string
		Count      int64
		Amount     float64
	}
	var perCode []codeAgg
	err := s.bookingDiscountsInPeriod(ctx, p, filters).
		Select("bd.discount_id, COUNT(*) AS count, COALESCE(SUM(bd.discount_amount), 0) AS amount").
		Group("bd.discount_id").
		Scan(&perCode).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group by code: %w", err)
	}
	if len(perCode) == 0 {
		return []TypeDistribution{}, nil
	}

	ids := lo.Map(perCode, func(r codeAgg, _ int) string { return r.DiscountID })
	var codes []*models.DiscountCode
	if err := s.db.WithContext(ctx).Where("discount_id IN ?", ids).Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to load discount codes: %w", err)
	}
	kindByID := make(map[string]types.DiscountKind, len(codes))
	for _, c := range codes {
		kindByID[c.DiscountID] = discount.Decode(c).Kind
	}

	agg := map[types.DiscountKind]*TypeDistribution{}
	var totalCount int64
	for _, r := range perCode {
		kind, ok := kindByID[r.DiscountID]
		if !ok {
			// code hard-deleted after redemption rows were written
			continue
		}
		d, ok := agg[kind]
		if !ok {
			d = &TypeDistribution{Kind: kind}
			agg[kind] = d
		}
		d.Count += r.Count
		d.Amount += r.Amount
		totalCount += r.Count
	}

	out := make([]TypeDistribution, 0, len(agg))
	for _, kind := range []types.DiscountKind{types.DiscountKindPercent, types.DiscountKindFixed} {
		if d, ok := agg[kind]; ok {
			d.Share = percentage(float64(d.Count), float64(totalCount))
			out = append(out, *d)
		}
	}
	return out, nil
}

// dayBucket returns the SQL expression that truncates bd.created_at to its
// calendar day. sqlite is only ever the test dialect.
func (s *Service) dayBucket() string {
	if s.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m-%d', bd.created_at)"
	}
	return "TO_CHAR(bd.created_at, 'YYYY-MM-DD')"
}

// dailySeries buckets redemptions per day over the period.
func (s *Service) dailySeries(ctx context.Context, p PeriodRange, filters []*types.CommonFilter) ([]SeriesPoint, error) {
	bucket := s.dayBucket()
	var points []SeriesPoint
	err := s.bookingDiscountsInPeriod(ctx, p, filters).
		Select(bucket + " AS date, COUNT(*) AS redemptions, COALESCE(SUM(bd.discount_amount), 0) AS amount").
		Group(bucket).
		Order("date").
		Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build daily series: %w", err)
	}
	return points, nil
}

// Grouping dimensions for reports and export.
const (
	GroupByCode     = "code"
	GroupByCustomer = "customer"
	GroupByHotel    = "hotel"
)

type ReportRequest struct {
	GroupBy   string                `json:"groupBy"`
	Period    string                `json:"period"`
	StartDate string                `json:"startDate"`
	EndDate   string                `json:"endDate"`
	Filters   []*types.CommonFilter `json:"filters"`
}

// Report aggregates redemptions grouped by code, customer or hotel.
func (s *Service) Report(ctx context.Context, req *ReportRequest) ([]ReportRow, error) {
	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		return nil, err
	}
	p, err := resolvePeriod(req.Period, req.StartDate, req.EndDate, time.Now())
	if err != nil {
		return nil, err
	}
	groupBy := strings.ToLower(req.GroupBy)
	if groupBy == "" {
		groupBy = GroupByCode
	}
	switch groupBy {
	case GroupByCode, GroupByCustomer, GroupByHotel:
	default:
		return nil, &discount.Error{Kind: discount.ErrKindValidation, Message: msgGroupByInvalid}
	}
	return s.groupedRows(ctx, p, req.Filters, groupBy, "redemptions DESC", 0)
}

func (s *Service) groupedRows(ctx context.Context, p PeriodRange, filters []*types.CommonFilter, groupBy, order string, limit int) ([]ReportRow, error) {
	q := s.bookingDiscountsInPeriod(ctx, p, filters)

	switch groupBy {
	case GroupByCode:
		q = q.Joins("JOIN discount_codes d ON d.discount_id = bd.discount_id").
			Select("d.discount_id AS key, d.code AS name, COUNT(*) AS redemptions, COALESCE(SUM(bd.discount_amount), 0) AS total_discount, COALESCE(SUM(b.total_price), 0) AS total_booking").
			Group("d.discount_id, d.code")
	case GroupByCustomer:
		q = q.Joins("JOIN accounts a ON a.account_id = b.account_id").
			Select("a.account_id AS key, a.full_name AS name, COUNT(*) AS redemptions, COALESCE(SUM(bd.discount_amount), 0) AS total_discount, COALESCE(SUM(b.total_price), 0) AS total_booking").
			Group("a.account_id, a.full_name")
	case GroupByHotel:
		q = q.Joins("JOIN hotels h ON h.hotel_id = b.hotel_id").
			Select("CAST(h.hotel_id AS VARCHAR) AS key, h.name AS name, COUNT(*) AS redemptions, COALESCE(SUM(bd.discount_amount), 0) AS total_discount, COALESCE(SUM(b.total_price), 0) AS total_booking").
			Group("h.hotel_id, h.name")
	}

	q = q.Order(order)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []ReportRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to build %s report: %w", groupBy, err)
	}
	return rows, nil
}

// DashboardSummary is the landing-page counter set.
type DashboardSummary struct {
	TotalCodes          int64   `json:"totalCodes"`
	ActiveCodes         int64   `json:"activeCodes"`
	DisabledCodes       int64   `json:"disabledCodes"`
	ExpiredCodes        int64   `json:"expiredCodes"`
	ExpiringSoon        int64   `json:"expiringSoon"`
	TotalRedemptions    int64   `json:"totalRedemptions"`
	TotalDiscountAmount float64 `json:"totalDiscountAmount"`
	UsageRate           float64 `json:"usageRate"`
}

// Dashboard computes all-time counters. The sweep runs first so the status
// split reflects the current instant.
func (s *Service) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		return nil, err
	}

	out := &DashboardSummary{}
	db := s.db.WithContext(ctx)

	var perStatus []struct {
		Status types.DiscountStatus
		Count  int64
	}
	if err := db.Model(&models.DiscountCode{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&perStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to count codes by status: %w", err)
	}
	for _, r := range perStatus {
		out.TotalCodes += r.Count
		switch r.Status {
		case types.DiscountStatusActive:
			out.ActiveCodes = r.Count
		case types.DiscountStatusDisabled:
			out.DisabledCodes = r.Count
		case types.DiscountStatusExpired:
			out.ExpiredCodes = r.Count
		}
	}

	days := s.cfg.ExpiringSoonDays
	if days <= 0 {
		days = 7
	}
	now := time.Now()
	if err := db.Model(&models.DiscountCode{}).
		Where("status = ? AND expires_at BETWEEN ? AND ?",
			types.DiscountStatusActive, now, now.AddDate(0, 0, days)).
		Count(&out.ExpiringSoon).Error; err != nil {
		return nil, fmt.Errorf("failed to count expiring codes: %w", err)
	}

	var totals struct {
		Redemptions int64
		Amount      float64
	}
	if err := db.Model(&models.BookingDiscount{}).
		Select("COUNT(*) AS redemptions, COALESCE(SUM(discount_amount), 0) AS amount").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate redemptions: %w", err)
	}
	out.TotalRedemptions = totals.Redemptions
	out.TotalDiscountAmount = totals.Amount

	var totalBookings int64
	if err := db.Model(&models.Booking{}).Count(&totalBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	out.UsageRate = percentage(float64(totals.Redemptions), float64(totalBookings))

	return out, nil
}
