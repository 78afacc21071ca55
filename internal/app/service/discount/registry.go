package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tripnest/backoffice/internal/models"
	"github.com/tripnest/backoffice/pkg/config"
	"github.com/tripnest/backoffice/pkg/logctx"
	"github.com/tripnest/backoffice/pkg/tool"
	"github.com/tripnest/backoffice/pkg/types"
)

// Service owns the discount-code registry and lifecycle.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	cfg *config.Config
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, cfg *config.Config) *Service {
	return &Service{db: db, log: log, cfg: cfg}
}

// NormalizeCode upper-cases and trims a human-entered code. Uniqueness is
// enforced on the normalized form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountItem is the decoded, client-facing view of a discount code. The
// dual-column percentage/fixed representation never appears here.
type DiscountItem struct {
	DiscountID           string               `json:"discountId"`
	Code                 string               `json:"code"`
	DiscountType         types.DiscountKind   `json:"discountType"`
	DiscountValue        float64              `json:"discountValue"`
	MaxDiscount          *float64             `json:"maxDiscount,omitempty"`
	MinPurchase          *float64             `json:"minPurchase,omitempty"`
	UsageLimit           *int                 `json:"usageLimit,omitempty"`
	UsageCount           int                  `json:"usageCount"`
	PerUserLimit         *int                 `json:"perUserLimit,omitempty"`
	MinNights            *int                 `json:"minNights,omitempty"`
	MaxNights            *int                 `json:"maxNights,omitempty"`
	ApplicableHotels     []int64              `json:"applicableHotels,omitempty"`
	ApplicableCategories []int64              `json:"applicableCategories,omitempty"`
	ApplicableStartDate  *string              `json:"applicableStartDate,omitempty"`
	ApplicableEndDate    *string              `json:"applicableEndDate,omitempty"`
	Status               types.DiscountStatus `json:"status"`
	StartDate            time.Time            `json:"startDate"`
	ExpiresAt            time.Time            `json:"expiresAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

func toItem(row *models.DiscountCode) *DiscountItem {
	logical := Decode(row)
	c := row.GetConditions()
	return &DiscountItem{
		DiscountID:           row.DiscountID,
		Code:                 row.Code,
		DiscountType:         logical.Kind,
		DiscountValue:        logical.Value,
		MaxDiscount:          logical.Cap,
		MinPurchase:          c.MinPurchase,
		UsageLimit:           row.UsageLimit,
		UsageCount:           row.UsageCount,
		PerUserLimit:         c.PerUserLimit,
		MinNights:            row.MinNights,
		MaxNights:            row.MaxNights,
		ApplicableHotels:     row.ApplicableHotels,
		ApplicableCategories: c.ApplicableCategories,
		ApplicableStartDate:  c.ApplicableStartDate,
		ApplicableEndDate:    c.ApplicableEndDate,
		Status:               row.Status,
		StartDate:            row.CreatedAt,
		ExpiresAt:            row.ExpiresAt,
		UpdatedAt:            row.UpdatedAt,
	}
}

func (s *Service) loadByID(tx *gorm.DB, id string) (*models.DiscountCode, error) {
	var row models.DiscountCode
	if err := tx.Where("discount_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load discount code: %w", err)
	}
	return &row, nil
}

func (s *Service) codeTaken(tx *gorm.DB, normalized, excludeID string) (bool, error) {
	q := tx.Model(&models.DiscountCode{}).Where("UPPER(code) = ?", normalized)
	if excludeID != "" {
		q = q.Where("discount_id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check code uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create validates the payload, enforces code uniqueness and persists a new
// discount code. The provided start date becomes the row's created_at since
// the schema has no separate start-date column.
func (s *Service) Create(ctx context.Context, req *CreateDiscountRequest) (*DiscountItem, error) {
	if verr := ValidateCreate(req); verr != nil {
		return nil, verr
	}

	start, _ := time.Parse(time.DateOnly, req.StartDate)
	expiry, _ := time.Parse(time.DateOnly, req.ExpiryDate)

	row := &models.DiscountCode{
		DiscountID: tool.GenerateDiscountID(),
		Code:       NormalizeCode(req.Code),
		UsageCount: 0,
		Status:     types.DiscountStatusActive,
		ExpiresAt:  expiry,
		CreatedAt:  start,
	}
	if req.Status != "" {
		row.Status = types.NormalizeStatus(req.Status)
	}
	applyLogical(row, types.LogicalDiscount{Kind: req.DiscountType, Value: req.DiscountValue, Cap: req.MaxDiscount})
	patch := ConditionsPatch{
		MinPurchase:  req.MinPurchase,
		PerUserLimit: req.PerUserLimit,
		WindowStart:  req.ApplicableStartDate,
		WindowEnd:    req.ApplicableEndDate,
	}
	if len(req.ApplicableCategories) > 0 {
		patch.ApplicableCategories = &req.ApplicableCategories
	}
	mergeConditions(row, patch)
	if len(req.ApplicableHotels) > 0 {
		row.ApplicableHotels = req.ApplicableHotels
	}
	row.MinNights = req.MinNights
	row.MaxNights = req.MaxNights
	row.UsageLimit = req.UsageLimit

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := s.codeTaken(tx, row.Code, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateCode
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("discount code created", "discount_id", row.DiscountID, "code", row.Code)
	return toItem(row), nil
}

// Update applies a partial update. The conditions record is merged, never
// replaced; percentage_off is only re-derived when the discount type, value
// or cap changes.
func (s *Service) Update(ctx context.Context, id string, req *UpdateDiscountRequest) (*DiscountItem, error) {
	if verr := ValidateUpdate(req); verr != nil {
		return nil, verr
	}

	var row *models.DiscountCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = s.loadByID(tx, id)
		if err != nil {
			return err
		}

		if req.Code != nil {
			normalized := NormalizeCode(*req.Code)
			taken, err := s.codeTaken(tx, normalized, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateCode
			}
			row.Code = normalized
		}

		if req.DiscountType != nil || req.DiscountValue != nil || req.MaxDiscount != nil {
			logical := Decode(row)
			if req.DiscountType != nil {
				logical.Kind = *req.DiscountType
			}
			if req.DiscountValue != nil {
				logical.Value = *req.DiscountValue
			}
			if req.MaxDiscount != nil {
				if *req.MaxDiscount > 0 {
					logical.Cap = req.MaxDiscount
				} else {
					logical.Cap = nil
				}
			}
			if logical.Kind == types.DiscountKindFixed {
				logical.Cap = nil
			}
			if verr := validateLogical(logical.Kind, logical.Value, logical.Cap); verr != nil {
				return verr
			}
			applyLogical(row, logical)
		}

		if req.ExpiryDate != nil {
			expiry, verr := parseDate(*req.ExpiryDate)
			if verr != nil {
				return verr
			}
			row.ExpiresAt = expiry
		}

		if req.ApplicableStartDate != nil && req.ApplicableEndDate != nil &&
			*req.ApplicableStartDate != "" && *req.ApplicableEndDate != "" {
			ws, we, verr := validateWindow(req.ApplicableStartDate, req.ApplicableEndDate)
			if verr != nil {
				return verr
			}
			lower := row.CreatedAt.Truncate(24 * time.Hour)
			if verr := validateWindowWithin(ws, we, lower, row.ExpiresAt); verr != nil {
				return verr
			}
		}

		mergeConditions(row, ConditionsPatch{
			MinPurchase:          req.MinPurchase,
			PerUserLimit:         req.PerUserLimit,
			ApplicableCategories: req.ApplicableCategories,
			WindowStart:          req.ApplicableStartDate,
			WindowEnd:            req.ApplicableEndDate,
		})
		if req.ApplicableHotels != nil {
			if len(*req.ApplicableHotels) > 0 {
				row.ApplicableHotels = *req.ApplicableHotels
			} else {
				row.ApplicableHotels = nil
			}
		}
		if req.MinNights != nil {
			row.MinNights = req.MinNights
		}
		if req.MaxNights != nil {
			row.MaxNights = req.MaxNights
		}
		if req.UsageLimit != nil {
			row.UsageLimit = req.UsageLimit
		}
		if req.Status != nil {
			// direct status write bypasses toggle semantics
			row.Status = types.NormalizeStatus(*req.Status)
		}

		return tx.Save(row).Error
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("discount code updated", "discount_id", id)
	return toItem(row), nil
}

// DeleteResult reports which delete branch was taken.
type DeleteResult struct {
	DiscountID  string `json:"discountId"`
	HardDeleted bool   `json:"hardDeleted"`
	Message     string `json:"message"`
}

// Delete removes a code that was never redeemed; a code with realized
// usages is soft-deleted (status forced to DISABLED, row retained) to keep
// the booking_discounts history joinable.
func (s *Service) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	result := &DeleteResult{DiscountID: id}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.loadByID(tx, id)
		if err != nil {
			return err
		}
		var usages int64
		if err := tx.Model(&models.BookingDiscount{}).Where("discount_id = ?", id).Count(&usages).Error; err != nil {
			return fmt.Errorf("failed to count usages: %w", err)
		}
		if usages == 0 {
			result.HardDeleted = true
			result.Message = "Đã xóa mã giảm giá"
			return tx.Delete(row).Error
		}
		result.HardDeleted = false
		result.Message = "Mã giảm giá đã có lượt sử dụng nên được vô hiệu hóa thay vì xóa"
		row.Status = types.DiscountStatusDisabled
		return tx.Save(row).Error
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("discount code deleted", "discount_id", id, "hard", result.HardDeleted)
	return result, nil
}

// Get runs the expiry sweep and returns the decoded code.
func (s *Service) Get(ctx context.Context, id string) (*DiscountItem, error) {
	var row *models.DiscountCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sweepExpiredTx(tx, time.Now()); err != nil {
			return err
		}
		var err error
		row, err = s.loadByID(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toItem(row), nil
}

// Expiry filter values accepted by List.
const (
	ExpiryFilterExpiringSoon = "expiring_soon"
	ExpiryFilterExpired      = "expired"
)

type ListDiscountsRequest struct {
	Search       string
	Status       types.DiscountStatus
	ExpiryFilter string
	SortBy       string
	SortOrder    string
	Page         int
	Limit        int
}

type ListDiscountsResponse struct {
	Items []*DiscountItem
	Total int64
	Page  int
	Limit int
}

// sortableColumns whitelists sort targets; anything else falls back to
// created_at.
var sortableColumns = map[string]string{
	"code":          "code",
	"discountId":    "discount_id",
	"discount_id":   "discount_id",
	"status":        "status",
	"expiresAt":     "expires_at",
	"expires_at":    "expires_at",
	"startDate":     "created_at",
	"createdAt":     "created_at",
	"created_at":    "created_at",
	"updatedAt":     "updated_at",
	"updated_at":    "updated_at",
	"usageCount":    "usage_count",
	"usage_count":   "usage_count",
	"percentageOff": "percentage_off",
}

// List runs the expiry sweep, then returns a filtered, sorted page.
func (s *Service) List(ctx context.Context, req *ListDiscountsRequest) (*ListDiscountsResponse, error) {
	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Page <= 0 {
		req.Page = 1
	}

	now := time.Now()
	var rows []*models.DiscountCode
	var total int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sweepExpiredTx(tx, now); err != nil {
			return err
		}

		q := tx.Model(&models.DiscountCode{})
		if req.Search != "" {
			needle := "%" + NormalizeCode(req.Search) + "%"
			q = q.Where("code LIKE ? OR discount_id LIKE ?", needle, needle)
		}
		if req.Status != "" {
			q = q.Where("status = ?", types.NormalizeStatus(req.Status))
		}
		switch req.ExpiryFilter {
		case ExpiryFilterExpired:
			q = q.Where("status = ?", types.DiscountStatusExpired)
		case ExpiryFilterExpiringSoon:
			days := s.cfg.ExpiringSoonDays
			if days <= 0 {
				days = 7
			}
			q = q.Where("status = ? AND expires_at BETWEEN ? AND ?",
				types.DiscountStatusActive, now, now.AddDate(0, 0, days))
		}

		if err := q.Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count discount codes: %w", err)
		}

		column, ok := sortableColumns[req.SortBy]
		if !ok {
			column = "created_at"
		}
		direction := "DESC"
		if strings.EqualFold(req.SortOrder, "asc") {
			direction = "ASC"
		}

		return q.Order(column + " " + direction).
			Offset((req.Page - 1) * req.Limit).
			Limit(req.Limit).
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	items := lo.Map(rows, func(r *models.DiscountCode, _ int) *DiscountItem { return toItem(r) })
	return &ListDiscountsResponse{Items: items, Total: total, Page: req.Page, Limit: req.Limit}, nil
}
