package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/tripnest/backoffice/pkg/types"
)

// DiscountConditions is the structured form of the conditions column.
// Every field is optional; an absent field means "not constrained".
// Updates merge into the existing record instead of replacing it, and an
// explicitly cleared field is removed, never stored as null.
type DiscountConditions struct {
	// FixedAmount is present iff the code is logically a FIXED discount.
	FixedAmount          *float64 `json:"fixed_amount,omitempty"`
	MinPurchase          *float64 `json:"min_purchase,omitempty"`
	PerUserLimit         *int     `json:"per_user_limit,omitempty"`
	ApplicableCategories []int64  `json:"applicable_categories,omitempty"`
	ApplicableStartDate  *string  `json:"applicable_start_date,omitempty"`
	ApplicableEndDate    *string  `json:"applicable_end_date,omitempty"`
}

// DiscountCode is the persisted promotional code entity.
//
// The logical discount type is never stored: a row with percentage_off > 0
// is a PERCENT discount, anything else is FIXED with its value carried in
// conditions.fixed_amount. That mapping lives in the discount service's
// encoding layer and must not be re-derived anywhere else.
type DiscountCode struct {
	DiscountID    string   `gorm:"column:discount_id;type:varchar(64);primary_key" json:"discount_id"`
	Code          string   `gorm:"column:code;type:varchar(64);not null;uniqueIndex" json:"code"`
	PercentageOff *float64 `gorm:"column:percentage_off;type:numeric;default:null" json:"percentage_off"`
	MaxDiscount   *float64 `gorm:"column:max_discount;type:numeric;default:null" json:"max_discount"`

	Conditions datatypes.JSONType[*DiscountConditions] `gorm:"column:conditions;type:jsonb;default:'{}'" json:"conditions"`

	// ApplicableHotels empty or null means every hotel is eligible.
	ApplicableHotels datatypes.JSONSlice[int64] `gorm:"column:applicable_hotels;type:jsonb;default:null" json:"applicable_hotels"`

	MinNights *int `gorm:"column:min_nights;default:null" json:"min_nights"`
	MaxNights *int `gorm:"column:max_nights;default:null" json:"max_nights"`

	UsageLimit *int `gorm:"column:usage_limit;default:null" json:"usage_limit"`
	// UsageCount is maintained by the booking subsystem and read-only here.
	UsageCount int `gorm:"column:usage_count;not null;default:0" json:"usage_count"`

	Status    types.DiscountStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	ExpiresAt time.Time            `gorm:"column:expires_at;not null" json:"expires_at"`

	// CreatedAt doubles as the start date; there is no distinct column.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DiscountCode) TableName() string {
	return "discount_codes"
}

// GetConditions never returns nil.
func (d *DiscountCode) GetConditions() *DiscountConditions {
	if c := d.Conditions.Data(); c != nil {
		return c
	}
	return &DiscountConditions{}
}

// Expired reports whether the row's expiry instant has passed.
func (d *DiscountCode) Expired(now time.Time) bool {
	return d.ExpiresAt.Before(now)
}
