package discount

import (
	"gorm.io/datatypes"

	"github.com/tripnest/backoffice/internal/models"
	"github.com/tripnest/backoffice/pkg/types"
)

// The schema has a single native discount column (percentage_off); a FIXED
// discount stores its amount in conditions.fixed_amount instead. Everything
// above this file speaks types.LogicalDiscount only.

// Decode derives the logical discount from a stored row.
//
// A row with a null or zero percentage_off and no fixed_amount decodes to
// FIXED with value 0; validation guarantees that state is unreachable
// through this service, but legacy rows may carry it.
func Decode(row *models.DiscountCode) types.LogicalDiscount {
	if row.PercentageOff != nil && *row.PercentageOff > 0 {
		return types.LogicalDiscount{
			Kind:  types.DiscountKindPercent,
			Value: *row.PercentageOff,
			Cap:   row.MaxDiscount,
		}
	}
	var value float64
	if c := row.Conditions.Data(); c != nil && c.FixedAmount != nil {
		value = *c.FixedAmount
	}
	return types.LogicalDiscount{Kind: types.DiscountKindFixed, Value: value}
}

// applyLogical writes the logical discount into the row's dual-column
// representation. Encoding PERCENT removes any stale fixed_amount key;
// encoding FIXED nulls out the percentage columns.
func applyLogical(row *models.DiscountCode, d types.LogicalDiscount) {
	c := row.GetConditions()
	switch d.Kind {
	case types.DiscountKindPercent:
		v := d.Value
		row.PercentageOff = &v
		row.MaxDiscount = d.Cap
		c.FixedAmount = nil
	case types.DiscountKindFixed:
		v := d.Value
		row.PercentageOff = nil
		row.MaxDiscount = nil
		c.FixedAmount = &v
	}
	row.Conditions = datatypes.NewJSONType(c)
}

// ConditionsPatch is a partial update of the conditions record. A nil field
// leaves the stored value untouched; a pointer to the zero value (or an
// empty list) deletes the key. Window start and end always travel together.
type ConditionsPatch struct {
	MinPurchase          *float64
	PerUserLimit         *int
	ApplicableCategories *[]int64
	WindowStart          *string
	WindowEnd            *string
}

// mergeConditions applies a patch to the row's conditions record in place.
// Unspecified keys survive untouched; this is a merge, never a wholesale
// replacement.
func mergeConditions(row *models.DiscountCode, p ConditionsPatch) {
	c := row.GetConditions()

	if p.MinPurchase != nil {
		if *p.MinPurchase > 0 {
			c.MinPurchase = p.MinPurchase
		} else {
			c.MinPurchase = nil
		}
	}
	if p.PerUserLimit != nil {
		if *p.PerUserLimit > 0 {
			c.PerUserLimit = p.PerUserLimit
		} else {
			c.PerUserLimit = nil
		}
	}
	if p.ApplicableCategories != nil {
		if len(*p.ApplicableCategories) > 0 {
			c.ApplicableCategories = *p.ApplicableCategories
		} else {
			c.ApplicableCategories = nil
		}
	}
	if p.WindowStart != nil && p.WindowEnd != nil {
		if *p.WindowStart != "" && *p.WindowEnd != "" {
			c.ApplicableStartDate = p.WindowStart
			c.ApplicableEndDate = p.WindowEnd
		} else {
			c.ApplicableStartDate = nil
			c.ApplicableEndDate = nil
		}
	}

	row.Conditions = datatypes.NewJSONType(c)
}
