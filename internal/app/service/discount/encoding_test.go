package discount

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/tripnest/backoffice/internal/models"
	"github.com/tripnest/backoffice/pkg/types"
)

func TestDecode_PercentRow(t *testing.T) {
	row := &models.DiscountCode{
		PercentageOff: ptr(25.0),
		MaxDiscount:   ptr(100000.0),
	}
	d := Decode(row)
	require.Equal(t, types.DiscountKindPercent, d.Kind)
	require.Equal(t, 25.0, d.Value)
	require.NotNil(t, d.Cap)
	require.Equal(t, 100000.0, *d.Cap)
}

func TestDecode_FixedRow(t *testing.T) {
	row := &models.DiscountCode{
		Conditions: datatypes.NewJSONType(&models.DiscountConditions{FixedAmount: ptr(50000.0)}),
	}
	d := Decode(row)
	require.Equal(t, types.DiscountKindFixed, d.Kind)
	require.Equal(t, 50000.0, d.Value)
	require.Nil(t, d.Cap)
}

func TestDecode_LegacyEmptyRow(t *testing.T) {
	d := Decode(&models.DiscountCode{})
	require.Equal(t, types.DiscountKindFixed, d.Kind)
	require.Zero(t, d.Value)
}

func TestApplyLogical_SwitchingKindsClearsOtherRepresentation(t *testing.T) {
	row := &models.DiscountCode{}

	applyLogical(row, types.LogicalDiscount{Kind: types.DiscountKindFixed, Value: 50000})
	require.Nil(t, row.PercentageOff)
	require.NotNil(t, row.GetConditions().FixedAmount)

	applyLogical(row, types.LogicalDiscount{Kind: types.DiscountKindPercent, Value: 10, Cap: ptr(20000.0)})
	require.NotNil(t, row.PercentageOff)
	require.Equal(t, 10.0, *row.PercentageOff)
	require.Nil(t, row.GetConditions().FixedAmount)

	applyLogical(row, types.LogicalDiscount{Kind: types.DiscountKindFixed, Value: 30000})
	require.Nil(t, row.PercentageOff)
	require.Nil(t, row.MaxDiscount)
	require.Equal(t, 30000.0, *row.GetConditions().FixedAmount)
}

func TestMergeConditions_UntouchedFieldsSurvive(t *testing.T) {
	row := &models.DiscountCode{
		Conditions: datatypes.NewJSONType(&models.DiscountConditions{
			FixedAmount: ptr(50000.0),
			MinPurchase: ptr(200000.0),
		}),
	}

	mergeConditions(row, ConditionsPatch{PerUserLimit: ptr(3)})

	c := row.GetConditions()
	require.Equal(t, 50000.0, *c.FixedAmount)
	require.Equal(t, 200000.0, *c.MinPurchase)
	require.Equal(t, 3, *c.PerUserLimit)
}

func TestMergeConditions_ZeroClearsKey(t *testing.T) {
	row := &models.DiscountCode{
		Conditions: datatypes.NewJSONType(&models.DiscountConditions{
			MinPurchase:          ptr(200000.0),
			PerUserLimit:         ptr(2),
			ApplicableCategories: []int64{1, 2},
			ApplicableStartDate:  ptr("2026-07-01"),
			ApplicableEndDate:    ptr("2026-08-01"),
		}),
	}

	mergeConditions(row, ConditionsPatch{
		MinPurchase:          ptr(0.0),
		PerUserLimit:         ptr(0),
		ApplicableCategories: &[]int64{},
		WindowStart:          ptr(""),
		WindowEnd:            ptr(""),
	})

	c := row.GetConditions()
	require.Nil(t, c.MinPurchase)
	require.Nil(t, c.PerUserLimit)
	require.Nil(t, c.ApplicableCategories)
	require.Nil(t, c.ApplicableStartDate)
	require.Nil(t, c.ApplicableEndDate)
}

func TestMergeConditions_WindowTravelsTogether(t *testing.T) {
	row := &models.DiscountCode{
		Conditions: datatypes.NewJSONType(&models.DiscountConditions{
			ApplicableStartDate: ptr("2026-07-01"),
			ApplicableEndDate:   ptr("2026-08-01"),
		}),
	}

	// only one bound set: no change
	mergeConditions(row, ConditionsPatch{WindowStart: ptr("2026-07-15")})
	c := row.GetConditions()
	require.Equal(t, "2026-07-01", *c.ApplicableStartDate)
	require.Equal(t, "2026-08-01", *c.ApplicableEndDate)
}
