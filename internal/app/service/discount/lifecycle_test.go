package discount

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tripnest/backoffice/internal/models"
	"github.com/tripnest/backoffice/pkg/types"
)

func TestSweepExpired_IsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC1", Code: "OVERDUE",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusActive,
		ExpiresAt:     time.Now().AddDate(0, 0, -2),
	}).Error)
	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC2", Code: "OVERDUE2",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusDisabled,
		ExpiresAt:     time.Now().AddDate(0, 0, -2),
	}).Error)

	n, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	// second run finds nothing left to flip
	n, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestToggleStatus_FlipsBothWays(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateDiscountRequest{
		Code: "FLIP", DiscountType: types.DiscountKindPercent, DiscountValue: 10,
		StartDate: "2026-01-01", ExpiryDate: "2099-01-01",
	})
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(ctx, item.DiscountID)
	require.NoError(t, err)
	require.Equal(t, types.DiscountStatusDisabled, toggled.Status)

	toggled, err = svc.ToggleStatus(ctx, item.DiscountID)
	require.NoError(t, err)
	require.Equal(t, types.DiscountStatusActive, toggled.Status)
}

func TestToggleStatus_OverdueCodeForcedExpired(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC9", Code: "STALE",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusActive,
		ExpiresAt:     time.Now().AddDate(0, 0, -1),
	}).Error)

	toggled, err := svc.ToggleStatus(ctx, "DISC9")
	require.NoError(t, err)
	require.Equal(t, types.DiscountStatusExpired, toggled.Status)
}

func TestExtend_RejectsNonPositiveDays(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Extend(context.Background(), "DISC1", 0)
	var de *Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, MsgExtendDaysInvalid, de.Message)
}

func TestExtend_ReactivatesExpiredCode(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	expiry := time.Now().AddDate(0, 0, -3)
	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC8", Code: "REVIVE",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusExpired,
		ExpiresAt:     expiry,
	}).Error)

	item, err := svc.Extend(ctx, "DISC8", 30)
	require.NoError(t, err)
	require.Equal(t, types.DiscountStatusActive, item.Status)
	require.Equal(t, expiry.AddDate(0, 0, 30).Unix(), item.ExpiresAt.Unix())
}

func TestExtend_ShortExtensionStaysExpired(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.DiscountCode{
		DiscountID: "DISC7", Code: "STILLGONE",
		PercentageOff: ptr(10.0),
		Status:        types.DiscountStatusExpired,
		ExpiresAt:     time.Now().AddDate(0, 0, -10),
	}).Error)

	item, err := svc.Extend(ctx, "DISC7", 2)
	require.NoError(t, err)
	require.Equal(t, types.DiscountStatusExpired, item.Status)
}
