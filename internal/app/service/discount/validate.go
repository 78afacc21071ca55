package discount

import (
	"strings"
	"time"
	"unicode"

	"github.com/tripnest/backoffice/pkg/types"
)

// CreateDiscountRequest is the payload for creating a discount code.
// Dates use the YYYY-MM-DD format.
type CreateDiscountRequest struct {
	Code                 string               `json:"code"`
	DiscountType         types.DiscountKind   `json:"discountType"`
	DiscountValue        float64              `json:"discountValue"`
	MaxDiscount          *float64             `json:"maxDiscount"`
	MinPurchase          *float64             `json:"minPurchase"`
	UsageLimit           *int                 `json:"usageLimit"`
	PerUserLimit         *int                 `json:"perUserLimit"`
	StartDate            string               `json:"startDate"`
	ExpiryDate           string               `json:"expiryDate"`
	ApplicableStartDate  *string              `json:"applicableStartDate"`
	ApplicableEndDate    *string              `json:"applicableEndDate"`
	MinNights            *int                 `json:"minNights"`
	MaxNights            *int                 `json:"maxNights"`
	ApplicableHotels     []int64              `json:"applicableHotels"`
	ApplicableCategories []int64              `json:"applicableCategories"`
	Status               types.DiscountStatus `json:"status"`
}

// UpdateDiscountRequest is a partial update. nil means "leave untouched";
// a pointer to the zero value clears the field where clearing is allowed.
type UpdateDiscountRequest struct {
	Code                 *string               `json:"code"`
	DiscountType         *types.DiscountKind   `json:"discountType"`
	DiscountValue        *float64              `json:"discountValue"`
	MaxDiscount          *float64              `json:"maxDiscount"`
	MinPurchase          *float64              `json:"minPurchase"`
	UsageLimit           *int                  `json:"usageLimit"`
	PerUserLimit         *int                  `json:"perUserLimit"`
	ExpiryDate           *string               `json:"expiryDate"`
	ApplicableStartDate  *string               `json:"applicableStartDate"`
	ApplicableEndDate    *string               `json:"applicableEndDate"`
	MinNights            *int                  `json:"minNights"`
	MaxNights            *int                  `json:"maxNights"`
	ApplicableHotels     *[]int64              `json:"applicableHotels"`
	ApplicableCategories *[]int64              `json:"applicableCategories"`
	Status               *types.DiscountStatus `json:"status"`
}

func parseDate(s string) (time.Time, *Error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, validationError(MsgDateUnparseable)
	}
	return t, nil
}

// validateCode enforces rule 1: non-empty after trim, no inner whitespace
// of any kind (covers newlines and Unicode spaces, not just ASCII blanks).
func validateCode(code string) *Error {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return validationError(MsgCodeRequired)
	}
	if strings.ContainsFunc(trimmed, unicode.IsSpace) {
		return validationError(MsgCodeNoWhitespace)
	}
	return nil
}

// validateLogical enforces rules 2-4 with the discount kind known.
func validateLogical(kind types.DiscountKind, value float64, maxDiscount *float64) *Error {
	if !kind.Valid() {
		return validationError(MsgInvalidKind)
	}
	if value <= 0 {
		return validationError(MsgValueRequired)
	}
	switch kind {
	case types.DiscountKindPercent:
		if value > 100 {
			return validationError(MsgPercentTooHigh)
		}
		if maxDiscount != nil {
			if *maxDiscount <= 0 {
				return validationError(MsgMaxDiscountInvalid)
			}
			if *maxDiscount < 1000 {
				return validationError(MsgMaxDiscountMinimum)
			}
		}
	case types.DiscountKindFixed:
		if value < 1000 {
			return validationError(MsgFixedMinimum)
		}
	}
	return nil
}

// validateMinPurchase enforces rule 5: non-negative, and at least the
// minimum currency unit when set.
func validateMinPurchase(v float64) *Error {
	if v < 0 {
		return validationError(MsgMinPurchaseNegative)
	}
	if v > 0 && v < 1000 {
		return validationError(MsgMinPurchaseMinimum)
	}
	return nil
}

// validateLimits enforces rule 6 for whichever caps are supplied.
func validateLimits(usageLimit, perUserLimit *int) *Error {
	if usageLimit != nil && *usageLimit <= 0 {
		return validationError(MsgUsageLimitInvalid)
	}
	if perUserLimit != nil {
		if *perUserLimit <= 0 {
			return validationError(MsgPerUserInvalid)
		}
		if usageLimit != nil && *perUserLimit > *usageLimit {
			return validationError(MsgPerUserOverTotal)
		}
	}
	return nil
}

// validateNights enforces rule 9 for whichever bounds are supplied.
func validateNights(minNights, maxNights *int) *Error {
	if minNights != nil && *minNights < 0 {
		return validationError(MsgNightsNegative)
	}
	if maxNights != nil && *maxNights < 0 {
		return validationError(MsgNightsNegative)
	}
	if minNights != nil && maxNights != nil && *minNights > *maxNights {
		return validationError(MsgNightsInverted)
	}
	return nil
}

// validateWindow enforces rule 8's pure parts: both bounds present,
// parseable, ordered. Containment against [lower, upper] is checked when
// both bounds of the code's own lifetime are known.
func validateWindow(start, end *string) (time.Time, time.Time, *Error) {
	var zero time.Time
	if (start == nil) != (end == nil) {
		return zero, zero, validationError(MsgWindowIncomplete)
	}
	if start == nil {
		return zero, zero, nil
	}
	ws, err := parseDate(*start)
	if err != nil {
		return zero, zero, err
	}
	we, err := parseDate(*end)
	if err != nil {
		return zero, zero, err
	}
	if !we.After(ws) {
		return zero, zero, validationError(MsgWindowInverted)
	}
	return ws, we, nil
}

func validateWindowWithin(ws, we, lower, upper time.Time) *Error {
	if ws.Before(lower) || we.After(upper) {
		return validationError(MsgWindowOutOfRange)
	}
	return nil
}

// ValidateCreate runs every create rule in order and short-circuits on the
// first violation. It is pure: no storage access.
func ValidateCreate(req *CreateDiscountRequest) *Error {
	if err := validateCode(req.Code); err != nil {
		return err
	}
	if err := validateLogical(req.DiscountType, req.DiscountValue, req.MaxDiscount); err != nil {
		return err
	}
	if req.MinPurchase != nil {
		if err := validateMinPurchase(*req.MinPurchase); err != nil {
			return err
		}
	}
	if err := validateLimits(req.UsageLimit, req.PerUserLimit); err != nil {
		return err
	}
	if req.StartDate == "" || req.ExpiryDate == "" {
		return validationError(MsgDatesRequired)
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return err
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return err
	}
	if !expiry.After(start) {
		return validationError(MsgExpiryBeforeStart)
	}
	ws, we, err := validateWindow(req.ApplicableStartDate, req.ApplicableEndDate)
	if err != nil {
		return err
	}
	if req.ApplicableStartDate != nil {
		if err := validateWindowWithin(ws, we, start, expiry); err != nil {
			return err
		}
	}
	if err := validateNights(req.MinNights, req.MaxNights); err != nil {
		return err
	}
	switch req.Status {
	case "", types.DiscountStatusActive, types.DiscountStatusInactive:
	default:
		return validationError(MsgStatusInvalid)
	}
	return nil
}

// ValidateUpdate applies the rules relevant to the supplied fields. Checks
// that need the stored row (discount kind when only the value changes,
// window containment) run in the registry once the row is loaded.
func ValidateUpdate(req *UpdateDiscountRequest) *Error {
	if req.Code != nil {
		if err := validateCode(*req.Code); err != nil {
			return err
		}
	}
	if req.DiscountType != nil && !req.DiscountType.Valid() {
		return validationError(MsgInvalidKind)
	}
	if req.DiscountValue != nil && *req.DiscountValue <= 0 {
		return validationError(MsgValueRequired)
	}
	if req.MinPurchase != nil {
		if err := validateMinPurchase(*req.MinPurchase); err != nil {
			return err
		}
	}
	if err := validateLimits(req.UsageLimit, req.PerUserLimit); err != nil {
		return err
	}
	if req.ExpiryDate != nil {
		if _, err := parseDate(*req.ExpiryDate); err != nil {
			return err
		}
	}
	clearingWindow := req.ApplicableStartDate != nil && req.ApplicableEndDate != nil &&
		*req.ApplicableStartDate == "" && *req.ApplicableEndDate == ""
	if !clearingWindow {
		if _, _, err := validateWindow(req.ApplicableStartDate, req.ApplicableEndDate); err != nil {
			return err
		}
	}
	if err := validateNights(req.MinNights, req.MaxNights); err != nil {
		return err
	}
	if req.Status != nil {
		switch *req.Status {
		case types.DiscountStatusActive, types.DiscountStatusInactive, types.DiscountStatusExpired:
		default:
			return validationError(MsgStatusInvalid)
		}
	}
	return nil
}
