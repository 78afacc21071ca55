package types

// DiscountKind is the logical discount type. It is derived from the stored
// columns on every read and is never persisted itself.
type DiscountKind string

const (
	DiscountKindPercent DiscountKind = "PERCENT"
	DiscountKindFixed   DiscountKind = "FIXED"
)

func (k DiscountKind) Valid() bool {
	return k == DiscountKindPercent || k == DiscountKindFixed
}

// LogicalDiscount is the tagged representation of a discount above the
// repository layer. Cap is only meaningful for PERCENT discounts.
type LogicalDiscount struct {
	Kind  DiscountKind `json:"kind"`
	Value float64      `json:"value"`
	Cap   *float64     `json:"cap,omitempty"`
}

type DiscountStatus string

const (
	DiscountStatusActive   DiscountStatus = "ACTIVE"
	DiscountStatusDisabled DiscountStatus = "DISABLED"
	DiscountStatusExpired  DiscountStatus = "EXPIRED"

	// DiscountStatusInactive is accepted from clients on create and stored
	// as DISABLED. It never appears in persisted rows.
	DiscountStatusInactive DiscountStatus = "INACTIVE"
)

// NormalizeStatus maps the client-facing INACTIVE alias onto the stored
// DISABLED state.
func NormalizeStatus(s DiscountStatus) DiscountStatus {
	if s == DiscountStatusInactive {
		return DiscountStatusDisabled
	}
	return s
}
