package tool

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateDiscountID builds a discount identifier with a millisecond
// timestamp suffix, e.g. DISC1735689600123.
func GenerateDiscountID() string {
	return fmt.Sprintf("DISC%d", time.Now().UnixMilli())
}
