package models

import "time"

// Booking is owned by the booking subsystem; the back office only reads it
// for reporting joins.
type Booking struct {
	BookingID    string    `gorm:"column:booking_id;type:varchar(64);primary_key" json:"booking_id"`
	AccountID    string    `gorm:"column:account_id;type:varchar(64);not null;index" json:"account_id"`
	HotelID      int64     `gorm:"column:hotel_id;not null;index" json:"hotel_id"`
	CheckInDate  time.Time `gorm:"column:check_in_date;not null" json:"check_in_date"`
	CheckOutDate time.Time `gorm:"column:check_out_date;not null" json:"check_out_date"`
	TotalPrice   float64   `gorm:"column:total_price;type:numeric;not null" json:"total_price"`
	Status       string    `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingDiscount links a booking to the discount code redeemed on it with
// the realized amount. Rows are immutable; usage statistics and the audit
// trail are reconstructed entirely from this table.
type BookingDiscount struct {
	ID             string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	BookingID      string    `gorm:"column:booking_id;type:varchar(64);not null;index" json:"booking_id"`
	DiscountID     string    `gorm:"column:discount_id;type:varchar(64);not null;index" json:"discount_id"`
	DiscountAmount float64   `gorm:"column:discount_amount;type:numeric;not null" json:"discount_amount"`
	CreatedAt      time.Time `json:"created_at"`
}

func (BookingDiscount) TableName() string {
	return "booking_discounts"
}
