package models

import "time"

// Hotel read model for reporting joins and eligibility lists.
type Hotel struct {
	HotelID    int64     `gorm:"column:hotel_id;primary_key" json:"hotel_id"`
	Name       string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	CategoryID int64     `gorm:"column:category_id;not null;index" json:"category_id"`
	City       string    `gorm:"column:city;type:varchar(128)" json:"city"`
	Status     string    `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Hotel) TableName() string {
	return "hotels"
}
