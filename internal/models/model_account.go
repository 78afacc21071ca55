package models

import "time"

// Account is the customer identity read model used by reporting joins.
type Account struct {
	AccountID string    `gorm:"column:account_id;type:varchar(64);primary_key" json:"account_id"`
	FullName  string    `gorm:"column:full_name;type:varchar(255);not null" json:"full_name"`
	Email     string    `gorm:"column:email;type:varchar(255);not null" json:"email"`
	Status    string    `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}
