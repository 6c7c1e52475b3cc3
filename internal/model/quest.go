package model

import "time"

type Quest struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:128;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	TargetAmount int64     `json:"targetAmount"`
	CreatedAt    time.Time `json:"createdAt"`
}
