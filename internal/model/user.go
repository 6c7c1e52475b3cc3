package model

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Nickname     string    `gorm:"size:64;index" json:"nickname"`
	Career       string    `gorm:"size:128" json:"career"`
	Salary       int       `json:"salary"`
	Saving       int       `json:"saving"`
	AgeRange     int       `json:"ageRange"`
	Introduction string    `gorm:"type:text" json:"introduction"`
	Profile      string    `gorm:"size:512" json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
