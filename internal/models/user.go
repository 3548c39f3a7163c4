package models

import "time"

type User struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Email        string    `gorm:"type:varchar(100)"`
	FullName     string    `gorm:"type:varchar(200)"`
	Invoices     []Invoice `gorm:"constraint:OnDelete:CASCADE"`
}
