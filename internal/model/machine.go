package model

import "time"

// Machine represents a piece of fabrication equipment users can reserve.
type Machine struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string `gorm:"size:512" json:"description"`
	// TotalUnits is the number of physical instances of this machine type.
	TotalUnits int       `gorm:"not null;default:1" json:"totalUnits"`
	IsActive   bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}
