package models

import (
	"time"
)

// GameCopy is one physical copy of a game. Every copy gets its own row, so
// CopyID is indexed but not unique: several rows share a title and copy ids
// from imported files are taken as-is.
type GameCopy struct {
	ID            uint    `gorm:"primaryKey"`
	CopyID        int     `gorm:"index;not null"`
	Platform      string  `gorm:"size:80"`
	Genre         string  `gorm:"size:80;index"`
	Title         string  `gorm:"index"`
	PurchasePrice float64 `gorm:"not null;default:0"`
	PurchaseDate  string  `gorm:"size:20"` // dd/mm/yyyy, kept textual
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RentalRecord is one rental transaction. ReturnDate nil means the copy is
// still out. At most one open record may exist per copy; the rent flow
// enforces that, not the schema.
type RentalRecord struct {
	ID         uint    `gorm:"primaryKey"`
	RentalUID  string  `gorm:"type:uuid;uniqueIndex;not null"`
	CopyID     int     `gorm:"index;not null"`
	RentalDate string  `gorm:"size:20"`
	ReturnDate *string `gorm:"size:20"`
	CustomerID string  `gorm:"size:80;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
