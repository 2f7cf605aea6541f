package models

import "time"

// DeletedOwnerID is the sentinel owner assigned to handicrafts whose
// creator deleted their account. The rows themselves are kept.
const DeletedOwnerID = "deleteduser"

// Handicraft represents a listed handicraft product
type Handicraft struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"index;size:36;not null" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int64     `gorm:"not null" json:"price"`
	Image       string    `gorm:"size:255" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Handicraft model
func (Handicraft) TableName() string {
	return "handicrafts"
}

// Like records a user liking a handicraft
type Like struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index;size:36;not null" json:"user_id"`
	HandicraftID string    `gorm:"index;size:36;not null" json:"handicraft_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for Like model
func (Like) TableName() string {
	return "likes"
}

// HistoryHandicraft records a user viewing a handicraft
type HistoryHandicraft struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index;size:36;not null" json:"user_id"`
	HandicraftID string    `gorm:"index;size:36;not null" json:"handicraft_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for HistoryHandicraft model
func (HistoryHandicraft) TableName() string {
	return "history_handicrafts"
}
