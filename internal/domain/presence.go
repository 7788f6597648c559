package domain

import "time"

type UserPresence struct {
	UserID   int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	IsOnline bool      `json:"is_online" gorm:"not null;default:false;index"`
	LastSeen time.Time `json:"last_seen" gorm:"index"`
}

func (UserPresence) TableName() string { return "user_presence" }
