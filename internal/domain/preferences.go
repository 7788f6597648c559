package domain

import "time"

type Theme string

const (
	ThemePopArt Theme = "pop_art"
	ThemeMatte  Theme = "matte"
)

type Intensity string

const (
	IntensitySoft  Intensity = "soft"
	IntensityVivid Intensity = "vivid"
)

type UserPreferences struct {
	UserID         int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Theme          Theme     `json:"theme" gorm:"size:16;not null"`
	IntensityTheme Intensity `json:"intensity_theme" gorm:"size:16;not null"`
	Locale         string    `json:"locale" gorm:"size:8;not null"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (UserPreferences) TableName() string { return "user_preferences" }

func DefaultPreferences(userID int64) UserPreferences {
	return UserPreferences{
		UserID:         userID,
		Theme:          ThemePopArt,
		IntensityTheme: IntensityVivid,
		Locale:         "en",
	}
}
