package models

import (
	"strings"
	"time"
)

// JsonModel is the primary key and timestamps every table shares.
type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserAccount struct {
	JsonModel
	// ExternalID is the subject of the identity provider token.
	ExternalID string `gorm:"uniqueIndex" json:"-"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Banned     bool   `gorm:"default:false" json:"-"`
	// Notifications settings
	ReceiveNotifications bool `gorm:"default:true" json:"receive_notifications"`

	Age              *int    `json:"age"`
	GenderExpression *string `json:"gender_expression"`
	StylePreferences *string `gorm:"type:text" json:"style_preferences"`
}

// Profile is the part of an account the user edits and the stylist reads.
type Profile struct {
	FullName         string  `json:"full_name"`
	Age              *int    `json:"age"`
	GenderExpression *string `json:"gender_expression"`
	StylePreferences *string `json:"style_preferences"`
}

func (u UserAccount) Profile() Profile {
	return Profile{
		FullName:         u.Name,
		Age:              u.Age,
		GenderExpression: u.GenderExpression,
		StylePreferences: u.StylePreferences,
	}
}

// ProfileUpdate changes only the fields that are set. An empty string
// clears an optional text field.
type ProfileUpdate struct {
	FullName         *string
	Age              *int
	GenderExpression *string
	StylePreferences *string
}

func (u *UserAccount) ApplyProfile(p ProfileUpdate) {
	if p.FullName != nil {
		u.Name = strings.TrimSpace(*p.FullName)
	}
	if p.Age != nil {
		age := *p.Age
		u.Age = &age
	}
	if p.GenderExpression != nil {
		u.GenderExpression = optionalText(*p.GenderExpression)
	}
	if p.StylePreferences != nil {
		u.StylePreferences = optionalText(*p.StylePreferences)
	}
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint     `gorm:"index" json:"-"`
	Platform      Platform `json:"platform"`
	Token         string   `gorm:"index" json:"token"`
	Active        bool     `gorm:"default:false" json:"-"`
}
