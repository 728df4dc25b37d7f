package model

import (
	"time"

	"gorm.io/gorm"
)

// Feedback is a message left by a patient for the clinic.
type Feedback struct {
	gorm.Model
	PatientName string     `json:"patient_name" gorm:"type:varchar(191);not null"`
	Email       *string    `json:"email,omitempty" gorm:"type:varchar(191)"`
	Message     string     `json:"message" gorm:"type:text;not null"`
	Rating      *int       `json:"rating,omitempty"`
	Reply       *string    `json:"reply,omitempty" gorm:"type:text"`
	IsStarred   bool       `json:"is_starred" gorm:"default:false;index"`
	RepliedAt   *time.Time `json:"replied_at,omitempty"`
}

// UnrepliedFeedback scopes a Feedback query to messages nobody has replied to yet.
func UnrepliedFeedback(db *gorm.DB) *gorm.DB {
	return db.Where("reply IS NULL OR reply = ''")
}
