package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is the server side record of a logged in dashboard operator. It exists from
// login until logout, explicit invalidation or ExpiresAt.
type Session struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	RoleID       uint32    `json:"role_id"`
	SessionToken string    `json:"-" gorm:"type:varchar(512);uniqueIndex;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"index"`
	ClientIP     string    `json:"client_ip" gorm:"type:varchar(45)"`
	Browser      string    `json:"browser" gorm:"type:varchar(512)"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
