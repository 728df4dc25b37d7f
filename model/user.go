package model

import (
	"time"

	"gorm.io/gorm"
)

// MaxFailedAttempts is the number of consecutive bad passwords that locks an account.
const MaxFailedAttempts = 5

// LockDuration is how long an account stays locked after MaxFailedAttempts.
const LockDuration = 15 * time.Minute

// User is a dashboard operator account.
type User struct {
	gorm.Model
	Name           string `json:"name" gorm:"type:varchar(191);not null"`
	Email          string `json:"email" gorm:"type:varchar(191);uniqueIndex;not null"`
	Password       string `json:"-" gorm:"type:varchar(255);not null"`
	PasswordSalt   string `json:"-" gorm:"type:varchar(64)"`
	RoleID         uint32 `json:"role_id" gorm:"index"`
	Role           Role   `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	FailedAttempts int    `json:"-" gorm:"default:0"`
	// LockedUntil is a unix timestamp; nil means not locked.
	LockedUntil *int64 `json:"-"`
}

// IsLocked reports whether the account is locked at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Unix() < *u.LockedUntil
}

// RegisterFailure bumps the failure counter and locks the account once it reaches
// MaxFailedAttempts. It reports whether the account became locked.
func (u *User) RegisterFailure(now time.Time) bool {
	u.FailedAttempts++
	if u.FailedAttempts < MaxFailedAttempts {
		return false
	}
	until := now.Add(LockDuration).Unix()
	u.LockedUntil = &until
	u.FailedAttempts = 0
	return true
}

// ResetFailures clears the failure counter and any lock.
func (u *User) ResetFailures() {
	u.FailedAttempts = 0
	u.LockedUntil = nil
}
