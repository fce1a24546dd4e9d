package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values stored on User.Role.
const (
	RoleUser    = "user"
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// Verification status values. A NULL status means the account predates
// the verification flow and is treated the same as approved.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FullName string `gorm:"size:255" json:"full_name"`
	Username string `gorm:"uniqueIndex;size:150" json:"username"`
	Email    string `gorm:"uniqueIndex;size:255" json:"email"`
	Password string `gorm:"size:255" json:"-"` // bcrypt hash, never returned in JSON

	Role               string  `gorm:"size:32;default:user" json:"role"`
	VerificationStatus *string `gorm:"size:32" json:"verification_status,omitempty"`
	Phone              string  `gorm:"size:32" json:"phone,omitempty"`
	Department         string  `gorm:"size:255" json:"department,omitempty"`

	ResetToken        *string    `gorm:"size:128;index" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsVerified reports whether the user may create bookings.
func (u *User) IsVerified() bool {
	return u.VerificationStatus == nil || *u.VerificationStatus == VerificationApproved
}

// CanManageBookings reports whether the user may confirm or cancel
// other users' bookings.
func (u *User) CanManageBookings() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}
