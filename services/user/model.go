package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is owned by this service; the aggregate fields total_donated and
// donation_count are mutated only through ApplyDonation.
type User struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	FirstName     string    `gorm:"column:first_name;not null" json:"firstName"`
	LastName      string    `gorm:"column:last_name;not null" json:"lastName"`
	Email         string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password      string    `gorm:"column:password;not null" json:"-"`
	PhoneNumber   string    `gorm:"column:phone_number" json:"phoneNumber,omitempty"`
	ProfileImage  string    `gorm:"column:profile_image" json:"profileImage,omitempty"`
	Role          Role      `gorm:"column:role;default:'user'" json:"role"`
	IsActive      bool      `gorm:"column:is_active;default:true" json:"isActive"`
	TotalDonated  float64   `gorm:"column:total_donated;default:0" json:"totalDonated"`
	DonationCount int64     `gorm:"column:donation_count;default:0" json:"donationCount"`

	// password reset; the stored token is a sha256 hash, never the raw token
	ResetPasswordToken  string     `gorm:"column:reset_password_token;index" json:"-"`
	ResetPasswordExpire *time.Time `gorm:"column:reset_password_expire" json:"-"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "Valued Donor"
	}
	return name
}
