package campaign

import (
	"math"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is one of the defined campaign states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Campaign carries the fundraising goal and its running funded totals.
// current_amount and donor_count are mutated only through ApplyDonation;
// they are eventually consistent with the completed donation set, never
// recomputed on read.
type Campaign struct {
	ID              string     `gorm:"column:id;primaryKey" json:"id"`
	Title           string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description     string     `gorm:"column:description;type:text;not null" json:"description"`
	Story           string     `gorm:"column:story;type:text" json:"story,omitempty"`
	GoalAmount      float64    `gorm:"column:goal_amount;not null" json:"goalAmount"`
	CurrentAmount   float64    `gorm:"column:current_amount;default:0" json:"currentAmount"`
	DonorCount      int64      `gorm:"column:donor_count;default:0" json:"donorCount"`
	CreatorID       string     `gorm:"column:creator_id;index;not null" json:"creatorId"`
	Category        string     `gorm:"column:category" json:"category"`
	Status          Status     `gorm:"column:status;default:'active';index" json:"status"`
	StartDate       time.Time  `gorm:"column:start_date" json:"startDate"`
	EndDate         *time.Time `gorm:"column:end_date" json:"endDate,omitempty"`
	Location        string     `gorm:"column:location" json:"location,omitempty"`
	BeneficiaryName string     `gorm:"column:beneficiary_name" json:"beneficiaryName,omitempty"`
	ImageURL        string     `gorm:"column:image_url" json:"imageUrl,omitempty"`
	Views           int64      `gorm:"column:views;default:0" json:"views"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// ProgressPercentage is capped at 100 even when over-funded.
func (c *Campaign) ProgressPercentage() int {
	if c.GoalAmount <= 0 {
		return 0
	}
	pct := int(math.Round(c.CurrentAmount / c.GoalAmount * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

func (c *Campaign) DaysRemaining(now time.Time) int {
	if c.EndDate == nil {
		return 0
	}
	days := int(math.Ceil(c.EndDate.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func (c *Campaign) IsExpired(now time.Time) bool {
	return c.EndDate != nil && now.After(*c.EndDate)
}
