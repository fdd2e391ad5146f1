package client

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("client not found")

type OnboardingStatus string

const (
	OnboardingPending  OnboardingStatus = "pending"
	OnboardingApproved OnboardingStatus = "approved"
	OnboardingRejected OnboardingStatus = "rejected"
)

type EmploymentType string

const (
	Employed     EmploymentType = "employed"
	SelfEmployed EmploymentType = "self_employed"
	Unemployed   EmploymentType = "unemployed"
	Retired      EmploymentType = "retired"
)

type Client struct {
	ID            uint64           `gorm:"primaryKey;column:id" json:"-"`
	ClientID      string           `gorm:"size:32;uniqueIndex:ux_clients_client_id" json:"client_id"`
	FullName      string           `gorm:"size:128" json:"full_name"`
	Email         string           `gorm:"size:128" json:"email"`
	Phone         string           `gorm:"size:32" json:"phone"`
	District      string           `gorm:"size:64;index:idx_clients_district" json:"district"`
	MonthlyIncome float64          `gorm:"type:decimal(18,2)" json:"monthly_income"`
	Employment    EmploymentType   `gorm:"size:16" json:"employment"`
	YearsEmployed int              `json:"years_employed"`
	Onboarding    OnboardingStatus `gorm:"size:16;index:idx_clients_onboarding" json:"onboarding"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
