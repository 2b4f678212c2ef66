package dto

import (
	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/internal/syncq"
)

// Navigation targets returned by GET /session.
const (
	NextDashboard   = "dashboard"
	NextBudgetInput = "budget-input"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	UID string `json:"uid"`
}

type SessionResponse struct {
	UID        string       `json:"uid"`
	HasProfile bool         `json:"hasProfile"`
	Next       string       `json:"next"`
	Sync       syncq.Status `json:"sync"`
}

type ProfileRequest struct {
	FirstName   string   `json:"firstName"`
	TotalBudget *float64 `json:"totalBudget"`
}

type RecipientRequest struct {
	Name      string   `json:"name"`
	Budget    *float64 `json:"budget"`
	Age       *int     `json:"age,omitempty"`
	Gender    *string  `json:"gender,omitempty"`
	Interests *string  `json:"interests,omitempty"`
}

type GiftRequest struct {
	Name      string   `json:"name"`
	Price     *float64 `json:"price"`
	StoreName *string  `json:"storeName,omitempty"`
	URL       *string  `json:"url,omitempty"`
	ImageURL  *string  `json:"imageUrl,omitempty"`
}

type RecipientSummary struct {
	models.Recipient
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentageUsed"`
}

type BudgetSummary struct {
	FirstName          string             `json:"firstName"`
	TotalBudget        float64            `json:"totalBudget"`
	TotalSpent         float64            `json:"totalSpent"`
	BudgetRemaining    float64            `json:"budgetRemaining"`
	PercentageUsed     float64            `json:"percentageUsed"`
	DaysUntilChristmas int                `json:"daysUntilChristmas"`
	Recipients         []RecipientSummary `json:"recipients"`
	Sync               syncq.Status       `json:"sync"`
}
