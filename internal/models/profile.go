package models

import (
	"time"
)

// UserProfile is the users/{uid} document.
type UserProfile struct {
	FirstName   string    `firestore:"firstName" json:"firstName"`
	TotalBudget float64   `firestore:"totalBudget" json:"totalBudget"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"-"`
}
