package models

import (
	"time"
)

// Recipient is a person gifts are tracked for. Spent is derived from Gifts
// and is recomputed on every gift mutation and on every read from the store.
type Recipient struct {
	ID        string    `firestore:"id" json:"id"`
	Name      string    `firestore:"name" json:"name"`
	Budget    float64   `firestore:"budget" json:"budget"`
	Spent     float64   `firestore:"spent" json:"spent"`
	Gifts     []Gift    `firestore:"-" json:"gifts"`
	Age       *int      `firestore:"age,omitempty" json:"age,omitempty"`
	Gender    *string   `firestore:"gender,omitempty" json:"gender,omitempty"`
	Interests *string   `firestore:"interests,omitempty" json:"interests,omitempty"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"-"`
}

// RecipientPatch holds the fields an edit may change. Spent is not one of them.
type RecipientPatch struct {
	Name      *string  `json:"name,omitempty"`
	Budget    *float64 `json:"budget,omitempty"`
	Age       *int     `json:"age,omitempty"`
	Gender    *string  `json:"gender,omitempty"`
	Interests *string  `json:"interests,omitempty"`
}
