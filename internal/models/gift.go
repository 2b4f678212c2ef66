package models

import (
	"time"
)

type Gift struct {
	ID          string    `firestore:"id" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Price       float64   `firestore:"price" json:"price"`
	RecipientID string    `firestore:"recipientId" json:"recipientId"` // back-reference only
	StoreName   *string   `firestore:"storeName,omitempty" json:"storeName,omitempty"`
	URL         *string   `firestore:"url,omitempty" json:"url,omitempty"`
	ImageURL    *string   `firestore:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"-"`
}

type GiftPatch struct {
	Name      *string  `json:"name,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	StoreName *string  `json:"storeName,omitempty"`
	URL       *string  `json:"url,omitempty"`
	ImageURL  *string  `json:"imageUrl,omitempty"`
}
