package models

import "time"

const (
	ChatTypeUser = "user"
	ChatTypeBot  = "bot"
)

// ChatMessage is one entry of a recipient's suggestion chat, stored under
// users/{uid}/recipients/{id}/chat.
type ChatMessage struct {
	ID          string       `firestore:"id" json:"id"`
	Type        string       `firestore:"type" json:"type"`
	Text        string       `firestore:"text" json:"text"`
	Timestamp   time.Time    `firestore:"timestamp" json:"timestamp"`
	Suggestions []Suggestion `firestore:"suggestions,omitempty" json:"suggestions,omitempty"`
	Degraded    bool         `firestore:"degraded,omitempty" json:"degraded,omitempty"`
	ExpiresAt   time.Time    `firestore:"expiresAt,omitempty" json:"-"`
}

// Suggestion is a candidate gift pending acceptance.
type Suggestion struct {
	Name           string  `firestore:"name" json:"name"`
	EstimatedPrice float64 `firestore:"estimatedPrice" json:"estimatedPrice"`
	StoreName      *string `firestore:"storeName,omitempty" json:"storeName,omitempty"`
	URL            *string `firestore:"url,omitempty" json:"url,omitempty"`
	ImageURL       *string `firestore:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}
