// Package budget holds the in-session view of one user's gift budget and keeps
// its derived totals consistent.
package budget

import (
	"sync"

	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/pkg/helpers"
)

// Syncer receives the entities to persist after each local mutation. Calls
// must not block; implementations queue the work.
type Syncer interface {
	PutProfile(p models.UserProfile)
	PutRecipient(r models.Recipient)
	DeleteRecipient(r models.Recipient)
	PutGift(g models.Gift)
	DeleteGift(recipientID, giftID string)
}

type Store struct {
	mu          sync.RWMutex
	firstName   string
	totalBudget float64
	recipients  []models.Recipient
	syncer      Syncer
}

func New() *Store {
	return &Store{}
}

// Attach starts forwarding mutations to s. Passing nil detaches.
func (b *Store) Attach(s Syncer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncer = s
}

// Load replaces the whole state, e.g. after a full reload from the document
// store. Nothing is synced back.
func (b *Store) Load(profile models.UserProfile, recipients []models.Recipient) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.firstName = profile.FirstName
	b.totalBudget = profile.TotalBudget
	b.recipients = make([]models.Recipient, 0, len(recipients))
	for _, r := range recipients {
		r = cloneRecipient(r)
		r.Spent = SumGiftPrices(r.Gifts)
		b.recipients = append(b.recipients, r)
	}
}

// SetUserData sets the profile fields. Validation is the caller's job.
func (b *Store) SetUserData(firstName string, totalBudget float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.firstName = firstName
	b.totalBudget = totalBudget
	if b.syncer != nil {
		b.syncer.PutProfile(models.UserProfile{FirstName: firstName, TotalBudget: totalBudget})
	}
}

func (b *Store) Profile() models.UserProfile {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return models.UserProfile{FirstName: b.firstName, TotalBudget: b.totalBudget}
}

// AddRecipient appends r. The id is caller-supplied and not checked for
// uniqueness. Spent is recomputed from whatever gifts r carries.
func (b *Store) AddRecipient(r models.Recipient) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r = cloneRecipient(r)
	for i := range r.Gifts {
		r.Gifts[i].RecipientID = r.ID
	}
	r.Spent = SumGiftPrices(r.Gifts)
	b.recipients = append(b.recipients, r)

	if b.syncer != nil {
		b.syncer.PutRecipient(cloneRecipient(r))
		for _, g := range r.Gifts {
			b.syncer.PutGift(cloneGift(g))
		}
	}
}

// UpdateRecipient merges patch into the matching recipient and reports
// whether one was found.
func (b *Store) UpdateRecipient(id string, patch models.RecipientPatch) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	r := &b.recipients[i]
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.Budget != nil {
		r.Budget = *patch.Budget
	}
	if patch.Age != nil {
		r.Age = helpers.Clone(patch.Age)
	}
	if patch.Gender != nil {
		r.Gender = helpers.Clone(patch.Gender)
	}
	if patch.Interests != nil {
		r.Interests = helpers.Clone(patch.Interests)
	}

	if b.syncer != nil {
		b.syncer.PutRecipient(cloneRecipient(*r))
	}
	return true
}

// DeleteRecipient removes the recipient and, remotely, its gift documents
// followed by the recipient document as independent deletes.
func (b *Store) DeleteRecipient(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	removed := b.recipients[i]
	b.recipients = append(b.recipients[:i:i], b.recipients[i+1:]...)

	if b.syncer != nil {
		b.syncer.DeleteRecipient(cloneRecipient(removed))
	}
	return true
}

// AddGift appends g to the recipient and recomputes Spent before anything is
// handed to the syncer.
func (b *Store) AddGift(recipientID string, g models.Gift) bool {
	return b.mutateGifts(recipientID, func(r *models.Recipient) (giftChange, bool) {
		g = cloneGift(g)
		g.RecipientID = recipientID
		r.Gifts = append(r.Gifts, g)
		return giftChange{put: &r.Gifts[len(r.Gifts)-1]}, true
	})
}

func (b *Store) UpdateGift(recipientID, giftID string, patch models.GiftPatch) bool {
	return b.mutateGifts(recipientID, func(r *models.Recipient) (giftChange, bool) {
		for i := range r.Gifts {
			if r.Gifts[i].ID != giftID {
				continue
			}
			g := &r.Gifts[i]
			if patch.Name != nil {
				g.Name = *patch.Name
			}
			if patch.Price != nil {
				g.Price = *patch.Price
			}
			if patch.StoreName != nil {
				g.StoreName = helpers.Clone(patch.StoreName)
			}
			if patch.URL != nil {
				g.URL = helpers.Clone(patch.URL)
			}
			if patch.ImageURL != nil {
				g.ImageURL = helpers.Clone(patch.ImageURL)
			}
			return giftChange{put: g}, true
		}
		return giftChange{}, false
	})
}

func (b *Store) DeleteGift(recipientID, giftID string) bool {
	return b.mutateGifts(recipientID, func(r *models.Recipient) (giftChange, bool) {
		for i := range r.Gifts {
			if r.Gifts[i].ID == giftID {
				r.Gifts = append(r.Gifts[:i:i], r.Gifts[i+1:]...)
				return giftChange{deletedID: giftID}, true
			}
		}
		return giftChange{}, false
	})
}

type giftChange struct {
	put       *models.Gift
	deletedID string
}

// mutateGifts runs fn on the recipient under the write lock and recomputes
// Spent in the same critical section, then syncs the touched gift and the
// recipient.
func (b *Store) mutateGifts(recipientID string, fn func(r *models.Recipient) (giftChange, bool)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(recipientID)
	if i < 0 {
		return false
	}
	r := &b.recipients[i]
	change, ok := fn(r)
	if !ok {
		return false
	}
	r.Spent = SumGiftPrices(r.Gifts)

	if b.syncer != nil {
		switch {
		case change.put != nil:
			b.syncer.PutGift(cloneGift(*change.put))
		case change.deletedID != "":
			b.syncer.DeleteGift(recipientID, change.deletedID)
		}
		b.syncer.PutRecipient(cloneRecipient(*r))
	}
	return true
}

// RecipientByID returns a copy of the recipient, or false when absent.
func (b *Store) RecipientByID(id string) (models.Recipient, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i := b.indexOf(id)
	if i < 0 {
		return models.Recipient{}, false
	}
	return cloneRecipient(b.recipients[i]), true
}

// Recipients returns a deep copy of the recipient list in insertion order.
func (b *Store) Recipients() []models.Recipient {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Recipient, 0, len(b.recipients))
	for _, r := range b.recipients {
		out = append(out, cloneRecipient(r))
	}
	return out
}

func (b *Store) TotalSpent() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return TotalSpent(b.recipients)
}

func (b *Store) BudgetRemaining() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Remaining(b.totalBudget, TotalSpent(b.recipients))
}

func (b *Store) PercentageUsed() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return PercentageUsed(b.totalBudget, TotalSpent(b.recipients))
}

func (b *Store) indexOf(id string) int {
	for i := range b.recipients {
		if b.recipients[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneRecipient(r models.Recipient) models.Recipient {
	out := r
	out.Age = helpers.Clone(r.Age)
	out.Gender = helpers.Clone(r.Gender)
	out.Interests = helpers.Clone(r.Interests)
	if r.Gifts != nil {
		out.Gifts = make([]models.Gift, len(r.Gifts))
		for i, g := range r.Gifts {
			out.Gifts[i] = cloneGift(g)
		}
	} else {
		out.Gifts = []models.Gift{}
	}
	return out
}

func cloneGift(g models.Gift) models.Gift {
	out := g
	out.StoreName = helpers.Clone(g.StoreName)
	out.URL = helpers.Clone(g.URL)
	out.ImageURL = helpers.Clone(g.ImageURL)
	return out
}

// Snapshot is a consistent copy of the state with its derived totals.
type Snapshot struct {
	Profile         models.UserProfile
	Recipients      []models.Recipient
	TotalSpent      float64
	BudgetRemaining float64
	PercentageUsed  float64
}

func (b *Store) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	recipients := make([]models.Recipient, 0, len(b.recipients))
	for _, r := range b.recipients {
		recipients = append(recipients, cloneRecipient(r))
	}
	spent := TotalSpent(b.recipients)
	return Snapshot{
		Profile:         models.UserProfile{FirstName: b.firstName, TotalBudget: b.totalBudget},
		Recipients:      recipients,
		TotalSpent:      spent,
		BudgetRemaining: Remaining(b.totalBudget, spent),
		PercentageUsed:  PercentageUsed(b.totalBudget, spent),
	}
}
