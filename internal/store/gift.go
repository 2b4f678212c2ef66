package store

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/models"
)

func (s *recipientStore) gifts(uid, recipientID string) *firestore.CollectionRef {
	return s.collection(uid).Doc(recipientID).Collection("gifts")
}

func (s *recipientStore) SaveGift(ctx context.Context, uid string, g models.Gift) error {
	_, err := s.gifts(uid, g.RecipientID).Doc(g.ID).Set(ctx, giftDoc(g, time.Now()))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to save gift", err)
	}
	return nil
}

func (s *recipientStore) ListGifts(ctx context.Context, uid, recipientID string) ([]models.Gift, error) {
	docs, err := s.gifts(uid, recipientID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list gifts", err)
	}
	gifts := make([]models.Gift, 0, len(docs))
	for _, d := range docs {
		var g models.Gift
		if err := d.DataTo(&g); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse gift data", err)
		}
		g.ID = d.Ref.ID
		g.RecipientID = recipientID
		gifts = append(gifts, g)
	}
	sort.SliceStable(gifts, func(i, j int) bool {
		return gifts[i].CreatedAt.Before(gifts[j].CreatedAt)
	})
	return gifts, nil
}

func (s *recipientStore) DeleteGift(ctx context.Context, uid, recipientID, giftID string) error {
	_, err := s.gifts(uid, recipientID).Doc(giftID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete gift", err)
	}
	return nil
}
