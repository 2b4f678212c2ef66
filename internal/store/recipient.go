package store

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/gift-budget/internal/budget"
	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/models"
)

// giftLoadConcurrency bounds the per-recipient gift reads of ListRecipients.
const giftLoadConcurrency = 8

type recipientStore struct {
	client *firestore.Client
}

func NewRecipientStore(client *firestore.Client) *recipientStore {
	return &recipientStore{client: client}
}

func (s *recipientStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("recipients")
}

func (s *recipientStore) SaveRecipient(ctx context.Context, uid string, r models.Recipient) error {
	_, err := s.collection(uid).Doc(r.ID).Set(ctx, recipientDoc(r, time.Now()))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to save recipient", err)
	}
	return nil
}

// GetRecipient reads the recipient document, then its gifts, and derives
// Spent from those gifts.
func (s *recipientStore) GetRecipient(ctx context.Context, uid, recipientID string) (*models.Recipient, error) {
	doc, err := s.collection(uid).Doc(recipientID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("recipient not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get recipient", err)
	}
	var r models.Recipient
	if err := doc.DataTo(&r); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse recipient data", err)
	}
	r.ID = doc.Ref.ID

	gifts, err := s.ListGifts(ctx, uid, r.ID)
	if err != nil {
		return nil, err
	}
	r.Gifts = gifts
	r.Spent = budget.SumGiftPrices(gifts)
	return &r, nil
}

// ListRecipients returns every recipient of uid with its gifts, oldest first.
func (s *recipientStore) ListRecipients(ctx context.Context, uid string) ([]models.Recipient, error) {
	docs, err := s.collection(uid).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list recipients", err)
	}

	recipients := make([]models.Recipient, len(docs))
	for i, d := range docs {
		if err := d.DataTo(&recipients[i]); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse recipient data", err)
		}
		recipients[i].ID = d.Ref.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(giftLoadConcurrency)
	for i := range recipients {
		r := &recipients[i]
		g.Go(func() error {
			gifts, err := s.ListGifts(gctx, uid, r.ID)
			if err != nil {
				return err
			}
			r.Gifts = gifts
			r.Spent = budget.SumGiftPrices(gifts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(recipients, func(i, j int) bool {
		return recipients[i].CreatedAt.Before(recipients[j].CreatedAt)
	})
	return recipients, nil
}

func (s *recipientStore) DeleteRecipient(ctx context.Context, uid, recipientID string) error {
	_, err := s.collection(uid).Doc(recipientID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete recipient", err)
	}
	return nil
}
