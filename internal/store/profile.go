package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/models"
)

type profileStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
}

func NewProfileStore(client *firestore.Client) *profileStore {
	return &profileStore{
		Client:     client,
		Collection: client.Collection("users"),
	}
}

func (ps *profileStore) SaveProfile(ctx context.Context, uid string, p models.UserProfile) error {
	_, err := ps.Collection.Doc(uid).Set(ctx, profileDoc(p, time.Now()), firestore.MergeAll)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to save profile", err)
	}
	return nil
}

func (ps *profileStore) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	var p models.UserProfile

	doc, err := ps.Collection.Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("profile not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get profile", err)
	}
	if err := doc.DataTo(&p); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse profile data", err)
	}

	return &p, nil
}
