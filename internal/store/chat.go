package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

type chatStore struct {
	client *firestore.Client
}

func NewChatStore(client *firestore.Client) *chatStore {
	return &chatStore{client: client}
}

func (s *chatStore) messagesCollection(uid, recipientID string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("recipients").Doc(recipientID).Collection("chat")
}

func (s *chatStore) SaveMessage(ctx context.Context, uid, recipientID string, msg models.ChatMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	_, err := s.messagesCollection(uid, recipientID).Doc(msg.ID).Set(ctx, chatDoc(msg))
	if err != nil {
		return errs.NewDatabaseError("create", "failed to save chat message", err)
	}
	return nil
}

// ListMessages returns the newest limit messages in chronological order.
func (s *chatStore) ListMessages(ctx context.Context, uid, recipientID string, limit int) ([]models.ChatMessage, error) {
	query := s.messagesCollection(uid, recipientID).Query.OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []models.ChatMessage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list chat messages", err)
		}
		var msg models.ChatMessage
		if err := doc.DataTo(&msg); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse chat message data", err)
		}
		out = append(out, msg)
	}

	reverseMessages(out)
	return out, nil
}

// DeleteMessages removes a recipient's whole transcript.
func (s *chatStore) DeleteMessages(ctx context.Context, uid, recipientID string) error {
	log := logger.FromContext(ctx)

	refs, err := s.messagesCollection(uid, recipientID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return errs.NewDatabaseError("read", "failed to list chat messages", err)
	}
	if len(refs) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("delete", "failed to schedule chat delete", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			log.Error("failed to delete chat message", "recipient_id", recipientID, "error", err)
			return errs.NewDatabaseError("delete", "failed to delete chat message", err)
		}
	}
	return nil
}

func reverseMessages(msgs []models.ChatMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
