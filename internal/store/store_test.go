package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillconnect/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestNotificationStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("insert assigns id and time", func(mt *mtest.T) {
		s := &NotificationStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n := &models.NotificationRecord{RecipientID: "bob", Type: models.NotificationMessage, Text: "hi"}
		if err := s.Insert(ctx, n); err != nil {
			mt.Fatalf("Insert() error: %v", err)
		}
		if n.ID.IsZero() || n.CreatedAt.IsZero() {
			mt.Errorf("Insert() left id/createdAt unset: %+v", n)
		}
	})

	mt.Run("list decodes newest first", func(mt *mtest.T) {
		s := &NotificationStore{coll: mt.Coll}
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: second}, {Key: "recipientId", Value: "bob"}, {Key: "type", Value: "interest"}, {Key: "text", Value: "b"}},
			bson.D{{Key: "_id", Value: first}, {Key: "recipientId", Value: "bob"}, {Key: "type", Value: "message"}, {Key: "text", Value: "a"}},
		))

		got, err := s.ListByRecipient(ctx, "bob", 20)
		if err != nil {
			mt.Fatalf("ListByRecipient() error: %v", err)
		}
		if len(got) != 2 || got[0].ID != second || got[1].Type != models.NotificationMessage {
			mt.Errorf("ListByRecipient() = %+v", got)
		}
	})

	mt.Run("mark read of foreign notification", func(mt *mtest.T) {
		s := &NotificationStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := s.MarkRead(ctx, primitive.NewObjectID(), "mallory")
		if !errors.Is(err, ErrNotFound) {
			mt.Errorf("MarkRead() error = %v, want ErrNotFound", err)
		}
	})

	mt.Run("delete own notification", func(mt *mtest.T) {
		s := &NotificationStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		if err := s.Delete(ctx, primitive.NewObjectID(), "bob"); err != nil {
			mt.Errorf("Delete() error: %v", err)
		}
	})

	mt.Run("delete missing notification", func(mt *mtest.T) {
		s := &NotificationStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		if err := s.Delete(ctx, primitive.NewObjectID(), "bob"); !errors.Is(err, ErrNotFound) {
			mt.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestMessageStore_ThreadOldestFirst(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("thread", func(mt *mtest.T) {
		s := &MessageStore{coll: mt.Coll}
		now := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "senderId", Value: "bob"}, {Key: "recipientId", Value: "alice"}, {Key: "text", Value: "second"}, {Key: "createdAt", Value: now}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "senderId", Value: "alice"}, {Key: "recipientId", Value: "bob"}, {Key: "text", Value: "first"}, {Key: "createdAt", Value: now.Add(-time.Minute)}},
		))

		got, err := s.Thread(context.Background(), "alice", "bob", 50, time.Time{})
		if err != nil {
			mt.Fatalf("Thread() error: %v", err)
		}
		if len(got) != 2 || got[0].Text != "first" || got[1].Text != "second" {
			mt.Errorf("Thread() = %+v, want first then second", got)
		}
	})
}

func TestJobStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate application", func(mt *mtest.T) {
		s := &JobStore{applications: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := s.InsertApplication(ctx, &models.Application{JobID: primitive.NewObjectID(), ApplicantID: "bob"})
		if !errors.Is(err, ErrDuplicate) {
			mt.Errorf("InsertApplication() error = %v, want ErrDuplicate", err)
		}
	})

	mt.Run("get missing job", func(mt *mtest.T) {
		s := &JobStore{jobs: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		if _, err := s.Get(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
			mt.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})
}

func TestUserStore_Followers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("followers", func(mt *mtest.T) {
		s := &UserStore{follows: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "followerId", Value: "alice"}},
			bson.D{{Key: "followerId", Value: "carol"}},
		))

		got, err := s.Followers(context.Background(), "bob")
		if err != nil {
			mt.Fatalf("Followers() error: %v", err)
		}
		if len(got) != 2 || got[0] != "alice" || got[1] != "carol" {
			mt.Errorf("Followers() = %v, want [alice carol]", got)
		}
	})
}

func TestParseID(t *testing.T) {
	if _, err := ParseID("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ParseID(nope) error = %v, want ErrNotFound", err)
	}
	id := primitive.NewObjectID()
	if got, err := ParseID(id.Hex()); err != nil || got != id {
		t.Errorf("ParseID(%s) = %v, %v", id.Hex(), got, err)
	}
}
