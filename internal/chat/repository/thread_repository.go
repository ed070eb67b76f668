package repository

import (
	"context"
	"time"

	"community_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ThreadRepository definition chat thread store
type ThreadRepository interface {
	Create(ctx context.Context, thread *domain.Thread) error
	FindByID(ctx context.Context, threadID string) (*domain.Thread, error)
	FindGlobal(ctx context.Context) (*domain.Thread, error)
	FindByPairKey(ctx context.Context, pairKey string) (*domain.Thread, error)
	FindByEventID(ctx context.Context, eventID string) (*domain.Thread, error)
	// FindVisible global threads, active user-created threads and every thread userID participates in,
	// pinned first then by last activity
	FindVisible(ctx context.Context, userID string) ([]domain.Thread, error)
	// AddParticipant returns false when userID is already listed
	AddParticipant(ctx context.Context, threadID string, p domain.Participant) (bool, error)
	// RemoveParticipant returns false when userID was not listed
	RemoveParticipant(ctx context.Context, threadID, userID string) (bool, error)
	// AdvanceReadCursor moves the cursor forward only, no-op when userID is not a participant
	AdvanceReadCursor(ctx context.Context, threadID, userID string, at time.Time) (bool, error)
	// RecordMessage bump activity, counter and last message
	RecordMessage(ctx context.Context, threadID, messageID string, at time.Time) error
	EnsureIndexes(ctx context.Context) error
}

type threadRepository struct {
	coll *mongo.Collection
}

// NewMongoThreadRepository create a ThreadRepository
func NewMongoThreadRepository(db *mongo.Database) ThreadRepository {
	return &threadRepository{
		coll: db.Collection(ThreadCollection),
	}
}

func (r *threadRepository) Create(ctx context.Context, thread *domain.Thread) error {
	_, err := r.coll.InsertOne(ctx, thread)
	return translate(err)
}

func (r *threadRepository) findOne(ctx context.Context, filter bson.M) (*domain.Thread, error) {
	var thread domain.Thread
	if err := r.coll.FindOne(ctx, filter).Decode(&thread); err != nil {
		return nil, translate(err)
	}
	return &thread, nil
}

func (r *threadRepository) FindByID(ctx context.Context, threadID string) (*domain.Thread, error) {
	return r.findOne(ctx, bson.M{"_id": threadID})
}

func (r *threadRepository) FindGlobal(ctx context.Context) (*domain.Thread, error) {
	return r.findOne(ctx, bson.M{"type": domain.ThreadGlobal})
}

func (r *threadRepository) FindByPairKey(ctx context.Context, pairKey string) (*domain.Thread, error) {
	return r.findOne(ctx, bson.M{"type": domain.ThreadPrivate, "pairKey": pairKey})
}

func (r *threadRepository) FindByEventID(ctx context.Context, eventID string) (*domain.Thread, error) {
	return r.findOne(ctx, bson.M{"type": domain.ThreadEvent, "eventId": eventID})
}

func (r *threadRepository) FindVisible(ctx context.Context, userID string) ([]domain.Thread, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"type": domain.ThreadGlobal},
			bson.M{"type": domain.ThreadUserCreated, "isActive": true},
			bson.M{"participants.userId": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "isPinned", Value: -1},
		{Key: "lastActivity", Value: -1},
	})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	threads := []domain.Thread{}
	if err := cur.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (r *threadRepository) AddParticipant(ctx context.Context, threadID string, p domain.Participant) (bool, error) {
	// 只在 userId 不存在時 push，避免重複加入
	filter := bson.M{"_id": threadID, "participants.userId": bson.M{"$ne": p.UserID}}
	update := bson.M{
		"$push": bson.M{"participants": p},
		"$set":  bson.M{"updatedAt": p.JoinedAt},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *threadRepository) RemoveParticipant(ctx context.Context, threadID, userID string) (bool, error) {
	update := bson.M{
		"$pull": bson.M{"participants": bson.M{"userId": userID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": threadID, "participants.userId": userID}, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *threadRepository) AdvanceReadCursor(ctx context.Context, threadID, userID string, at time.Time) (bool, error) {
	filter := bson.M{"_id": threadID, "participants.userId": userID}
	update := bson.M{"$max": bson.M{"participants.$.lastReadAt": at}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *threadRepository) RecordMessage(ctx context.Context, threadID, messageID string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{"lastMessageId": messageID, "updatedAt": at},
		"$max": bson.M{"lastActivity": at},
		"$inc": bson.M{"messageCount": 1},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": threadID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *threadRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "isActive", Value: 1}, {Key: "lastActivity", Value: -1}}},
		{Keys: bson.D{{Key: "participants.userId", Value: 1}}},
		{
			Keys: bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": domain.ThreadPrivate}),
		},
		{
			Keys: bson.D{{Key: "eventId", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": domain.ThreadEvent}),
		},
		{
			Keys: bson.D{{Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("single_global").
				SetPartialFilterExpression(bson.M{"type": domain.ThreadGlobal}),
		},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, models)
	return err
}
