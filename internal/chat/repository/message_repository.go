package repository

import (
	"context"
	"time"

	"community_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition chat message store
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	// FindPage page is 1-based over newest first, the returned slice is oldest → newest
	FindPage(ctx context.Context, threadID string, page, limit int) ([]domain.Message, error)
	// CountUnread messages in threadID created after since, not sent by userID and not deleted
	CountUnread(ctx context.Context, threadID, userID string, since time.Time) (int64, error)
	// SoftDelete returns false when the message was already deleted
	SoftDelete(ctx context.Context, messageID string, at time.Time) (bool, error)
	// MarkRead add a receipt for userID on each listed message that lacks one
	MarkRead(ctx context.Context, threadID, userID string, messageIDs []string, at time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection(MessageCollection),
	}
}

func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	if msg.ReadBy == nil {
		msg.ReadBy = []domain.ReadReceipt{}
	}
	_, err := r.coll.InsertOne(ctx, msg)
	return translate(err)
}

func (r *messageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	var msg domain.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg); err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (r *messageRepository) FindPage(ctx context.Context, threadID string, page, limit int) ([]domain.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"threadId": threadID}, opts)
	if err != nil {
		return nil, err
	}
	messages := []domain.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}

	// 反轉成舊 → 新
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, threadID, userID string, since time.Time) (int64, error) {
	filter := bson.M{
		"threadId":  threadID,
		"createdAt": bson.M{"$gt": since},
		"senderId":  bson.M{"$ne": userID},
		"isDeleted": false,
	}
	return r.coll.CountDocuments(ctx, filter)
}

func (r *messageRepository) SoftDelete(ctx context.Context, messageID string, at time.Time) (bool, error) {
	filter := bson.M{"_id": messageID, "isDeleted": false}
	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": at}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, threadID, userID string, messageIDs []string, at time.Time) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"_id":           bson.M{"$in": messageIDs},
		"threadId":      threadID,
		"readBy.userId": bson.M{"$ne": userID},
	}
	update := bson.M{"$push": bson.M{"readBy": domain.ReadReceipt{UserID: userID, ReadAt: at}}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *messageRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "threadId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "senderId", Value: 1}}},
		{Keys: bson.D{{Key: "readBy.userId", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, models)
	return err
}
