package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-api/internal/domain"
)

type messageDoc struct {
	Sender    string    `bson:"sender"`
	Content   string    `bson:"content"`
	Timestamp docTime `bson:"timestamp"`
}

type chatroomDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"user_id"`
	SellerID  string             `bson:"seller_id"`
	Messages  []messageDoc       `bson:"messages,omitempty"`
	CreatedAt docTime            `bson:"created_at"`
}

func (d *chatroomDoc) toDomain(withMessages bool) domain.Chatroom {
	room := domain.Chatroom{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		SellerID:  d.SellerID,
		CreatedAt: d.CreatedAt.Time,
	}
	if withMessages {
		room.Messages = make([]domain.Message, len(d.Messages))
		for i, m := range d.Messages {
			room.Messages[i] = domain.Message{Sender: m.Sender, Content: m.Content, Timestamp: m.Timestamp.Time}
		}
	}
	return room
}

var withoutMessages = bson.M{"messages": 0}

type ChatRepo struct{ c *mongo.Collection }

func (r *ChatRepo) FindByPair(ctx context.Context, userID, sellerID string) (*domain.Chatroom, error) {
	var d chatroomDoc
	err := r.c.FindOne(ctx, bson.M{"user_id": userID, "seller_id": sellerID},
		options.FindOne().SetProjection(withoutMessages)).Decode(&d)
	if isNoDocs(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find chatroom: %w", err)
	}
	room := d.toDomain(false)
	return &room, nil
}

func (r *ChatRepo) Create(ctx context.Context, room *domain.Chatroom) error {
	id, err := newID(room.ID)
	if err != nil {
		return domain.InvalidArgument("%v", err)
	}
	ts := now()
	doc := bson.M{
		"_id":        id,
		"user_id":    room.UserID,
		"seller_id":  room.SellerID,
		"messages":   bson.A{},
		"created_at": ts,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflict("chatroom already exists")
		}
		return fmt.Errorf("insert chatroom: %w", err)
	}
	room.ID, room.CreatedAt = id.Hex(), ts
	return nil
}

func (r *ChatRepo) FindByID(ctx context.Context, id string, withMessages bool) (*domain.Chatroom, error) {
	o, ok := oid(id)
	if !ok {
		return nil, nil
	}
	opts := options.FindOne()
	if !withMessages {
		opts.SetProjection(withoutMessages)
	}
	var d chatroomDoc
	err := r.c.FindOne(ctx, bson.M{"_id": o}, opts).Decode(&d)
	if isNoDocs(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find chatroom: %w", err)
	}
	room := d.toDomain(withMessages)
	return &room, nil
}

// AppendMessages $push + $each，一次更新写入全部消息
func (r *ChatRepo) AppendMessages(ctx context.Context, chatroomID string, msgs ...domain.Message) (bool, error) {
	o, ok := oid(chatroomID)
	if !ok {
		return false, nil
	}
	docs := make(bson.A, len(msgs))
	for i, m := range msgs {
		docs[i] = messageDoc{Sender: m.Sender, Content: m.Content, Timestamp: docTime{m.Timestamp.UTC()}}
	}
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": o},
		bson.M{"$push": bson.M{"messages": bson.M{"$each": docs}}})
	if err != nil {
		return false, fmt.Errorf("append messages: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *ChatRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Chatroom, error) {
	filter := bson.M{"$or": bson.A{bson.M{"user_id": userID}, bson.M{"seller_id": userID}}}
	opts := limitOpt(limit).SetProjection(withoutMessages).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list chatrooms: %w", err)
	}
	var docs []chatroomDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Chatroom, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain(false)
	}
	return out, nil
}
