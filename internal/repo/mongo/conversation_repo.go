package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
)

const conversationsCollection = "conversations"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrStoreUnavailable     = errors.New("conversation store is unavailable")
)

type conversationDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PairKey      string             `bson:"pair_key"`
	Participants []int64            `bson:"participants"`
	Messages     []messageDoc       `bson:"messages"`
	LastMessage  *lastMessageDoc    `bson:"last_message,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type messageDoc struct {
	ID         string     `bson:"id"`
	SenderID   int64      `bson:"sender_id"`
	ReceiverID int64      `bson:"receiver_id"`
	Text       string     `bson:"text"`
	Type       string     `bson:"type"`
	IsRead     bool       `bson:"is_read"`
	ReadAt     *time.Time `bson:"read_at,omitempty"`
	SentAt     time.Time  `bson:"sent_at"`
}

type lastMessageDoc struct {
	Text     string    `bson:"text"`
	SentAt   time.Time `bson:"sent_at"`
	SenderID int64     `bson:"sender_id"`
}

type summaryDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Participants []int64            `bson:"participants"`
	LastMessage  *lastMessageDoc    `bson:"last_message,omitempty"`
	Unread       int                `bson:"unread"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type ConversationRepo struct {
	coll *mongodriver.Collection
}

// NewConversationRepo binds the repo to the conversations collection of db
// and makes sure its indexes exist. A nil db yields a repo whose calls fail
// with ErrStoreUnavailable.
func NewConversationRepo(ctx context.Context, db *mongodriver.Database) (*ConversationRepo, error) {
	if db == nil {
		return &ConversationRepo{}, nil
	}

	r := &ConversationRepo{coll: db.Collection(conversationsCollection)}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// ensureIndexes creates:
//   - a unique pair key, one conversation per unordered pair;
//   - participants + last_message.sent_at(desc) for the conversation list.
func (r *ConversationRepo) ensureIndexes(ctx context.Context) error {
	models := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetName("pair_key_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "participants", Value: 1}, {Key: "last_message.sent_at", Value: -1}},
			Options: options.Index().SetName("participants_last_sent_desc"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}

// PairKey is the order-independent key of the conversation between a and b.
func PairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + ":" + strconv.FormatInt(b, 10)
}

func (r *ConversationRepo) FindByPair(ctx context.Context, a, b int64) (model.Conversation, error) {
	if r.coll == nil {
		return model.Conversation{}, ErrStoreUnavailable
	}

	var doc conversationDoc
	err := r.coll.FindOne(ctx, bson.M{"pair_key": PairKey(a, b)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return model.Conversation{}, ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("find conversation by pair: %w", err)
	}

	return doc.toModel(), nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id string) (model.Conversation, error) {
	if r.coll == nil {
		return model.Conversation{}, ErrStoreUnavailable
	}

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return model.Conversation{}, ErrConversationNotFound
	}

	var doc conversationDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return model.Conversation{}, ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}

	return doc.toModel(), nil
}

// AppendMessage pushes msg onto the conversation of its sender and receiver,
// creating the conversation on first use, and refreshes last_message in the
// same document write. It returns the conversation id.
func (r *ConversationRepo) AppendMessage(ctx context.Context, msg model.Message) (string, error) {
	if r.coll == nil {
		return "", ErrStoreUnavailable
	}

	a, b := msg.SenderID, msg.ReceiverID
	if a > b {
		a, b = b, a
	}

	sentAt := msg.SentAt.UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"participants": []int64{a, b},
			"created_at":   sentAt,
		},
		"$push": bson.M{
			"messages": messageDoc{
				ID:         msg.ID,
				SenderID:   msg.SenderID,
				ReceiverID: msg.ReceiverID,
				Text:       msg.Text,
				Type:       string(msg.Type),
				SentAt:     sentAt,
			},
		},
		"$set": bson.M{
			"last_message": lastMessageDoc{
				Text:     msg.Text,
				SentAt:   sentAt,
				SenderID: msg.SenderID,
			},
			"updated_at": sentAt,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 1})

	var out struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	filter := bson.M{"pair_key": PairKey(a, b)}
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if mongodriver.IsDuplicateKeyError(err) {
		// Two first messages raced on the upsert; the loser retries as an update.
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	}
	if err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}

	return out.ID.Hex(), nil
}

// ListForUser returns the user's conversations without message logs, newest
// last message first, with the user's unread count computed in the database.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64) ([]model.ConversationSummary, error) {
	if r.coll == nil {
		return nil, ErrStoreUnavailable
	}

	pipeline := mongodriver.Pipeline{
		{{Key: "$match", Value: bson.M{"participants": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.sent_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$project", Value: bson.M{
			"participants": 1,
			"last_message": 1,
			"updated_at":   1,
			"unread": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$messages", bson.A{}}},
				"as":    "m",
				"cond": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$$m.receiver_id", userID}},
					bson.M{"$eq": bson.A{"$$m.is_read", false}},
				}},
			}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]model.ConversationSummary, 0)
	for cur.Next(ctx) {
		var doc summaryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode conversation summary: %w", err)
		}
		items = append(items, model.ConversationSummary{
			ID:           doc.ID.Hex(),
			Participants: doc.Participants,
			LastMessage:  doc.LastMessage.toModel(),
			UnreadCount:  doc.Unread,
			UpdatedAt:    doc.UpdatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	return items, nil
}

// MarkRead flags every unread message addressed to userID as read at the
// given time. Messages that are already read keep their read_at.
func (r *ConversationRepo) MarkRead(ctx context.Context, conversationID string, userID int64, at time.Time) error {
	if r.coll == nil {
		return ErrStoreUnavailable
	}

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(conversationID))
	if err != nil {
		return ErrConversationNotFound
	}

	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"m.receiver_id": userID, "m.is_read": false},
		},
	})

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "participants": userID},
		bson.M{"$set": bson.M{
			"messages.$[m].is_read": true,
			"messages.$[m].read_at": at.UTC(),
		}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrConversationNotFound
	}

	return nil
}

func (d conversationDoc) toModel() model.Conversation {
	out := model.Conversation{
		ID:           d.ID.Hex(),
		Participants: d.Participants,
		Messages:     make([]model.Message, 0, len(d.Messages)),
		LastMessage:  d.LastMessage.toModel(),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, m := range d.Messages {
		out.Messages = append(out.Messages, model.Message{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Text:       m.Text,
			Type:       enums.MessageType(m.Type),
			IsRead:     m.IsRead,
			ReadAt:     m.ReadAt,
			SentAt:     m.SentAt,
		})
	}
	return out
}

func (d *lastMessageDoc) toModel() *model.LastMessage {
	if d == nil {
		return nil
	}
	return &model.LastMessage{Text: d.Text, SentAt: d.SentAt, SenderID: d.SenderID}
}
