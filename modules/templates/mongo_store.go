package templates

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	templatesCollection     = "templates"
	conversationsCollection = "conversations"
)

// MongoTemplateStore is the production TemplateStore backed by MongoDB.
type MongoTemplateStore struct {
	coll *mongo.Collection
}

func NewMongoTemplateStore(db *mongo.Database) *MongoTemplateStore {
	return &MongoTemplateStore{coll: db.Collection(templatesCollection)}
}

// EnsureIndexes creates the indexes list queries depend on. Called once at
// startup; CreateMany is a no-op for indexes that already exist.
func (s *MongoTemplateStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "preview_slug", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("create template indexes: %w", err)
	}
	return nil
}

func (s *MongoTemplateStore) Create(ctx context.Context, tpl *Template) error {
	if _, err := s.coll.InsertOne(ctx, tpl); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (s *MongoTemplateStore) Get(ctx context.Context, userID, id string) (*Template, error) {
	var tpl Template
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&tpl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	return &tpl, nil
}

func (s *MongoTemplateStore) List(ctx context.Context, userID string, limit, offset int) ([]Template, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer cursor.Close(ctx)

	templates := make([]Template, 0)
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return templates, nil
}

func (s *MongoTemplateStore) Update(ctx context.Context, tpl *Template) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": tpl.ID, "user_id": tpl.UserID}, tpl)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *MongoTemplateStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// MongoConversationStore is the production ConversationStore backed by MongoDB.
type MongoConversationStore struct {
	coll *mongo.Collection
}

func NewMongoConversationStore(db *mongo.Database) *MongoConversationStore {
	return &MongoConversationStore{coll: db.Collection(conversationsCollection)}
}

func (s *MongoConversationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create conversation indexes: %w", err)
	}
	return nil
}

func (s *MongoConversationStore) Get(ctx context.Context, userID, id string) (*Conversation, error) {
	var conv Conversation
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return &conv, nil
}

func (s *MongoConversationStore) Put(ctx context.Context, conv *Conversation) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": conv.ID}, conv, opts); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

func (s *MongoConversationStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrConversationNotFound
	}
	return nil
}
