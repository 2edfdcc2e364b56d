package audiences

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	listsCollection       = "audience_lists"
	subscribersCollection = "subscribers"
	credentialsCollection = "provider_credentials"
)

// MongoListStore is the production ListStore backed by MongoDB.
type MongoListStore struct {
	coll *mongo.Collection
}

func NewMongoListStore(db *mongo.Database) *MongoListStore {
	return &MongoListStore{coll: db.Collection(listsCollection)}
}

func (s *MongoListStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create list indexes: %w", err)
	}
	return nil
}

func (s *MongoListStore) Create(ctx context.Context, l *List) error {
	if _, err := s.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

func (s *MongoListStore) Get(ctx context.Context, userID, id string) (*List, error) {
	var l List
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find list: %w", err)
	}
	return &l, nil
}

func (s *MongoListStore) List(ctx context.Context, userID string, limit, offset int) ([]List, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audience lists: %w", err)
	}
	defer cursor.Close(ctx)

	lists := make([]List, 0)
	if err := cursor.All(ctx, &lists); err != nil {
		return nil, fmt.Errorf("decode audience lists: %w", err)
	}
	return lists, nil
}

func (s *MongoListStore) Update(ctx context.Context, l *List) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": l.ID, "user_id": l.UserID}, l)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrListNotFound
	}
	return nil
}

func (s *MongoListStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrListNotFound
	}
	return nil
}

// MongoSubscriberStore is the production SubscriberStore backed by MongoDB.
type MongoSubscriberStore struct {
	coll *mongo.Collection
}

func NewMongoSubscriberStore(db *mongo.Database) *MongoSubscriberStore {
	return &MongoSubscriberStore{coll: db.Collection(subscribersCollection)}
}

// EnsureIndexes creates the per-list email uniqueness constraint alongside
// the list query index.
func (s *MongoSubscriberStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "list_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "list_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create subscriber indexes: %w", err)
	}
	return nil
}

func (s *MongoSubscriberStore) Create(ctx context.Context, sub *Subscriber) error {
	if _, err := s.coll.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSubscriber
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (s *MongoSubscriberStore) Update(ctx context.Context, sub *Subscriber) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sub.ID, "user_id": sub.UserID}, sub)
	if err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

func (s *MongoSubscriberStore) GetByEmail(ctx context.Context, userID, listID, email string) (*Subscriber, error) {
	var sub Subscriber
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID, "list_id": listID, "email": email}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSubscriberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find subscriber: %w", err)
	}
	return &sub, nil
}

func (s *MongoSubscriberStore) ListByList(ctx context.Context, userID, listID string) ([]Subscriber, error) {
	opts := options.Find().SetSort(bson.D{{Key: "email", Value: 1}})

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID, "list_id": listID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer cursor.Close(ctx)

	subs := make([]Subscriber, 0)
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode subscribers: %w", err)
	}
	return subs, nil
}

func (s *MongoSubscriberStore) Delete(ctx context.Context, userID, listID, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID, "list_id": listID})
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

func (s *MongoSubscriberStore) DeleteByList(ctx context.Context, userID, listID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID, "list_id": listID}); err != nil {
		return fmt.Errorf("delete list subscribers: %w", err)
	}
	return nil
}

// MongoCredentialStore is the production CredentialStore backed by MongoDB.
// Values arrive already encrypted; the store never sees a plaintext key.
type MongoCredentialStore struct {
	coll *mongo.Collection
}

func NewMongoCredentialStore(db *mongo.Database) *MongoCredentialStore {
	return &MongoCredentialStore{coll: db.Collection(credentialsCollection)}
}

func (s *MongoCredentialStore) Put(ctx context.Context, cred *Credential) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": cred.UserID}, cred, opts); err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (s *MongoCredentialStore) Get(ctx context.Context, userID string) (*Credential, error) {
	var cred Credential
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&cred)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &cred, nil
}

func (s *MongoCredentialStore) Delete(ctx context.Context, userID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNoCredentials
	}
	return nil
}

func (s *MongoCredentialStore) Users(ctx context.Context) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("list credential users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		UserID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode credential users: %w", err)
	}
	users := make([]string, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.UserID)
	}
	return users, nil
}
