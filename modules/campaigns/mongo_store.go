package campaigns

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const campaignsCollection = "campaigns"

// MongoCampaignStore is the production CampaignStore backed by MongoDB.
type MongoCampaignStore struct {
	coll *mongo.Collection
}

func NewMongoCampaignStore(db *mongo.Database) *MongoCampaignStore {
	return &MongoCampaignStore{coll: db.Collection(campaignsCollection)}
}

// EnsureIndexes creates the indexes list queries depend on. Called once at
// startup; CreateMany is a no-op for indexes that already exist.
func (s *MongoCampaignStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create campaign indexes: %w", err)
	}
	return nil
}

func (s *MongoCampaignStore) Create(ctx context.Context, c *Campaign) error {
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (s *MongoCampaignStore) Get(ctx context.Context, userID, id string) (*Campaign, error) {
	var c Campaign
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find campaign: %w", err)
	}
	return &c, nil
}

func (s *MongoCampaignStore) List(ctx context.Context, userID string, limit, offset int) ([]Campaign, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer cursor.Close(ctx)

	campaigns := make([]Campaign, 0)
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, fmt.Errorf("decode campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *MongoCampaignStore) Update(ctx context.Context, c *Campaign) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": c.ID, "user_id": c.UserID}, c)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCampaignNotFound
	}
	return nil
}
