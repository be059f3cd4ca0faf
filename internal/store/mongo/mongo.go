// Package mongo is the MongoDB-backed store, the primary backend.
//
// Collections: members, member_identifiers, and one activity collection per
// source (github_activities, slack_activities, ..., daily_analysis).
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/store"
)

// defaultFetchCap bounds unbounded activity queries.
const defaultFetchCap = 1000

// Open connects to MongoDB and verifies connectivity.
func Open(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client.Database(dbName), nil
}

// New constructs a Mongo-backed store around an open database handle.
func New(db *mongo.Database) store.Store { return &mongoStore{db: db} }

type mongoStore struct{ db *mongo.Database }

func (s *mongoStore) Members() store.Members         { return &members{db: s.db} }
func (s *mongoStore) Identifiers() store.Identifiers { return &identifiers{db: s.db} }
func (s *mongoStore) Activities() store.Activities   { return &activities{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *mongoStore) HealthPing(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the indexes the query paths rely on. Idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection("member_identifiers").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "member_id", Value: 1}}},
		{Keys: bson.D{{Key: "source", Value: 1}, {Key: "value", Value: 1}}},
	}); err != nil {
		return err
	}
	for _, src := range model.ActivitySources() {
		if _, err := db.Collection(activityCollection(src)).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "occurred_at", Value: -1}}},
			{Keys: bson.D{{Key: "actor.id", Value: 1}}},
		}); err != nil {
			return err
		}
	}
	return nil
}

func activityCollection(src model.Source) string {
	if src == model.SourceDailyAnalysis {
		return "daily_analysis"
	}
	return string(src) + "_activities"
}

// --- Members ---

type memberDoc struct {
	ID           string     `bson:"_id"`
	Name         string     `bson:"name"`
	Role         *string    `bson:"role,omitempty"`
	CreationTime time.Time  `bson:"creation_time"`
	UpdateTime   *time.Time `bson:"update_time,omitempty"`
}

func (d *memberDoc) model() *model.Member {
	return &model.Member{
		MemberID:     d.ID,
		Name:         d.Name,
		Role:         d.Role,
		CreationTime: d.CreationTime,
		UpdateTime:   d.UpdateTime,
	}
}

type members struct{ db *mongo.Database }

func (m *members) col() *mongo.Collection { return m.db.Collection("members") }

func (m *members) Create(ctx context.Context, in *model.Member) (*model.Member, error) {
	id := in.MemberID
	if id == "" {
		id = uuid.New().String()
	}
	doc := memberDoc{ID: id, Name: in.Name, Role: in.Role, CreationTime: time.Now().UTC()}
	if _, err := m.col().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	return doc.model(), nil
}

func (m *members) Get(ctx context.Context, memberID string) (*model.Member, error) {
	var doc memberDoc
	err := m.col().FindOne(ctx, bson.M{"_id": memberID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (m *members) List(ctx context.Context) ([]*model.Member, error) {
	cur, err := m.col().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()
	var out []*model.Member
	for cur.Next(ctx) {
		var doc memberDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.model())
	}
	return out, cur.Err()
}

func (m *members) Rename(ctx context.Context, memberID, name string) (*model.Member, error) {
	now := time.Now().UTC()
	res := m.col().FindOneAndUpdate(ctx,
		bson.M{"_id": memberID},
		bson.M{"$set": bson.M{"name": name, "update_time": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var doc memberDoc
	if err := res.Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	// Keep the denormalized member_name on identifier rows in sync.
	if _, err := m.db.Collection("member_identifiers").UpdateMany(ctx,
		bson.M{"member_id": memberID},
		bson.M{"$set": bson.M{"member_name": name}},
	); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (m *members) Delete(ctx context.Context, memberID string) error {
	res, err := m.col().DeleteOne(ctx, bson.M{"_id": memberID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	_, err = m.db.Collection("member_identifiers").DeleteMany(ctx, bson.M{"member_id": memberID})
	return err
}

// --- Identifiers ---

// identifierDoc tolerates the legacy shape where only source and value were
// stored; a missing member_name decodes to "" and is upgraded at index-build
// time.
type identifierDoc struct {
	ID           string       `bson:"_id"`
	MemberID     string       `bson:"member_id"`
	MemberName   string       `bson:"member_name,omitempty"`
	Source       model.Source `bson:"source"`
	Type         string       `bson:"type"`
	Value        string       `bson:"value"`
	CreationTime time.Time    `bson:"creation_time"`
}

func (d *identifierDoc) model() *model.Identifier {
	return &model.Identifier{
		IdentifierID: d.ID,
		MemberID:     d.MemberID,
		MemberName:   d.MemberName,
		Source:       d.Source,
		Type:         d.Type,
		Value:        d.Value,
		CreationTime: d.CreationTime,
	}
}

type identifiers struct{ db *mongo.Database }

func (i *identifiers) col() *mongo.Collection { return i.db.Collection("member_identifiers") }

func (i *identifiers) List(ctx context.Context) ([]*model.Identifier, error) {
	return i.find(ctx, bson.M{})
}

func (i *identifiers) ListByMember(ctx context.Context, memberID string) ([]*model.Identifier, error) {
	return i.find(ctx, bson.M{"member_id": memberID})
}

func (i *identifiers) find(ctx context.Context, filter bson.M) ([]*model.Identifier, error) {
	cur, err := i.col().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()
	var out []*model.Identifier
	for cur.Next(ctx) {
		var doc identifierDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.model())
	}
	return out, cur.Err()
}

func (i *identifiers) Create(ctx context.Context, in *model.Identifier) (*model.Identifier, error) {
	doc := identifierDoc{
		ID:           uuid.New().String(),
		MemberID:     in.MemberID,
		MemberName:   in.MemberName,
		Source:       in.Source,
		Type:         in.Type,
		Value:        in.Value,
		CreationTime: time.Now().UTC(),
	}
	if _, err := i.col().InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (i *identifiers) Upsert(ctx context.Context, in *model.Identifier) (*model.Identifier, error) {
	filter := bson.M{"member_id": in.MemberID, "source": in.Source, "type": in.Type}
	update := bson.M{
		"$set": bson.M{"member_name": in.MemberName, "value": in.Value},
		"$setOnInsert": bson.M{
			"_id":           uuid.New().String(),
			"creation_time": time.Now().UTC(),
		},
	}
	res := i.col().FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After))
	var doc identifierDoc
	if err := res.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (i *identifiers) Delete(ctx context.Context, identifierID string) error {
	res, err := i.col().DeleteOne(ctx, bson.M{"_id": identifierID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}
