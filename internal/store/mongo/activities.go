package mongo

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulseboard/pulseboard/internal/model"
)

type actorDoc struct {
	ID    string `bson:"id,omitempty"`
	Email string `bson:"email,omitempty"`
	Name  string `bson:"name,omitempty"`
}

type activityDoc struct {
	ID           string                 `bson:"_id"`
	ActivityType string                 `bson:"activity_type"`
	Actor        actorDoc               `bson:"actor,omitempty"`
	Timestamp    string                 `bson:"timestamp,omitempty"`
	OccurredAt   *time.Time             `bson:"occurred_at,omitempty"`
	TargetDate   string                 `bson:"target_date,omitempty"`
	Metadata     map[string]interface{} `bson:"metadata,omitempty"`
}

type activities struct{ db *mongo.Database }

func (a *activities) Insert(ctx context.Context, rec *model.RawActivity) error {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	doc := activityDoc{
		ID:           id,
		ActivityType: rec.ActivityType,
		Actor:        actorDoc{ID: rec.Actor.ID, Email: rec.Actor.Email, Name: rec.Actor.Name},
		Timestamp:    rec.Timestamp,
		OccurredAt:   rec.OccurredAt,
		TargetDate:   rec.TargetDate,
		Metadata:     rec.Metadata,
	}
	_, err := a.db.Collection(activityCollection(rec.Source)).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		// Collectors re-pull overlapping windows; same document is fine.
		return nil
	}
	return err
}

func (a *activities) ListBySource(ctx context.Context, src model.Source, f model.ActivityFilter, limit int) ([]*model.RawActivity, error) {
	filter := bson.M{}
	if or := identifierClauses(f); len(or) > 0 {
		filter["$or"] = or
	}
	if rng := timeRange(f); len(rng) > 0 {
		filter["occurred_at"] = rng
	}

	if limit <= 0 || limit > defaultFetchCap {
		limit = defaultFetchCap
	}
	// daily_analysis documents may carry only a target date; the secondary
	// key keeps them in calendar order.
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "target_date", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := a.db.Collection(activityCollection(src)).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []*model.RawActivity
	for cur.Next(ctx) {
		var doc activityDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, &model.RawActivity{
			ID:           doc.ID,
			Source:       src,
			ActivityType: doc.ActivityType,
			Actor:        model.ActorRef{ID: doc.Actor.ID, Email: doc.Actor.Email, Name: doc.Actor.Name},
			Timestamp:    doc.Timestamp,
			OccurredAt:   doc.OccurredAt,
			TargetDate:   doc.TargetDate,
			Metadata:     doc.Metadata,
		})
	}
	return out, cur.Err()
}

// identifierClauses builds the OR filter across raw identifiers, plus the
// case-insensitive display-name prefix catch-all when requested.
func identifierClauses(f model.ActivityFilter) bson.A {
	var or bson.A
	for _, id := range f.Identifiers {
		or = append(or, bson.M{"actor.id": id}, bson.M{"actor.email": id})
	}
	if f.MemberName != "" {
		or = append(or, bson.M{"actor.name": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(f.MemberName),
			Options: "i",
		}})
	}
	return or
}

func timeRange(f model.ActivityFilter) bson.M {
	rng := bson.M{}
	if f.From != nil {
		rng["$gte"] = *f.From
	}
	if f.To != nil {
		rng["$lte"] = *f.To
	}
	return rng
}
