package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

// AnalyticsRepository implements ports.AnalyticsRepository with aggregation
// pipelines over the issues and votes collections.
type AnalyticsRepository struct {
	issues *mongo.Collection
	votes  *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{
		issues: db.Collection(collectionIssues),
		votes:  db.Collection(collectionVotes),
	}
}

func (r *AnalyticsRepository) IssuesByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := r.issues.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapErr("issues by category", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode categories", err)
	}

	out := make([]domain.CategoryCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CategoryCount{Category: domain.IssueCategory(row.Category), Count: row.Count})
	}
	return out, nil
}

func (r *AnalyticsRepository) CountIssues(ctx context.Context, f ports.IssueCountFilter) (int64, error) {
	filter := bson.M{}
	if len(f.Statuses) > 0 {
		statuses := make(bson.A, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	if rng := timeRange(f.CreatedFrom, f.CreatedTo); rng != nil {
		filter["createdAt"] = rng
	}
	if rng := timeRange(f.UpdatedFrom, f.UpdatedTo); rng != nil {
		filter["updatedAt"] = rng
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.issues.CountDocuments(ctx, filter)
	if err != nil {
		return 0, wrapErr("count issues", err)
	}
	return n, nil
}

func (r *AnalyticsRepository) CountVotes(ctx context.Context, from, to time.Time) (int64, error) {
	filter := bson.M{}
	if rng := timeRange(from, to); rng != nil {
		filter["createdAt"] = rng
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.votes.CountDocuments(ctx, filter)
	if err != nil {
		return 0, wrapErr("count votes", err)
	}
	return n, nil
}

// TopVotedIssues ranks the `recent` newest issues by votes, most voted first.
func (r *AnalyticsRepository) TopVotedIssues(ctx context.Context, recent, top int) ([]domain.IssueVoteCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: int64(recent)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionVotes,
			"localField":   "_id",
			"foreignField": "issue",
			"as":           "votes",
		}}},
		{{Key: "$project", Value: bson.M{"title": 1, "createdAt": 1, "votes": bson.M{"$size": "$votes"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "votes", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: int64(top)}},
	}
	cursor, err := r.issues.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapErr("top voted issues", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Title string             `bson:"title"`
		Votes int64              `bson:"votes"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode top voted", err)
	}

	out := make([]domain.IssueVoteCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.IssueVoteCount{IssueID: row.ID.Hex(), Title: row.Title, Votes: row.Votes})
	}
	return out, nil
}

// ResolutionTimes averages updatedAt - createdAt over resolved issues.
func (r *AnalyticsRepository) ResolutionTimes(ctx context.Context) ([]ports.ResolutionTime, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(domain.IssueStatusResolved)}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$category",
			"avgMs":    bson.M{"$avg": bson.M{"$subtract": bson.A{"$updatedAt", "$createdAt"}}},
			"resolved": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cursor, err := r.issues.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapErr("resolution times", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category string  `bson:"_id"`
		AvgMs    float64 `bson:"avgMs"`
		Resolved int64   `bson:"resolved"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode resolution times", err)
	}

	out := make([]ports.ResolutionTime, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.ResolutionTime{
			Category: domain.IssueCategory(row.Category),
			AvgHours: row.AvgMs / float64(time.Hour/time.Millisecond),
			Resolved: row.Resolved,
		})
	}
	return out, nil
}

// timeRange builds a half-open [from, to) condition; zero bounds are omitted.
func timeRange(from, to time.Time) bson.M {
	rng := bson.M{}
	if !from.IsZero() {
		rng["$gte"] = from
	}
	if !to.IsZero() {
		rng["$lt"] = to
	}
	if len(rng) == 0 {
		return nil
	}
	return rng
}
