package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swachhta/civic-issues/internal/core/domain"
)

// UserRepository implements ports.UserStore using MongoDB. User documents are
// created by the identity provider; this service only reads them and owns
// the points and badges fields.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Points    int                `bson:"points"`
	Badges    []string           `bson:"badges"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (u mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Points:    u.Points,
		Badges:    u.Badges,
		CreatedAt: u.CreatedAt,
	}
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrapErr("find user", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) GetScoreFields(ctx context.Context, userID string) (domain.Score, error) {
	oid, err := objectID(userID)
	if err != nil {
		return domain.Score{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	opts := options.FindOne().SetProjection(bson.M{"points": 1, "badges": 1})
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Score{}, domain.ErrUserNotFound
		}
		return domain.Score{}, wrapErr("get score fields", err)
	}
	return domain.Score{Points: mu.Points, Badges: mu.Badges}, nil
}

// CompareAndSetScoreFields updates points and badges in a single document
// write guarded on the previously read values.
func (r *UserRepository) CompareAndSetScoreFields(ctx context.Context, userID string, expected, next domain.Score) (bool, error) {
	oid, err := objectID(userID)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid}
	// Missing fields decode as zero values, so a zero expectation must also
	// match documents that never had them.
	if expected.Points == 0 {
		filter["points"] = bson.M{"$in": bson.A{0, nil}}
	} else {
		filter["points"] = expected.Points
	}
	if len(expected.Badges) == 0 {
		filter["badges"] = bson.M{"$in": bson.A{bson.A{}, nil}}
	} else {
		filter["badges"] = expected.Badges
	}

	badges := next.Badges
	if badges == nil {
		badges = []string{}
	}
	update := bson.M{"$set": bson.M{"points": next.Points, "badges": badges}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, wrapErr("set score fields", err)
	}
	return res.MatchedCount == 1, nil
}

// ListUsersByPointsDescending orders by points and then by _id, which follows
// insertion order for ObjectIDs.
func (r *UserRepository) ListUsersByPointsDescending(ctx context.Context, limit int) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"name": 1, "points": 1, "badges": 1, "createdAt": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoUser
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode users", err)
	}

	out := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// CountUsersRankedAbove counts users with more points, or with equal points
// and an earlier _id, matching the leaderboard order.
func (r *UserRepository) CountUsersRankedAbove(ctx context.Context, userID string, points int) (int64, error) {
	oid, err := objectID(userID)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"points": bson.M{"$gt": points}},
		bson.M{"points": points, "_id": bson.M{"$lt": oid}},
	}}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, wrapErr("count users ranked above", err)
	}
	return n, nil
}

// ForEachUserID streams every user id in insertion order.
func (r *UserRepository) ForEachUserID(ctx context.Context, fn func(userID string) error) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return wrapErr("iterate users", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return wrapErr("decode user id", err)
		}
		if err := fn(doc.ID.Hex()); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return wrapErr("iterate users", err)
	}
	return nil
}

func (r *UserRepository) BackfillScoreFields(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var touched int64
	res, err := r.col.UpdateMany(ctx,
		bson.M{"points": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"points": 0}},
	)
	if err != nil {
		return 0, wrapErr("backfill points", err)
	}
	touched += res.ModifiedCount

	res, err = r.col.UpdateMany(ctx,
		bson.M{"badges": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"badges": bson.A{}}},
	)
	if err != nil {
		return touched, wrapErr("backfill badges", err)
	}
	return touched + res.ModifiedCount, nil
}
